package tag

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chambers/internal/auth/guard"
	id "chambers/pkg/domain"
	"chambers/pkg/platform/httputil"
)

// Response is the wire shape of a tag.
type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResponse(t *Tag) Response {
	return Response{
		ID:          t.ID.String(),
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Color:       t.Color,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toListResponse(tags []*Tag) []Response {
	out := make([]Response, 0, len(tags))
	for _, t := range tags {
		out = append(out, toResponse(t))
	}
	return out
}

// Handler exposes the tag endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated read surface.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/", h.list)
}

// RegisterAdmin mounts the guarded management surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// RegisterArticleRoutes mounts the tagging operations under an article.
// The article id parameter is named "id" to match the sibling article
// routes mounted on the same router.
func (h *Handler) RegisterArticleRoutes(r chi.Router) {
	r.Get("/{id}/tags", h.listByArticle)
	r.Put("/{id}/tags/{tagID}", h.tagArticle)
	r.Delete("/{id}/tags/{tagID}", h.untagArticle)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tags": toListResponse(tags)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[CreateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := httputil.PrepareRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var createdBy *id.AdminUserID
	if role, ok := guard.RoleFromContext(r.Context()); ok {
		createdBy = &role.ID
	}
	t, err := h.service.Create(r.Context(), *req, createdBy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tagID, err := id.ParseTagID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeJSON[UpdateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := httputil.PrepareRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Update(r.Context(), tagID, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tagID, err := id.ParseTagID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), tagID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listByArticle(w http.ResponseWriter, r *http.Request) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tags, err := h.service.ListByArticle(r.Context(), articleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tags": toListResponse(tags)})
}

func (h *Handler) tagArticle(w http.ResponseWriter, r *http.Request) {
	articleID, tagID, ok := h.linkParams(w, r)
	if !ok {
		return
	}
	if err := h.service.TagArticle(r.Context(), articleID, tagID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) untagArticle(w http.ResponseWriter, r *http.Request) {
	articleID, tagID, ok := h.linkParams(w, r)
	if !ok {
		return
	}
	if err := h.service.UntagArticle(r.Context(), articleID, tagID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) linkParams(w http.ResponseWriter, r *http.Request) (id.ArticleID, id.TagID, bool) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ArticleID{}, id.TagID{}, false
	}
	tagID, err := id.ParseTagID(chi.URLParam(r, "tagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ArticleID{}, id.TagID{}, false
	}
	return articleID, tagID, true
}

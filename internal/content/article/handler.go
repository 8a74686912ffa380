package article

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chambers/internal/auth/guard"
	id "chambers/pkg/domain"
	"chambers/pkg/platform/httputil"
)

// Response is the wire shape of an article.
type Response struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content,omitempty"`
	Excerpt       string     `json:"excerpt,omitempty"`
	CoverURL      string     `json:"cover_url,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	Featured      bool       `json:"is_featured"`
	Status        string     `json:"status"`
	Author        string     `json:"author,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toResponse(a *Article, includeContent bool) Response {
	resp := Response{
		ID:            a.ID.String(),
		Title:         a.Title,
		Slug:          a.Slug,
		Excerpt:       a.Excerpt,
		CoverURL:      a.CoverURL,
		FeaturedImage: a.FeaturedImage,
		Featured:      a.Featured,
		Status:        string(a.Status),
		Author:        a.Author,
		PublishedAt:   a.PublishedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if includeContent {
		resp.Content = a.Content
	}
	return resp
}

func toListResponse(articles []*Article, includeContent bool) []Response {
	out := make([]Response, 0, len(articles))
	for _, a := range articles {
		out = append(out, toResponse(a, includeContent))
	}
	return out
}

// Handler exposes the article endpoints.
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
	r.Get("/", h.listPublished)
	r.Get("/{slug}", h.getPublished)
}

// RegisterAdmin mounts the guarded management surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/publish", h.publish)
	r.Post("/{id}/archive", h.archive)
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")
	articles, err := h.service.ListPublished(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Listings carry excerpts only; the full body is served per slug.
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"articles": toListResponse(articles, false)})
}

func (h *Handler) getPublished(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetPublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a, true))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := r.URL.Query().Get("featured"); v != "" {
		featured := v == "true" || v == "1"
		filter.Featured = &featured
	}
	articles, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"articles": toListResponse(articles, false)})
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

	var authorID *id.AdminUserID
	if role, ok := guard.RoleFromContext(r.Context()); ok {
		authorID = &role.ID
		if req.Author == "" {
			req.Author = role.Name
		}
	}
	a, err := h.service.Create(r.Context(), *req, authorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(a, true))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.service.Get(r.Context(), articleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a, true))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
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
	a, err := h.service.Update(r.Context(), articleID, *req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a, true))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), articleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Publish)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Archive)
}

func (h *Handler) statusChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, articleID id.ArticleID) (*Article, error)) {
	articleID, err := id.ParseArticleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := change(r.Context(), articleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(a, true))
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

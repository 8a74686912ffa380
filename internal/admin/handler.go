package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chambers/internal/auth/guard"
	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/httputil"
)

// UserResponse is the wire shape of an admin user record. The identity id
// is internal to the auth pairing and is not exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(role *models.AdminRole) UserResponse {
	resp := UserResponse{
		ID:        role.ID.String(),
		Email:     role.Email,
		Name:      role.Name,
		Role:      string(role.Role),
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
	if role.CreatedBy != nil {
		creator := role.CreatedBy.String()
		resp.CreatedBy = &creator
	}
	return resp
}

// Handler exposes the user management endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. The router passed in must already be behind
// the super-admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	users := make([]UserResponse, 0, len(roles))
	for _, role := range roles {
		users = append(users, toUserResponse(role))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[CreateUserRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := httputil.PrepareRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	creator, _ := guard.RoleFromContext(r.Context())
	role, err := h.service.CreateUser(r.Context(), *req, creator)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(role))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	adminUserID, err := id.ParseAdminUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid user id"))
		return
	}

	if creator, ok := guard.RoleFromContext(r.Context()); ok && creator.ID == adminUserID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConflict, "you cannot delete your own account"))
		return
	}

	if err := h.service.DeleteUser(r.Context(), adminUserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

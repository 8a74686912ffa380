package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chambers/pkg/platform/httputil"
)

// Handler exposes the dashboard stats endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs the handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the routes. Must sit behind the admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.get)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "1"
	out, err := h.service.Get(r.Context(), refresh)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

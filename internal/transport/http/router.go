// Package http assembles the service's routing tree: the public content
// surface, the session endpoints, and the guarded admin surface.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chambers/internal/admin"
	"chambers/internal/auth/guard"
	"chambers/internal/auth/session"
	"chambers/internal/content/article"
	"chambers/internal/content/job"
	"chambers/internal/content/stats"
	"chambers/internal/content/tag"
	"chambers/internal/media"
	"chambers/internal/platform/health"
	"chambers/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

// Handlers bundles everything the router mounts. Media may be nil when no
// object storage is configured.
type Handlers struct {
	Guard    *guard.Guard
	Session  *session.Handler
	Articles *article.Handler
	Tags     *tag.Handler
	Jobs     *job.Handler
	Stats    *stats.Handler
	Admin    *admin.Handler
	Media    *media.Handler
	Health   *health.Handler
}

// NewRouter builds the chi routing tree with the platform middleware stack.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))

	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		// Public surface: published content only.
		r.Route("/articles", h.Articles.RegisterPublic)
		r.Route("/tags", h.Tags.RegisterPublic)
		r.Route("/jobs", h.Jobs.RegisterPublic)

		r.Route("/auth", h.Session.Register)

		// Admin surface: every route below resolves the session and
		// requires an admin grant.
		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Guard.RequireAdmin)

			r.Route("/articles", func(r chi.Router) {
				h.Articles.RegisterAdmin(r)
				h.Tags.RegisterArticleRoutes(r)
			})
			r.Route("/tags", h.Tags.RegisterAdmin)
			r.Route("/jobs", h.Jobs.RegisterAdmin)
			r.Route("/stats", h.Stats.Register)
			if h.Media != nil {
				r.Route("/media", h.Media.Register)
			}

			// User management is super-admin only.
			r.Route("/users", func(r chi.Router) {
				r.Use(h.Guard.RequireSuperAdmin)
				h.Admin.Register(r)
			})
		})
	})

	return r
}

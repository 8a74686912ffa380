package guard

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	authmetrics "chambers/internal/auth/metrics"
	"chambers/internal/auth/models"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/httputil"
)

type contextKey string

const roleKey contextKey = "adminRole"

// StatusResolver is the slice of the auth resolver the guard needs.
type StatusResolver interface {
	Resolve(ctx context.Context, credential string) models.AuthStatus
}

// Guard enforces admin access on protected routes.
type Guard struct {
	resolver   StatusResolver
	loginPath  string
	cookieName string
	logger     *slog.Logger
	metrics    *authmetrics.Metrics
}

// New constructs a guard. metrics may be nil.
func New(resolver StatusResolver, loginPath, cookieName string, logger *slog.Logger, m *authmetrics.Metrics) *Guard {
	if loginPath == "" {
		loginPath = "/admin/login"
	}
	return &Guard{
		resolver:   resolver,
		loginPath:  loginPath,
		cookieName: cookieName,
		logger:     logger,
		metrics:    m,
	}
}

// RequireAdmin resolves the request's credential and admits only requests
// holding an admin grant. Browsers without an identity are redirected to the
// login page; API clients get a JSON error envelope.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := g.resolver.Resolve(r.Context(), g.credential(r))
		decision := Evaluate(status)
		g.count(decision)

		switch decision {
		case DecisionAuthorized:
			ctx := context.WithValue(r.Context(), roleKey, status.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		case DecisionUnauthorized:
			g.refuseOrRedirect(w, r)
		case DecisionDenied:
			g.logger.InfoContext(r.Context(), "admin access denied",
				"identity_id", status.IdentityID.String(),
				"path", r.URL.Path,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "You do not have admin access"))
		case DecisionLoading:
			w.Header().Set("Retry-After", "1")
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "Authorization is still resolving"))
		default:
			g.logger.ErrorContext(r.Context(), "auth resolution failed",
				"path", r.URL.Path,
				"error", status.Err,
			)
			httputil.WriteError(w, status.Err)
		}
	})
}

// RequireSuperAdmin further restricts an already-guarded route to grants
// allowed to manage users. It must be mounted inside RequireAdmin.
func (g *Guard) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := RoleFromContext(r.Context())
		if !ok || !role.IsSuperAdmin() {
			g.count(DecisionDenied)
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "Super admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RoleFromContext returns the admin grant injected by RequireAdmin.
func RoleFromContext(ctx context.Context) (*models.AdminRole, bool) {
	role, ok := ctx.Value(roleKey).(*models.AdminRole)
	return role, ok && role != nil
}

// credential extracts the session credential: a bearer token if present,
// otherwise the session cookie. Empty means no identity was presented.
func (g *Guard) credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if g.cookieName != "" {
		if c, err := r.Cookie(g.cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}

// refuseOrRedirect sends browsers to the login page and API clients a 401.
// The redirect replaces the current navigation rather than stacking on it.
func (g *Guard) refuseOrRedirect(w http.ResponseWriter, r *http.Request) {
	if acceptsHTML(r) {
		http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
		return
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authentication required"))
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (g *Guard) count(d Decision) {
	if g.metrics != nil {
		g.metrics.GuardDecisions.WithLabelValues(d.String()).Inc()
	}
}

// Package session exposes the sign-in, sign-out, and introspection
// endpoints around the auth resolver.
package session

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"
	"golang.org/x/time/rate"

	authmetrics "chambers/internal/auth/metrics"
	"chambers/internal/auth/models"
	"chambers/internal/auth/resolver"
	"chambers/internal/identity"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/httputil"
)

// PasswordAuthenticator is implemented by providers that own credentials
// directly (the in-process provider). Hosted deployments sign in at the
// provider instead and never mount the login endpoint.
type PasswordAuthenticator interface {
	SignIn(ctx context.Context, email, password string) (credential string, ident *identity.Identity, err error)
}

// Sign-in attempts are throttled per client address. Limiters idle past
// limiterIdleTTL are swept so the map stays bounded by active clients.
const (
	signInRate     = rate.Limit(0.2)
	signInBurst    = 5
	limiterIdleTTL = 15 * time.Minute
)

// Handler exposes the session endpoints.
type Handler struct {
	resolver      *resolver.Resolver
	provider      identity.Provider
	authenticator PasswordAuthenticator
	cookieName    string
	logger        *slog.Logger
	metrics       *authmetrics.Metrics

	mu       sync.Mutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewHandler constructs the session handler. authenticator may be nil when
// sign-in is handled by a hosted provider; metrics may be nil.
func NewHandler(res *resolver.Resolver, provider identity.Provider, authenticator PasswordAuthenticator, cookieName string, logger *slog.Logger, m *authmetrics.Metrics) *Handler {
	if cookieName == "" {
		cookieName = "chambers_session"
	}
	return &Handler{
		resolver:      res,
		provider:      provider,
		authenticator: authenticator,
		cookieName:    cookieName,
		logger:        logger,
		metrics:       m,
		limiters:      make(map[string]*limiterEntry),
		now:           time.Now,
	}
}

// Register mounts the routes. These sit outside the admin guard: the whole
// point of most of them is that the caller is not authorized yet.
func (h *Handler) Register(r chi.Router) {
	if h.authenticator != nil {
		r.Post("/login", h.login)
	}
	r.Post("/logout", h.logout)
	r.Get("/session", h.session)
	r.Post("/retry", h.retry)
}

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize implements httputil.Normalizable.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate implements httputil.Validatable.
func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(clientAddr(r)) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "too many sign-in attempts, try again later"))
		return
	}

	req, ok := httputil.DecodeJSON[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := httputil.PrepareRequest(req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	credential, ident, err := h.authenticator.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.InfoContext(r.Context(), "sign-in rejected",
			"email", req.Email,
			"device", deviceLabel(r.UserAgent()),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))
		return
	}

	h.logger.InfoContext(r.Context(), "sign-in accepted",
		"identity_id", ident.ID.String(),
		"device", deviceLabel(r.UserAgent()),
	)
	http.SetCookie(w, h.sessionCookie(credential, ident.ExpiresAt))

	status := h.resolver.Resolve(r.Context(), credential)
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	credential := h.credential(r)
	if credential != "" {
		if err := h.provider.SignOut(r.Context(), credential); err != nil {
			h.logger.WarnContext(r.Context(), "sign-out at provider failed", "error", err)
		}
	}
	http.SetCookie(w, h.expiredCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	status := h.resolver.Resolve(r.Context(), h.credential(r))
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

// retry re-resolves from scratch, bypassing the role cache. It backs the
// "Try Again" affordance on the error view.
func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	status := h.resolver.Retry(r.Context(), h.credential(r))
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

// StatusResponse is the wire shape of an authorization status.
type StatusResponse struct {
	State string `json:"state"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Error string `json:"error,omitempty"`
}

func toStatusResponse(status models.AuthStatus) StatusResponse {
	resp := StatusResponse{State: status.State.String()}
	if status.Role != nil {
		resp.Email = status.Role.Email
		resp.Name = status.Role.Name
		resp.Role = string(status.Role.Role)
	}
	if status.Err != nil {
		resp.Error = status.Err.Error()
	}
	return resp
}

func (h *Handler) credential(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(h.cookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) sessionCookie(credential string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    credential,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) allow(addr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	for key, entry := range h.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(h.limiters, key)
		}
	}
	entry, ok := h.limiters[addr]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(signInRate, signInBurst)}
		h.limiters[addr] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// deviceLabel condenses the user agent into a short audit label.
func deviceLabel(ua string) string {
	if ua == "" {
		return "unknown"
	}
	parsed := useragent.New(ua)
	browser, version := parsed.Browser()
	label := browser
	if version != "" {
		label += " " + version
	}
	if os := parsed.OS(); os != "" {
		label += " on " + os
	}
	return label
}

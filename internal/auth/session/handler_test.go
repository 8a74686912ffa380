package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chambers/internal/auth/models"
	"chambers/internal/auth/resolver"
	"chambers/internal/auth/store"
	"chambers/internal/identity/memory"
	id "chambers/pkg/domain"
)

type fixture struct {
	handler  *Handler
	provider *memory.Provider
	roles    *store.InMemoryRoleStore
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := memory.New()
	roles := store.NewMemory()
	res := resolver.New(provider, roles, resolver.Config{}, logger, nil, nil)
	t.Cleanup(res.Close)

	f := &fixture{
		handler:  NewHandler(res, provider, provider, "chambers_session", logger, nil),
		provider: provider,
		roles:    roles,
	}
	f.router = chi.NewRouter()
	f.router.Route("/auth", f.handler.Register)
	return f
}

func (f *fixture) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	identityID, err := f.provider.CreateUser(context.Background(), email, password)
	require.NoError(t, err)
	require.NoError(t, f.roles.Create(context.Background(), &models.AdminRole{
		ID:         id.NewAdminUserID(),
		IdentityID: identityID,
		Email:      email,
		Name:       "Jane Counsel",
		Role:       models.RoleAdmin,
	}))
}

func (f *fixture) do(t *testing.T, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.5:49152"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "chambers_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginSetsSessionCookieAndResolvesRole(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	rec := f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "authenticated_with_role", status.State)
	assert.Equal(t, "admin", status.Role)
	assert.Equal(t, "Jane Counsel", status.Name)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	rec := f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	var last *httptest.ResponseRecorder
	for i := 0; i < signInBurst+1; i++ {
		last = f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "wrong"})
	}
	assert.Equal(t, http.StatusServiceUnavailable, last.Code)
}

func TestLimiterMapEvictsIdleClients(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.handler.now = func() time.Time { return now }

	f.handler.allow("203.0.113.5")
	f.handler.allow("203.0.113.6")
	assert.Len(t, f.handler.limiters, 2)

	now = now.Add(limiterIdleTTL + time.Minute)
	f.handler.allow("203.0.113.7")
	assert.Len(t, f.handler.limiters, 1)
	assert.Contains(t, f.handler.limiters, "203.0.113.7")
}

func TestSessionIntrospection(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	login := f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	cookie := sessionCookie(t, login)

	rec := f.do(t, http.MethodGet, "/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "authenticated_with_role", status.State)
}

func TestSessionWithoutCredential(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "unauthenticated", status.State)
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	login := f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	cookie := sessionCookie(t, login)

	logout := f.do(t, http.MethodPost, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusNoContent, logout.Code)
	cleared := sessionCookie(t, logout)
	assert.Equal(t, "", cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The credential no longer maps to a session.
	rec := f.do(t, http.MethodGet, "/auth/session", nil, cookie)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "unauthenticated", status.State)
}

func TestRetryResolvesFreshly(t *testing.T) {
	f := newFixture(t)
	f.seedAdmin(t, "jane@example.com", "correct-horse")

	login := f.do(t, http.MethodPost, "/auth/login", LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	cookie := sessionCookie(t, login)

	rec := f.do(t, http.MethodPost, "/auth/retry", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "authenticated_with_role", status.State)
}

func TestDeviceLabel(t *testing.T) {
	label := deviceLabel("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, label, "Chrome")
	assert.Equal(t, "unknown", deviceLabel(""))
}

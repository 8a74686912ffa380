package guard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/httputil"
)

type stubResolver struct {
	status     models.AuthStatus
	credential string
}

func (s *stubResolver) Resolve(_ context.Context, credential string) models.AuthStatus {
	s.credential = credential
	return s.status
}

func newGuard(status models.AuthStatus) (*Guard, *stubResolver) {
	resolver := &stubResolver{status: status}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(resolver, "/admin/login", "chambers_session", logger, nil), resolver
}

func grant(tag models.Role) *models.AdminRole {
	return &models.AdminRole{
		ID:         id.NewAdminUserID(),
		IdentityID: "identity-1",
		Email:      "counsel@example.com",
		Role:       tag,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		status models.AuthStatus
		want   Decision
	}{
		{"loading", models.Loading(), DecisionLoading},
		{"unauthenticated", models.Unauthenticated(), DecisionUnauthorized},
		{"no role is denied not failed", models.NoRole("identity-1"), DecisionDenied},
		{"with role", models.WithRole("identity-1", grant(models.RoleAdmin)), DecisionAuthorized},
		{"error", models.Failed("identity-1", dErrors.New(dErrors.CodeTimeout, "Failed to load admin user data")), DecisionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.status))
		})
	}
}

func TestRequireAdminAuthorizedInjectsRole(t *testing.T) {
	role := grant(models.RoleAdmin)
	g, _ := newGuard(models.WithRole("identity-1", role))

	var seen *models.AdminRole
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := RoleFromContext(r.Context())
		require.True(t, ok)
		seen = got
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/articles", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, role.ID, seen.ID)
}

func TestRequireAdminRedirectsBrowsersToLogin(t *testing.T) {
	g, _ := newGuard(models.Unauthenticated())
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestRequireAdminUnauthenticatedAPIClient(t *testing.T) {
	g, _ := newGuard(models.Unauthenticated())
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/articles", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, string(dErrors.CodeUnauthorized), body.Error)
}

func TestRequireAdminNoRoleIsForbidden(t *testing.T) {
	g, _ := newGuard(models.NoRole("identity-1"))
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/articles", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminResolutionFailure(t *testing.T) {
	g, _ := newGuard(models.Failed("identity-1",
		dErrors.New(dErrors.CodeTimeout, "Failed to load admin user data")))
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/articles", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	var body httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Failed to load admin user data", body.Description)
}

func TestCredentialExtraction(t *testing.T) {
	g, resolver := newGuard(models.Unauthenticated())
	handler := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	t.Run("bearer token wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		req.AddCookie(&http.Cookie{Name: "chambers_session", Value: "cookie-456"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "tok-123", resolver.credential)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "chambers_session", Value: "cookie-456"})
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "cookie-456", resolver.credential)
	})

	t.Run("no credential", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, "", resolver.credential)
	})
}

func TestRequireSuperAdmin(t *testing.T) {
	g, _ := newGuard(models.AuthStatus{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("super admin passes", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), roleKey, grant(models.RoleSuperAdmin))
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		g.RequireSuperAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain admin is refused", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), roleKey, grant(models.RoleAdmin))
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		g.RequireSuperAdmin(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing role is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		g.RequireSuperAdmin(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "chambers/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, secret string, sub string, expiresIn time.Duration) string {
	t.Helper()
	claims := accessClaims{
		Email: "lawyer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestCurrentIdentityEmptyCredential(t *testing.T) {
	p := New(Config{BaseURL: "http://unused"}, discardLogger())

	ident, err := p.CurrentIdentity(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestCurrentIdentityJWTFastPath(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, JWTSecret: "sssh"}, discardLogger())

	token := signToken(t, "sssh", "identity-1", time.Hour)
	ident, err := p.CurrentIdentity(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, id.IdentityID("identity-1"), ident.ID)
	assert.Equal(t, "lawyer@example.com", ident.Email)
	assert.Zero(t, calls, "verifiable token must not hit the remote API")
}

func TestCurrentIdentityExpiredTokenFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, JWTSecret: "sssh"}, discardLogger())

	token := signToken(t, "sssh", "identity-1", -time.Minute)
	ident, err := p.CurrentIdentity(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, ident, "provider 401 means unauthenticated, not an error")
}

func TestCurrentIdentityRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer opaque-credential", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"identity-7","email":"partner@example.com","created_at":"2025-01-02T03:04:05Z"}`))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL}, discardLogger())

	ident, err := p.CurrentIdentity(context.Background(), "opaque-credential")
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, id.IdentityID("identity-7"), ident.ID)
	assert.Equal(t, "partner@example.com", ident.Email)
}

func TestCurrentIdentityServerErrorNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"msg":"upstream exploded"}`))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL}, discardLogger())

	_, err := p.CurrentIdentity(context.Background(), "opaque")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestCurrentIdentityNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL}, discardLogger())

	_, err := p.CurrentIdentity(context.Background(), "opaque")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSignOutPublishesEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL}, discardLogger())
	events, unsubscribe := p.Subscribe()
	defer unsubscribe()

	require.NoError(t, p.SignOut(context.Background(), "cred"))

	select {
	case ev := <-events:
		assert.Equal(t, "signed_out", string(ev.Kind))
		assert.Nil(t, ev.Identity)
	case <-time.After(time.Second):
		t.Fatal("expected a sign-out event")
	}
}

func TestCreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"new-identity"}`))
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, ServiceToken: "service-token"}, discardLogger())

	identityID, err := p.CreateUser(context.Background(), "new@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, id.IdentityID("new-identity"), identityID)
}

func TestDeleteUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/auth/v1/admin/users/gone", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := New(Config{BaseURL: srv.URL, ServiceToken: "service-token"}, discardLogger())
	require.NoError(t, p.DeleteUser(context.Background(), id.IdentityID("gone")))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	p := New(Config{BaseURL: "http://unused"}, discardLogger())

	events, unsubscribe := p.Subscribe()
	unsubscribe()

	_, open := <-events
	assert.False(t, open)

	// Second call is a no-op.
	unsubscribe()
}

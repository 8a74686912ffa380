package httpapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chambers/internal/identity"
	id "chambers/pkg/domain"
)

// accessClaims are the claims the hosted provider puts in its HS256 access
// tokens. Only the subset we read is declared.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenVerifier validates provider access tokens locally so the common case
// avoids a network round trip. The remote whoami call stays the fallback for
// opaque credentials.
type tokenVerifier struct {
	secret []byte
	now    func() time.Time
}

func newTokenVerifier(secret string, now func() time.Time) *tokenVerifier {
	if now == nil {
		now = time.Now
	}
	return &tokenVerifier{secret: []byte(secret), now: now}
}

// Verify parses and validates the token, returning the embedded identity.
// An expired or malformed token returns an error; callers treat that as
// "fall back to the remote call", not as unauthenticated.
func (v *tokenVerifier) Verify(tokenString string) (*identity.Identity, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("no signing secret configured")
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid access token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token missing subject")
	}

	ident := &identity.Identity{
		ID:    id.IdentityID(claims.Subject),
		Email: claims.Email,
	}
	if claims.IssuedAt != nil {
		ident.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ident.ExpiresAt = claims.ExpiresAt.Time
	}
	return ident, nil
}

// Package identity defines the narrow surface of the hosted identity
// provider the service consumes. Session issuance, refresh, and password
// handling belong to the provider; this package only carries references.
package identity

import (
	"context"
	"time"

	id "chambers/pkg/domain"
)

// Identity is an authenticated principal reference. Issuance and expiry are
// owned entirely by the provider.
type Identity struct {
	ID        id.IdentityID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// EventKind classifies identity-change events.
type EventKind string

const (
	EventSignedIn       EventKind = "signed_in"
	EventSignedOut      EventKind = "signed_out"
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is an identity-change notification. Identity is nil for sign-out.
type Event struct {
	Kind       EventKind
	Identity   *Identity
	Credential string
}

// Provider is the session store collaborator. Implementations already
// perform their own retry/refresh; callers bound each call with a context
// deadline and do not retry beyond it.
type Provider interface {
	// CurrentIdentity resolves the presented credential to an identity.
	// Returns (nil, nil) when the credential is absent or no longer maps
	// to a session - that is the expected unauthenticated outcome, not
	// an error.
	CurrentIdentity(ctx context.Context, credential string) (*Identity, error)

	// SignOut terminates the session behind the credential.
	SignOut(ctx context.Context, credential string) error

	// Subscribe returns a channel of identity-change events and an
	// unsubscribe function. The channel is closed on unsubscribe.
	Subscribe() (<-chan Event, func())
}

// Admin extends Provider with the provisioning operations used by user
// management. Only super-admin flows reach these.
type Admin interface {
	Provider

	// CreateUser provisions a login at the provider and returns the new
	// identity id.
	CreateUser(ctx context.Context, email, password string) (id.IdentityID, error)

	// DeleteUser removes the login. Used both for user removal and as the
	// compensating cleanup when the role record insert fails.
	DeleteUser(ctx context.Context, identityID id.IdentityID) error
}

package models

import (
	"time"

	id "chambers/pkg/domain"
)

// Role is the authorization tag on an admin user record.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the known tags.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminRole links an identity to its authorization grant. At most one
// record exists per identity id. Records are created and deleted through
// user management; the resolver only reads them.
type AdminRole struct {
	ID         id.AdminUserID
	IdentityID id.IdentityID
	Email      string
	Name       string
	Role       Role
	CreatedBy  *id.AdminUserID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsSuperAdmin reports whether the grant allows user management.
func (a *AdminRole) IsSuperAdmin() bool {
	return a != nil && a.Role == RoleSuperAdmin
}

// State enumerates the observable authorization states.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticatedNoRole
	StateAuthenticatedWithRole
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticatedNoRole:
		return "authenticated_no_role"
	case StateAuthenticatedWithRole:
		return "authenticated_with_role"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// AuthStatus is the tagged union every rendering decision derives from.
// Role is set only for StateAuthenticatedWithRole; Err only for StateError.
// IdentityID is set for every authenticated state, including errors that
// occurred after the identity fetch succeeded.
type AuthStatus struct {
	State      State
	IdentityID id.IdentityID
	Role       *AdminRole
	Err        error
}

// Loading returns the initial status.
func Loading() AuthStatus {
	return AuthStatus{State: StateLoading}
}

// Unauthenticated returns the no-identity terminal status.
func Unauthenticated() AuthStatus {
	return AuthStatus{State: StateUnauthenticated}
}

// NoRole returns the authenticated-without-grant status.
func NoRole(identityID id.IdentityID) AuthStatus {
	return AuthStatus{State: StateAuthenticatedNoRole, IdentityID: identityID}
}

// WithRole returns the authorized status.
func WithRole(identityID id.IdentityID, role *AdminRole) AuthStatus {
	return AuthStatus{State: StateAuthenticatedWithRole, IdentityID: identityID, Role: role}
}

// Failed returns an error status. identityID may be empty when the failure
// happened before the identity was known.
func Failed(identityID id.IdentityID, err error) AuthStatus {
	return AuthStatus{State: StateError, IdentityID: identityID, Err: err}
}

// Package store persists admin role records.
package store

import (
	"context"

	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested record does not exist
// - Return sentinel.ErrConflict (wrapped) on unique constraint violations
// - Return wrapped errors with context for infrastructure failures

// RoleStore is the authorization-record repository surface the resolver
// and user management depend on.
type RoleStore interface {
	// FindByIdentity returns the role record for the identity, or a
	// not-found error when no grant exists (the expected no-role case).
	FindByIdentity(ctx context.Context, identityID id.IdentityID) (*models.AdminRole, error)

	// Create inserts a new role record. Fails with a conflict error when
	// the identity already has a grant.
	Create(ctx context.Context, role *models.AdminRole) error

	// Delete removes the record.
	Delete(ctx context.Context, adminUserID id.AdminUserID) error

	// FindByID returns the record by its own id.
	FindByID(ctx context.Context, adminUserID id.AdminUserID) (*models.AdminRole, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*models.AdminRole, error)
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// InMemoryRoleStore stores admin role records in memory for tests/dev.
type InMemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[id.AdminUserID]*models.AdminRole
}

// NewMemory constructs an empty in-memory role store.
func NewMemory() *InMemoryRoleStore {
	return &InMemoryRoleStore{roles: make(map[id.AdminUserID]*models.AdminRole)}
}

func (s *InMemoryRoleStore) FindByIdentity(_ context.Context, identityID id.IdentityID) (*models.AdminRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range s.roles {
		if role.IdentityID == identityID {
			copied := *role
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryRoleStore) Create(_ context.Context, role *models.AdminRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.IdentityID == role.IdentityID {
			return fmt.Errorf("identity already has a role record: %w", sentinel.ErrConflict)
		}
	}

	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *InMemoryRoleStore) Delete(_ context.Context, adminUserID id.AdminUserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[adminUserID]; !ok {
		return fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
	}
	delete(s.roles, adminUserID)
	return nil
}

func (s *InMemoryRoleStore) FindByID(_ context.Context, adminUserID id.AdminUserID) (*models.AdminRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[adminUserID]
	if !ok {
		return nil, fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
	}
	copied := *role
	return &copied, nil
}

func (s *InMemoryRoleStore) List(_ context.Context) ([]*models.AdminRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]*models.AdminRole, 0, len(s.roles))
	for _, role := range s.roles {
		copied := *role
		roles = append(roles, &copied)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].CreatedAt.After(roles[j].CreatedAt)
	})
	return roles, nil
}

// Verify interface satisfaction.
var _ RoleStore = (*InMemoryRoleStore)(nil)

// Package admin manages the admin user roster: provisioning a login at the
// identity provider and pairing it with a role record.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"chambers/internal/auth/models"
	"chambers/internal/auth/store"
	"chambers/internal/identity"
	pmetrics "chambers/internal/platform/metrics"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/sentinel"
)

const minPasswordLength = 8

// CreateUserRequest carries the fields for provisioning a new admin user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Normalize implements httputil.Normalizable.
func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
}

// Validate implements httputil.Validatable.
func (r *CreateUserRequest) Validate() error {
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !models.Role(r.Role).Valid() {
		return dErrors.New(dErrors.CodeValidation, "role must be admin or super_admin")
	}
	return nil
}

// Service provisions and removes admin users. Creation spans two systems:
// the identity provider owns the login, the role store owns the grant.
type Service struct {
	provider identity.Admin
	roles    store.RoleStore
	logger   *slog.Logger
	metrics  *pmetrics.Metrics
}

// NewService constructs the user management service. metrics may be nil.
func NewService(provider identity.Admin, roles store.RoleStore, logger *slog.Logger, m *pmetrics.Metrics) *Service {
	return &Service{provider: provider, roles: roles, logger: logger, metrics: m}
}

// CreateUser provisions the login first, then inserts the role record. If
// the insert fails the login is deleted again so the provider never holds
// an orphaned account that could authenticate without a grant.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest, createdBy *models.AdminRole) (*models.AdminRole, error) {
	identityID, err := s.provider.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision login")
	}

	role := &models.AdminRole{
		ID:         id.NewAdminUserID(),
		IdentityID: identityID,
		Email:      req.Email,
		Name:       req.Name,
		Role:       models.Role(req.Role),
	}
	if createdBy != nil {
		creator := createdBy.ID
		role.CreatedBy = &creator
	}
	now := time.Now().UTC()
	role.CreatedAt = now
	role.UpdatedAt = now

	if err := s.roles.Create(ctx, role); err != nil {
		// Compensate: the login must not outlive the failed record insert.
		if delErr := s.provider.DeleteUser(ctx, identityID); delErr != nil {
			s.logger.ErrorContext(ctx, "orphaned login left at provider after failed role insert",
				"identity_id", identityID.String(),
				"error", delErr,
			)
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "user already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin user")
	}

	if s.metrics != nil {
		s.metrics.AdminUsersCreated.Inc()
	}
	s.logger.InfoContext(ctx, "admin user created",
		"admin_user_id", role.ID.String(),
		"role", string(role.Role),
	)
	return role, nil
}

// DeleteUser removes the role record and then the login. A record that is
// already gone is reported as not found before the provider is touched.
func (s *Service) DeleteUser(ctx context.Context, adminUserID id.AdminUserID) error {
	role, err := s.roles.FindByID(ctx, adminUserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "admin user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin user")
	}

	if err := s.roles.Delete(ctx, adminUserID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete admin user")
	}
	if err := s.provider.DeleteUser(ctx, role.IdentityID); err != nil {
		// The grant is gone so the login can no longer reach admin routes;
		// log and surface the provider failure for the operator.
		s.logger.ErrorContext(ctx, "failed to delete login at provider",
			"identity_id", role.IdentityID.String(),
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete login")
	}

	s.logger.InfoContext(ctx, "admin user deleted", "admin_user_id", adminUserID.String())
	return nil
}

// ListUsers returns all admin user records, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]*models.AdminRole, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list admin users")
	}
	return roles, nil
}

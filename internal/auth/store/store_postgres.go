package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"chambers/internal/auth/models"
	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// PostgresRoleStore persists admin role records in PostgreSQL.
type PostgresRoleStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed role store.
func NewPostgres(db *sql.DB) *PostgresRoleStore {
	return &PostgresRoleStore{db: db}
}

func (s *PostgresRoleStore) FindByIdentity(ctx context.Context, identityID id.IdentityID) (*models.AdminRole, error) {
	query := `
		SELECT id, identity_id, email, name, role, created_by, created_at, updated_at
		FROM admin_users
		WHERE identity_id = $1
	`
	role, err := scanRole(s.db.QueryRowContext(ctx, query, string(identityID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin role: %w", err)
	}
	return role, nil
}

func (s *PostgresRoleStore) Create(ctx context.Context, role *models.AdminRole) error {
	if role == nil {
		return fmt.Errorf("admin role is required")
	}
	query := `
		INSERT INTO admin_users (id, identity_id, email, name, role, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var createdBy any
	if role.CreatedBy != nil {
		createdBy = uuid.UUID(*role.CreatedBy)
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(role.ID),
		string(role.IdentityID),
		role.Email,
		role.Name,
		string(role.Role),
		createdBy,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("identity already has a role record: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create admin role: %w", err)
	}
	return nil
}

func (s *PostgresRoleStore) Delete(ctx context.Context, adminUserID id.AdminUserID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, uuid.UUID(adminUserID))
	if err != nil {
		return fmt.Errorf("delete admin role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete admin role: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresRoleStore) FindByID(ctx context.Context, adminUserID id.AdminUserID) (*models.AdminRole, error) {
	query := `
		SELECT id, identity_id, email, name, role, created_by, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`
	role, err := scanRole(s.db.QueryRowContext(ctx, query, uuid.UUID(adminUserID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin role not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find admin role: %w", err)
	}
	return role, nil
}

func (s *PostgresRoleStore) List(ctx context.Context) ([]*models.AdminRole, error) {
	query := `
		SELECT id, identity_id, email, name, role, created_by, created_at, updated_at
		FROM admin_users
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admin roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.AdminRole
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list admin roles: %w", err)
	}
	return roles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*models.AdminRole, error) {
	var (
		role       models.AdminRole
		roleID     uuid.UUID
		identityID string
		roleTag    string
		createdBy  uuid.NullUUID
	)
	err := row.Scan(&roleID, &identityID, &role.Email, &role.Name, &roleTag, &createdBy, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	role.ID = id.AdminUserID(roleID)
	role.IdentityID = id.IdentityID(identityID)
	role.Role = models.Role(roleTag)
	if createdBy.Valid {
		creator := id.AdminUserID(createdBy.UUID)
		role.CreatedBy = &creator
	}
	return &role, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Verify interface satisfaction.
var _ RoleStore = (*PostgresRoleStore)(nil)

package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// PostgresStore persists tags and article links in PostgreSQL. The relation
// table declares ON DELETE CASCADE, so tag deletion needs no extra statement.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed tag store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tagColumns = `id, name, slug, description, color, created_by, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, t *Tag) error {
	query := `
		INSERT INTO blog_tags (` + tagColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var createdBy any
	if t.CreatedBy != nil {
		createdBy = uuid.UUID(*t.CreatedBy)
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID), t.Name, t.Slug, t.Description, t.Color,
		createdBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, t *Tag) error {
	query := `
		UPDATE blog_tags
		SET name = $2, slug = $3, description = $4, color = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID), t.Name, t.Slug, t.Description, t.Color, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("update tag: %w", err)
	}
	return requireAffected(result, "tag")
}

func (s *PostgresStore) Delete(ctx context.Context, tagID id.TagID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM blog_tags WHERE id = $1`, uuid.UUID(tagID))
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireAffected(result, "tag")
}

func (s *PostgresStore) FindByID(ctx context.Context, tagID id.TagID) (*Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM blog_tags WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(tagID))
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM blog_tags WHERE slug = $1`
	return s.findOne(ctx, query, slug)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM blog_tags ORDER BY name`
	return s.queryTags(ctx, query)
}

func (s *PostgresStore) Link(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error {
	query := `INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)`
	_, err := s.db.ExecContext(ctx, query, uuid.UUID(articleID), uuid.UUID(tagID))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("article already tagged: %w", sentinel.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("article or tag not found: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("link tag: %w", err)
	}
	return nil
}

func (s *PostgresStore) Unlink(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error {
	query := `DELETE FROM article_tags WHERE article_id = $1 AND tag_id = $2`
	result, err := s.db.ExecContext(ctx, query, uuid.UUID(articleID), uuid.UUID(tagID))
	if err != nil {
		return fmt.Errorf("unlink tag: %w", err)
	}
	return requireAffected(result, "article tag link")
}

func (s *PostgresStore) ListByArticle(ctx context.Context, articleID id.ArticleID) ([]*Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug, t.description, t.color, t.created_by, t.created_at, t.updated_at
		FROM blog_tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = $1
		ORDER BY t.name
	`
	return s.queryTags(ctx, query, uuid.UUID(articleID))
}

func (s *PostgresStore) queryTags(ctx context.Context, query string, args ...any) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTag(row rowScanner) (*Tag, error) {
	var (
		t         Tag
		tagID     uuid.UUID
		createdBy uuid.NullUUID
	)
	err := row.Scan(&tagID, &t.Name, &t.Slug, &t.Description, &t.Color,
		&createdBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ID = id.TagID(tagID)
	if createdBy.Valid {
		creator := id.AdminUserID(createdBy.UUID)
		t.CreatedBy = &creator
	}
	return &t, nil
}

func requireAffected(result sql.Result, label string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", label, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s not found: %w", label, sentinel.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Verify interface satisfaction.
var _ Store = (*PostgresStore)(nil)

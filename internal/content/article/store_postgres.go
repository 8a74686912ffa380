package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// PostgresStore persists articles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed article store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const articleColumns = `id, title, slug, content, excerpt, cover_url, featured_image,
	is_featured, status, author, author_id, published_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, a *Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID), a.Title, a.Slug, a.Content, a.Excerpt, a.CoverURL,
		a.FeaturedImage, a.Featured, string(a.Status), a.Author,
		nullableUUID(a.AuthorID), a.PublishedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, a *Article) error {
	query := `
		UPDATE articles
		SET title = $2, slug = $3, content = $4, excerpt = $5, cover_url = $6,
			featured_image = $7, is_featured = $8, status = $9, author = $10,
			author_id = $11, published_at = $12, updated_at = $13
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID), a.Title, a.Slug, a.Content, a.Excerpt, a.CoverURL,
		a.FeaturedImage, a.Featured, string(a.Status), a.Author,
		nullableUUID(a.AuthorID), a.PublishedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("update article: %w", err)
	}
	return requireAffected(result, "article")
}

func (s *PostgresStore) Delete(ctx context.Context, articleID id.ArticleID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, uuid.UUID(articleID))
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return requireAffected(result, "article")
}

func (s *PostgresStore) FindByID(ctx context.Context, articleID id.ArticleID) (*Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(articleID))
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
	return s.findOne(ctx, query, slug)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Article, error) {
	a, err := scanArticle(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*Article, error) {
	filter = filter.normalized()

	query := `SELECT ` + articleColumns + ` FROM articles`
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conds = append(conds, fmt.Sprintf("is_featured = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (s *PostgresStore) Count(ctx context.Context, status Status) (int64, error) {
	var (
		n   int64
		err error
	)
	if status == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE status = $1`, string(status)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent articles: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*Article, error) {
	var (
		a         Article
		articleID uuid.UUID
		status    string
		authorID  uuid.NullUUID
		published sql.NullTime
	)
	err := row.Scan(&articleID, &a.Title, &a.Slug, &a.Content, &a.Excerpt,
		&a.CoverURL, &a.FeaturedImage, &a.Featured, &status, &a.Author,
		&authorID, &published, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ID = id.ArticleID(articleID)
	a.Status = Status(status)
	if authorID.Valid {
		author := id.AdminUserID(authorID.UUID)
		a.AuthorID = &author
	}
	if published.Valid {
		t := published.Time
		a.PublishedAt = &t
	}
	return &a, nil
}

func nullableUUID(v *id.AdminUserID) any {
	if v == nil {
		return nil
	}
	return uuid.UUID(*v)
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

// Verify interface satisfaction.
var _ Store = (*PostgresStore)(nil)

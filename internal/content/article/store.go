package article

import (
	"context"
	"time"

	id "chambers/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested record does not exist
// - Return sentinel.ErrConflict (wrapped) on slug collisions
// - Return wrapped errors with context for infrastructure failures

// Store is the article repository surface.
type Store interface {
	Create(ctx context.Context, a *Article) error

	// Update persists the full record; callers load-modify-save.
	Update(ctx context.Context, a *Article) error

	Delete(ctx context.Context, articleID id.ArticleID) error

	FindByID(ctx context.Context, articleID id.ArticleID) (*Article, error)

	// FindBySlug returns the article regardless of status; the service
	// decides what the public surface may see.
	FindBySlug(ctx context.Context, slug string) (*Article, error)

	// List returns articles newest first, honoring the filter.
	List(ctx context.Context, filter ListFilter) ([]*Article, error)

	// Count returns the number of articles with the given status; empty
	// status counts everything.
	Count(ctx context.Context, status Status) (int64, error)

	// CountSince returns the number of articles created at or after the
	// given instant.
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

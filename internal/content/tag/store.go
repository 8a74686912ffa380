package tag

import (
	"context"

	id "chambers/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested record does not exist
// - Return sentinel.ErrConflict (wrapped) on slug collisions and duplicate links
// - Return wrapped errors with context for infrastructure failures

// Store is the tag repository surface, including the article relation table.
type Store interface {
	Create(ctx context.Context, t *Tag) error
	Update(ctx context.Context, t *Tag) error

	// Delete removes the tag and cascades its article links.
	Delete(ctx context.Context, tagID id.TagID) error

	FindByID(ctx context.Context, tagID id.TagID) (*Tag, error)
	FindBySlug(ctx context.Context, slug string) (*Tag, error)

	// List returns all tags ordered by name.
	List(ctx context.Context) ([]*Tag, error)

	// Link attaches the tag to the article; a duplicate pair conflicts.
	Link(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error

	// Unlink detaches the tag; a missing pair is not found.
	Unlink(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error

	// ListByArticle returns the article's tags ordered by name.
	ListByArticle(ctx context.Context, articleID id.ArticleID) ([]*Tag, error)
}

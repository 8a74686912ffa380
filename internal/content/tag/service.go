package tag

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chambers/internal/content/slug"
	pmetrics "chambers/internal/platform/metrics"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/sentinel"
)

// Service implements tag management and article tagging.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *pmetrics.Metrics
	now     func() time.Time
}

// NewService constructs the tag service. metrics may be nil.
func NewService(store Store, logger *slog.Logger, m *pmetrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m, now: time.Now}
}

// Create inserts a new tag.
func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy *id.AdminUserID) (*Tag, error) {
	now := s.now().UTC()
	t := &Tag{
		ID:          id.NewTagID(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "a tag with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tag")
	}
	if s.metrics != nil {
		s.metrics.TagsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "tag created", "tag_id", t.ID.String(), "slug", t.Slug)
	return t, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, tagID id.TagID, req UpdateRequest) (*Tag, error) {
	t, err := s.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		t.Slug = slug.Make(*req.Slug)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		t.Color = strings.TrimSpace(*req.Color)
	}
	t.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "a tag with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update tag")
	}
	return t, nil
}

// Delete removes the tag; its article links go with it.
func (s *Service) Delete(ctx context.Context, tagID id.TagID) error {
	if err := s.store.Delete(ctx, tagID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "tag not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete tag")
	}
	return nil
}

// Get returns the tag by id.
func (s *Service) Get(ctx context.Context, tagID id.TagID) (*Tag, error) {
	t, err := s.store.FindByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "tag not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tag")
	}
	return t, nil
}

// List returns all tags ordered by name.
func (s *Service) List(ctx context.Context) ([]*Tag, error) {
	tags, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tags")
	}
	return tags, nil
}

// TagArticle links the tag to the article. Tagging twice is a conflict.
func (s *Service) TagArticle(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error {
	if err := s.store.Link(ctx, articleID, tagID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.Wrap(err, dErrors.CodeConflict, "article already has this tag")
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeNotFound, "article or tag not found")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to tag article")
		}
	}
	return nil
}

// UntagArticle removes the link.
func (s *Service) UntagArticle(ctx context.Context, articleID id.ArticleID, tagID id.TagID) error {
	if err := s.store.Unlink(ctx, articleID, tagID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "article does not have this tag")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to untag article")
	}
	return nil
}

// ListByArticle returns the article's tags.
func (s *Service) ListByArticle(ctx context.Context, articleID id.ArticleID) ([]*Tag, error) {
	tags, err := s.store.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list article tags")
	}
	return tags, nil
}

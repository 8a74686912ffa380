package article

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

// Service implements the article lifecycle on top of the store. The
// ListCache fronts the public published listing only; admin reads always
// hit the store.
type Service struct {
	store   Store
	cache   *ListCache
	logger  *slog.Logger
	metrics *pmetrics.Metrics
	now     func() time.Time
}

// NewService constructs the article service. cache and metrics may be nil.
func NewService(store Store, cache *ListCache, logger *slog.Logger, m *pmetrics.Metrics) *Service {
	return &Service{store: store, cache: cache, logger: logger, metrics: m, now: time.Now}
}

// Create inserts a new article authored by the given admin user.
func (s *Service) Create(ctx context.Context, req CreateRequest, authorID *id.AdminUserID) (*Article, error) {
	now := s.now().UTC()
	a := &Article{
		ID:            id.NewArticleID(),
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverURL:      req.CoverURL,
		FeaturedImage: req.FeaturedImage,
		Featured:      req.Featured,
		Status:        Status(req.Status),
		Author:        req.Author,
		AuthorID:      authorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if a.Status == StatusPublished {
		a.PublishedAt = &now
	}

	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "an article with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create article")
	}

	if s.metrics != nil {
		s.metrics.ArticlesCreated.Inc()
		if a.Status == StatusPublished {
			s.metrics.ArticlesPublished.Inc()
		}
	}
	s.cache.InvalidateAll(ctx)
	s.logger.InfoContext(ctx, "article created",
		"article_id", a.ID.String(),
		"slug", a.Slug,
		"status", string(a.Status),
	)
	return a, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, articleID id.ArticleID, req UpdateRequest) (*Article, error) {
	a, err := s.get(ctx, articleID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		a.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		a.Slug = slug.Make(*req.Slug)
	}
	if req.Content != nil {
		a.Content = *req.Content
	}
	if req.Excerpt != nil {
		a.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.CoverURL != nil {
		a.CoverURL = *req.CoverURL
	}
	if req.FeaturedImage != nil {
		a.FeaturedImage = *req.FeaturedImage
	}
	if req.Featured != nil {
		a.Featured = *req.Featured
	}
	if req.Author != nil {
		a.Author = strings.TrimSpace(*req.Author)
	}
	if req.Status != nil {
		s.transition(a, Status(*req.Status))
	}
	a.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "an article with this slug already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update article")
	}
	s.cache.InvalidateAll(ctx)
	return a, nil
}

// Publish moves the article to published, stamping PublishedAt on the first
// transition only.
func (s *Service) Publish(ctx context.Context, articleID id.ArticleID) (*Article, error) {
	return s.setStatus(ctx, articleID, StatusPublished)
}

// Archive retires the article from the public surface.
func (s *Service) Archive(ctx context.Context, articleID id.ArticleID) (*Article, error) {
	return s.setStatus(ctx, articleID, StatusArchived)
}

func (s *Service) setStatus(ctx context.Context, articleID id.ArticleID, status Status) (*Article, error) {
	a, err := s.get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if a.Status == status {
		return a, nil
	}
	s.transition(a, status)
	a.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update article status")
	}
	if status == StatusPublished && s.metrics != nil {
		s.metrics.ArticlesPublished.Inc()
	}
	s.cache.InvalidateAll(ctx)
	s.logger.InfoContext(ctx, "article status changed",
		"article_id", a.ID.String(),
		"status", string(status),
	)
	return a, nil
}

func (s *Service) transition(a *Article, status Status) {
	if status == StatusPublished && a.PublishedAt == nil {
		now := s.now().UTC()
		a.PublishedAt = &now
	}
	a.Status = status
}

// Delete removes the article.
func (s *Service) Delete(ctx context.Context, articleID id.ArticleID) error {
	if err := s.store.Delete(ctx, articleID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "article not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete article")
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

// Get returns the article by id regardless of status (admin surface).
func (s *Service) Get(ctx context.Context, articleID id.ArticleID) (*Article, error) {
	return s.get(ctx, articleID)
}

func (s *Service) get(ctx context.Context, articleID id.ArticleID) (*Article, error) {
	a, err := s.store.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "article not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load article")
	}
	return a, nil
}

// GetPublished returns the article by slug only when it is published; the
// public surface never sees drafts or archived pieces.
func (s *Service) GetPublished(ctx context.Context, articleSlug string) (*Article, error) {
	a, err := s.store.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "article not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load article")
	}
	if a.Status != StatusPublished {
		return nil, dErrors.New(dErrors.CodeNotFound, "article not found")
	}
	return a, nil
}

// List returns articles for the admin surface, honoring the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Article, error) {
	articles, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list articles")
	}
	return articles, nil
}

// ListPublished serves the public listing through the Redis page cache.
func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]*Article, error) {
	filter := ListFilter{Status: StatusPublished, Limit: limit, Offset: offset}.normalized()

	if cached, ok := s.cache.Get(ctx, filter.Limit, filter.Offset); ok {
		return cached, nil
	}
	articles, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list articles")
	}
	s.cache.Put(ctx, filter.Limit, filter.Offset, articles)
	return articles, nil
}

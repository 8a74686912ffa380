package article

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// InMemoryStore stores articles in memory for tests/dev.
type InMemoryStore struct {
	mu       sync.RWMutex
	articles map[id.ArticleID]*Article
}

// NewMemory constructs an empty in-memory article store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{articles: make(map[id.ArticleID]*Article)}
}

func (s *InMemoryStore) Create(_ context.Context, a *Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.articles {
		if existing.Slug == a.Slug {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
	}
	copied := *a
	s.articles[a.ID] = &copied
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, a *Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[a.ID]; !ok {
		return fmt.Errorf("article not found: %w", sentinel.ErrNotFound)
	}
	for _, existing := range s.articles {
		if existing.ID != a.ID && existing.Slug == a.Slug {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
	}
	copied := *a
	s.articles[a.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, articleID id.ArticleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[articleID]; !ok {
		return fmt.Errorf("article not found: %w", sentinel.ErrNotFound)
	}
	delete(s.articles, articleID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, articleID id.ArticleID) (*Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[articleID]
	if !ok {
		return nil, fmt.Errorf("article not found: %w", sentinel.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.articles {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("article not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context, filter ListFilter) ([]*Article, error) {
	filter = filter.normalized()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Article
	for _, a := range s.articles {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && a.Featured != *filter.Featured {
			continue
		}
		copied := *a
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []*Article{}, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *InMemoryStore) Count(_ context.Context, status Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.articles {
		if status == "" || a.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) CountSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.articles {
		if !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// Verify interface satisfaction.
var _ Store = (*InMemoryStore)(nil)

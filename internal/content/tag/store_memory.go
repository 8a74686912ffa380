package tag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

type link struct {
	articleID id.ArticleID
	tagID     id.TagID
}

// InMemoryStore stores tags and their article links in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	tags  map[id.TagID]*Tag
	links map[link]struct{}
}

// NewMemory constructs an empty in-memory tag store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		tags:  make(map[id.TagID]*Tag),
		links: make(map[link]struct{}),
	}
}

func (s *InMemoryStore) Create(_ context.Context, t *Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if existing.Slug == t.Slug {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
	}
	copied := *t
	s.tags[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, t *Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[t.ID]; !ok {
		return fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
	}
	for _, existing := range s.tags {
		if existing.ID != t.ID && existing.Slug == t.Slug {
			return fmt.Errorf("slug already in use: %w", sentinel.ErrConflict)
		}
	}
	copied := *t
	s.tags[t.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, tagID id.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[tagID]; !ok {
		return fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tags, tagID)
	for l := range s.links {
		if l.tagID == tagID {
			delete(s.links, l)
		}
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tagID id.TagID) (*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[tagID]
	if !ok {
		return nil, fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
	}
	copied := *t
	return &copied, nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tags {
		if t.Slug == slug {
			copied := *t
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context) ([]*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]*Tag, 0, len(s.tags))
	for _, t := range s.tags {
		copied := *t
		tags = append(tags, &copied)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (s *InMemoryStore) Link(_ context.Context, articleID id.ArticleID, tagID id.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[tagID]; !ok {
		return fmt.Errorf("tag not found: %w", sentinel.ErrNotFound)
	}
	l := link{articleID: articleID, tagID: tagID}
	if _, ok := s.links[l]; ok {
		return fmt.Errorf("article already tagged: %w", sentinel.ErrConflict)
	}
	s.links[l] = struct{}{}
	return nil
}

func (s *InMemoryStore) Unlink(_ context.Context, articleID id.ArticleID, tagID id.TagID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := link{articleID: articleID, tagID: tagID}
	if _, ok := s.links[l]; !ok {
		return fmt.Errorf("article tag link not found: %w", sentinel.ErrNotFound)
	}
	delete(s.links, l)
	return nil
}

func (s *InMemoryStore) ListByArticle(_ context.Context, articleID id.ArticleID) ([]*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tags []*Tag
	for l := range s.links {
		if l.articleID != articleID {
			continue
		}
		if t, ok := s.tags[l.tagID]; ok {
			copied := *t
			tags = append(tags, &copied)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// Verify interface satisfaction.
var _ Store = (*InMemoryStore)(nil)

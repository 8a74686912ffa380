package job

import (
	"context"
	"fmt"
	"sort"
	"sync"

	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

// InMemoryStore stores jobs in memory for tests/dev.
type InMemoryStore struct {
	mu   sync.RWMutex
	jobs map[id.JobID]*Job
}

// NewMemory constructs an empty in-memory job store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{jobs: make(map[id.JobID]*Job)}
}

func (s *InMemoryStore) Create(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID] = copyJob(j)
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, j *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
	}
	s.jobs[j.ID] = copyJob(j)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, jobID id.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, jobID id.JobID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %w", sentinel.ErrNotFound)
	}
	return copyJob(j), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, copyJob(j))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.jobs)), nil
}

func copyJob(j *Job) *Job {
	copied := *j
	copied.Requirements = append([]string(nil), j.Requirements...)
	return &copied
}

// Verify interface satisfaction.
var _ Store = (*InMemoryStore)(nil)

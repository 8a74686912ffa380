package job

import (
	"context"

	id "chambers/pkg/domain"
)

// Error Contract:
// All store methods follow this pattern:
// - Return sentinel.ErrNotFound (wrapped) when the requested record does not exist
// - Return wrapped errors with context for infrastructure failures

// Store is the job repository surface.
type Store interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Delete(ctx context.Context, jobID id.JobID) error
	FindByID(ctx context.Context, jobID id.JobID) (*Job, error)

	// List returns jobs newest first.
	List(ctx context.Context) ([]*Job, error)

	// Count returns the number of open positions.
	Count(ctx context.Context) (int64, error)
}

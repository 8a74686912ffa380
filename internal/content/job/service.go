package job

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	pmetrics "chambers/internal/platform/metrics"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/sentinel"
)

// Service implements careers-board management.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *pmetrics.Metrics
	now     func() time.Time
}

// NewService constructs the job service. metrics may be nil.
func NewService(store Store, logger *slog.Logger, m *pmetrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m, now: time.Now}
}

// Create inserts a new position.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Job, error) {
	now := s.now().UTC()
	j := &Job{
		ID:           id.NewJobID(),
		Title:        req.Title,
		Department:   req.Department,
		Location:     req.Location,
		Type:         req.Type,
		Experience:   req.Experience,
		Description:  req.Description,
		Requirements: req.Requirements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, j); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create job")
	}
	if s.metrics != nil {
		s.metrics.JobsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "job created", "job_id", j.ID.String(), "title", j.Title)
	return j, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, jobID id.JobID, req UpdateRequest) (*Job, error) {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		j.Title = strings.TrimSpace(*req.Title)
	}
	if req.Department != nil {
		j.Department = strings.TrimSpace(*req.Department)
	}
	if req.Location != nil {
		j.Location = strings.TrimSpace(*req.Location)
	}
	if req.Type != nil {
		j.Type = strings.TrimSpace(*req.Type)
	}
	if req.Experience != nil {
		j.Experience = strings.TrimSpace(*req.Experience)
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Requirements != nil {
		j.Requirements = *req.Requirements
	}
	j.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, j); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update job")
	}
	return j, nil
}

// Delete removes the position.
func (s *Service) Delete(ctx context.Context, jobID id.JobID) error {
	if err := s.store.Delete(ctx, jobID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "job not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete job")
	}
	return nil
}

// Get returns the position by id.
func (s *Service) Get(ctx context.Context, jobID id.JobID) (*Job, error) {
	j, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "job not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load job")
	}
	return j, nil
}

// List returns all open positions, newest first.
func (s *Service) List(ctx context.Context) ([]*Job, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list jobs")
	}
	return jobs, nil
}

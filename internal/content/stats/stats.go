// Package stats computes the admin dashboard counters. The aggregate is
// memoized in a single TTL slot so repeated dashboard loads do not fan out
// count queries on every request.
package stats

import (
	"context"
	"log/slog"
	"time"

	"chambers/internal/auth/store"
	"chambers/internal/content/article"
	"chambers/internal/content/job"
	pmetrics "chambers/internal/platform/metrics"
	"chambers/internal/platform/tracer"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/memo"
)

const recentWindow = 7 * 24 * time.Hour

// Stats is the dashboard aggregate.
type Stats struct {
	TotalArticles     int64     `json:"total_articles"`
	PublishedArticles int64     `json:"published_articles"`
	DraftArticles     int64     `json:"draft_articles"`
	RecentArticles    int64     `json:"recent_articles"`
	TotalJobs         int64     `json:"total_jobs"`
	AdminUsers        int64     `json:"admin_users"`
	ComputedAt        time.Time `json:"computed_at"`
}

// Config holds the stats service knobs.
type Config struct {
	// TTL bounds slot freshness; zero means 10 minutes.
	TTL time.Duration
	// Clock is injected for tests; nil means time.Now.
	Clock memo.Clock
}

// Service computes and memoizes the dashboard aggregate.
type Service struct {
	articles article.Store
	jobs     job.Store
	roles    store.RoleStore
	slot     *memo.Slot[Stats]
	logger   *slog.Logger
	metrics  *pmetrics.Metrics
	tracer   tracer.Tracer
	now      memo.Clock
}

// NewService constructs the stats service. metrics and trc may be nil.
func NewService(articles article.Store, jobs job.Store, roles store.RoleStore, cfg Config, logger *slog.Logger, m *pmetrics.Metrics, trc tracer.Tracer) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	if trc == nil {
		trc = tracer.NewNoop()
	}
	return &Service{
		articles: articles,
		jobs:     jobs,
		roles:    roles,
		slot:     memo.NewSlot[Stats](cfg.TTL, cfg.Clock),
		logger:   logger,
		metrics:  m,
		tracer:   trc,
		now:      now,
	}
}

// Get returns the aggregate, recomputing when the slot is stale or when
// refresh forces it. A failed recompute clears the slot so the next call
// tries again instead of serving a half-written aggregate.
func (s *Service) Get(ctx context.Context, refresh bool) (Stats, error) {
	if refresh {
		s.slot.Invalidate()
	} else if cached, ok := s.slot.Get(); ok {
		if s.metrics != nil {
			s.metrics.StatsCacheHits.Inc()
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.StatsCacheMisses.Inc()
	}

	computed, err := s.compute(ctx)
	if err != nil {
		s.slot.Invalidate()
		s.logger.ErrorContext(ctx, "dashboard stats computation failed", "error", err)
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute dashboard stats")
	}
	s.slot.Put(computed)
	return computed, nil
}

func (s *Service) compute(ctx context.Context) (Stats, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanStatsCompute)
	var err error
	defer func() { span.End(err) }()

	out := Stats{ComputedAt: s.now().UTC()}

	if out.TotalArticles, err = s.articles.Count(ctx, ""); err != nil {
		return Stats{}, err
	}
	if out.PublishedArticles, err = s.articles.Count(ctx, article.StatusPublished); err != nil {
		return Stats{}, err
	}
	if out.DraftArticles, err = s.articles.Count(ctx, article.StatusDraft); err != nil {
		return Stats{}, err
	}
	if out.RecentArticles, err = s.articles.CountSince(ctx, out.ComputedAt.Add(-recentWindow)); err != nil {
		return Stats{}, err
	}
	if out.TotalJobs, err = s.jobs.Count(ctx); err != nil {
		return Stats{}, err
	}

	roles, err := s.roles.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	out.AdminUsers = int64(len(roles))
	return out, nil
}

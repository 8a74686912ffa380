// Package metrics exposes Prometheus metrics for the auth resolver and guard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds auth-related Prometheus metrics.
type Metrics struct {
	AuthFailures      *prometheus.CounterVec
	RoleCacheHits     prometheus.Counter
	RoleCacheMisses   prometheus.Counter
	RoleLookupLatency prometheus.Histogram
	GuardDecisions    *prometheus.CounterVec
	StaleResolutions  prometheus.Counter
	SignIns           prometheus.Counter
	SignOuts          prometheus.Counter
}

// New creates and registers all auth metrics.
func New() *Metrics {
	return &Metrics{
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chambers_auth_failures_total",
			Help: "Authentication and authorization failures by reason",
		}, []string{"reason"}),
		RoleCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_role_cache_hits_total",
			Help: "Role resolutions served from the cache slot",
		}),
		RoleCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_role_cache_misses_total",
			Help: "Role resolutions requiring a repository lookup",
		}),
		RoleLookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chambers_role_lookup_seconds",
			Help:    "Latency of admin role repository lookups",
			Buckets: prometheus.DefBuckets,
		}),
		GuardDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chambers_guard_decisions_total",
			Help: "Access guard decisions by outcome",
		}, []string{"decision"}),
		StaleResolutions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_stale_resolutions_total",
			Help: "Role resolutions discarded because a newer request superseded them",
		}),
		SignIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_sign_ins_total",
			Help: "Successful admin sign-ins",
		}),
		SignOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_sign_outs_total",
			Help: "Admin sign-outs",
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds content-facing Prometheus metrics for the application.
// Auth-specific metrics live in internal/auth/metrics.
type Metrics struct {
	ArticlesCreated   prometheus.Counter
	ArticlesPublished prometheus.Counter
	JobsCreated       prometheus.Counter
	TagsCreated       prometheus.Counter
	AdminUsersCreated prometheus.Counter
	MediaUploads      prometheus.Counter
	MediaUploadBytes  prometheus.Counter
	EndpointLatency   *prometheus.HistogramVec
	StatsCacheHits    prometheus.Counter
	StatsCacheMisses  prometheus.Counter
}

// New creates and registers all content metrics.
func New() *Metrics {
	return &Metrics{
		ArticlesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_articles_created_total",
			Help: "Total number of articles created",
		}),
		ArticlesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_articles_published_total",
			Help: "Total number of articles published",
		}),
		JobsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_jobs_created_total",
			Help: "Total number of job postings created",
		}),
		TagsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_tags_created_total",
			Help: "Total number of tags created",
		}),
		AdminUsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_admin_users_created_total",
			Help: "Total number of admin users provisioned",
		}),
		MediaUploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_media_uploads_total",
			Help: "Total number of media uploads",
		}),
		MediaUploadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_media_upload_bytes_total",
			Help: "Total bytes uploaded to media storage",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chambers_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		StatsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_stats_cache_hits_total",
			Help: "Dashboard stats served from the memoized slot",
		}),
		StatsCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chambers_stats_cache_misses_total",
			Help: "Dashboard stats recomputed after a cache miss",
		}),
	}
}

// Package config builds runtime configuration from the environment so main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Timeout and TTL defaults. The two auth budgets are independent: the
// identity fetch and the role lookup each get their own, with distinct
// error messages when exceeded.
const (
	DefaultAuthTimeout       = 10 * time.Second
	DefaultRoleLookupTimeout = 8 * time.Second
	DefaultRoleCacheTTL      = 5 * time.Minute
	DefaultStatsCacheTTL     = 10 * time.Minute
)

// Server captures top-level service configuration.
type Server struct {
	Addr        string
	Environment string
	LoginPath   string

	DatabaseURL string
	RedisURL    string

	Auth  Auth
	Media Media
}

// Auth configures the identity provider client and the resolver budgets.
type Auth struct {
	ProviderURL       string
	ServiceToken      string
	JWTSecret         string
	CookieName        string
	AuthTimeout       time.Duration
	RoleLookupTimeout time.Duration
	RoleCacheTTL      time.Duration
	StatsCacheTTL     time.Duration
}

// Media configures object storage for uploaded images.
type Media struct {
	Bucket        string
	Region        string
	PublicBaseURL string
	MaxUploadMB   int64
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("CHAMBERS_ADDR", ":8080"),
		Environment: envOr("CHAMBERS_ENV", "development"),
		LoginPath:   envOr("CHAMBERS_LOGIN_PATH", "/admin/login"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Auth: Auth{
			ProviderURL:       os.Getenv("AUTH_PROVIDER_URL"),
			ServiceToken:      os.Getenv("AUTH_SERVICE_TOKEN"),
			JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
			CookieName:        envOr("AUTH_COOKIE_NAME", "chambers_session"),
			AuthTimeout:       durationOr("AUTH_TIMEOUT", DefaultAuthTimeout),
			RoleLookupTimeout: durationOr("ROLE_LOOKUP_TIMEOUT", DefaultRoleLookupTimeout),
			RoleCacheTTL:      durationOr("ROLE_CACHE_TTL", DefaultRoleCacheTTL),
			StatsCacheTTL:     durationOr("STATS_CACHE_TTL", DefaultStatsCacheTTL),
		},
		Media: Media{
			Bucket:        os.Getenv("MEDIA_BUCKET"),
			Region:        envOr("MEDIA_REGION", "us-east-1"),
			PublicBaseURL: os.Getenv("MEDIA_PUBLIC_BASE_URL"),
			MaxUploadMB:   int64Or("MEDIA_MAX_UPLOAD_MB", 10),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func int64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

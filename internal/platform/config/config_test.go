package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/admin/login", cfg.LoginPath)
	assert.Equal(t, 10*time.Second, cfg.Auth.AuthTimeout)
	assert.Equal(t, 8*time.Second, cfg.Auth.RoleLookupTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Auth.RoleCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.StatsCacheTTL)
	assert.Equal(t, int64(10), cfg.Media.MaxUploadMB)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHAMBERS_ADDR", ":9999")
	t.Setenv("AUTH_TIMEOUT", "2s")
	t.Setenv("ROLE_CACHE_TTL", "30s")
	t.Setenv("MEDIA_MAX_UPLOAD_MB", "25")

	cfg := FromEnv()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.Auth.AuthTimeout)
	assert.Equal(t, 30*time.Second, cfg.Auth.RoleCacheTTL)
	assert.Equal(t, int64(25), cfg.Media.MaxUploadMB)
}

func TestFromEnvIgnoresMalformedDurations(t *testing.T) {
	t.Setenv("AUTH_TIMEOUT", "soon")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.Auth.AuthTimeout)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Equal(t, uint32(64*1024), cfg.Auth.Argon2Memory)
	assert.Equal(t, DefaultMinRating, cfg.Reviews.MinRating)
	assert.Equal(t, DefaultMaxRating, cfg.Reviews.MaxRating)
	assert.Equal(t, 20*time.Millisecond, cfg.Reviews.RetryBackoff)
	assert.Equal(t, "30 3 * * *", cfg.Reconcile.Schedule)
	assert.Empty(t, cfg.Auth.AdminUsernames)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/data/reviews.db")
	t.Setenv("AUTH_SECURE_COOKIES", "false")
	t.Setenv("REVIEW_MAX_RATING", "10")
	t.Setenv("REVIEW_MAX_RETRIES", "2")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("AUTH_ADMIN_USERNAMES", "alice, bob,,")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, "/data/reviews.db", cfg.Database.Path)
	assert.False(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 10, cfg.Reviews.MaxRating)
	assert.Equal(t, 2, cfg.Reviews.MaxRetries)
	assert.False(t, cfg.Tasks.Enabled)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AdminUsernames)
}

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Reviews
		Tasks
		Reconcile
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path         string
		MaxOpenConns int           // SQLite serialises writers; 1 keeps them queued in the pool
		BusyTimeout  time.Duration // How long SQLite waits on a locked database
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		SecureCookies   bool     // Set to false for local dev without HTTPS
		CSRFEnabled     bool     // Enable CSRF protection for browser form posts
		AdminUsernames  []string // May trigger maintenance jobs such as reconciliation

		// argon2id parameters
		Argon2Memory      uint32 // KiB
		Argon2Iterations  uint32
		Argon2Parallelism uint8

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Reviews struct {
		MinRating    int
		MaxRating    int
		MaxRetries   int           // Attempts for an append that hits SQLITE_BUSY
		RetryBackoff time.Duration // Base delay, multiplied by the attempt number
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Audit struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_max_open_conns", 1)
	v.SetDefault("database_busy_timeout", "5s")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_admin_usernames", "") // Comma-separated
	v.SetDefault("auth_argon2_memory", 64*1024) // 64 MiB
	v.SetDefault("auth_argon2_iterations", 3)
	v.SetDefault("auth_argon2_parallelism", 2)
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Review defaults
	v.SetDefault("review_min_rating", 1)
	v.SetDefault("review_max_rating", 5)
	v.SetDefault("review_max_retries", 5)
	v.SetDefault("review_retry_backoff", "20ms")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "30 3 * * *") // Daily at 03:30

	v.SetDefault("audit_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:         v.GetString("DATABASE_PATH"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			BusyTimeout:  v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Auth: Auth{
			SessionSecret:     v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFEnabled:       v.GetBool("AUTH_CSRF_ENABLED"),
			AdminUsernames:    splitList(v.GetString("AUTH_ADMIN_USERNAMES")),
			Argon2Memory:      v.GetUint32("AUTH_ARGON2_MEMORY"),
			Argon2Iterations:  v.GetUint32("AUTH_ARGON2_ITERATIONS"),
			Argon2Parallelism: uint8(v.GetUint("AUTH_ARGON2_PARALLELISM")),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Reviews: Reviews{
			MinRating:    v.GetInt("REVIEW_MIN_RATING"),
			MaxRating:    v.GetInt("REVIEW_MAX_RATING"),
			MaxRetries:   v.GetInt("REVIEW_MAX_RETRIES"),
			RetryBackoff: v.GetDuration("REVIEW_RETRY_BACKOFF"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Audit: Audit{
			Enabled: v.GetBool("AUDIT_ENABLED"),
		},
	}
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

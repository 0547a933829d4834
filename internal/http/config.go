package http

import (
	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
	"github.com/mrlokans/bookreviews/internal/database"
	"github.com/mrlokans/bookreviews/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	AuthService   Authenticator
	BookStore     BookStore
	ReviewService ReviewService
	AuditService  *audit.Service // nil disables the audit trail

	// Sessions and login throttling
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter // nil disables throttling
	AdminUsernames []string          // may run reconciliation and read task status

	// CSRF protection for browser form posts; empty disables it
	CSRFSecret    []byte
	SecureCookies bool

	// Aggregate reconciliation. TaskClient takes precedence; Reconciler is
	// used inline when the queue is disabled.
	TaskClient     *tasks.Client
	Reconciler     *tasks.Reconciler
	ReconcileState SettingsReader

	// Application info
	Version string
}

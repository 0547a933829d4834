package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/auth"
)

const hstsMaxAge = 365 * 24 * 60 * 60

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	router.Use(cfg.SessionManager.SessionLoadSave())
	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(cfg.SessionManager)
	}
	router.Use(authMiddleware.Handler())
	requireSession := authMiddleware.RequireSession()

	health := NewHealthController(cfg.Database, cfg.Version)
	users := NewUsersController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter, cfg.AuditService)
	books := NewBooksController(cfg.BookStore, cfg.AuditService)
	reviewsController := NewReviewsController(cfg.ReviewService, cfg.AuditService)
	tasksController := NewTasksController(cfg.TaskClient, cfg.Reconciler, cfg.ReconcileState)
	auditController := NewAuditController(cfg.AuditService)

	// Health endpoints
	router.GET("/", health.Welcome)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Account endpoints
	router.POST("/register", users.Register)
	router.POST("/login", users.Login)
	router.POST("/logout", users.Logout)
	router.GET("/api/csrf-token", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": auth.GetCSRFToken(c)})
	})

	// Catalog and reviews
	router.POST("/add-book", requireSession, books.AddBook)
	router.PATCH("/add-review", requireSession, reviewsController.AddReview)
	router.GET("/api/books", books.ListBooks)
	router.GET("/api/books/:id", reviewsController.GetBook)
	router.GET("/api/books/:id/reviews", reviewsController.ListReviews)
	router.GET("/api/stats", health.Stats)

	// Authenticated user endpoints
	me := router.Group("/api/me", requireSession)
	me.GET("", users.Me)
	me.GET("/audit-events", auditController.ListEvents)

	// Reconciliation and task status, administrators only
	maintenance := router.Group("/api", authMiddleware.RequireAdmin(cfg.AdminUsernames))
	maintenance.POST("/reconcile", tasksController.Reconcile)
	maintenance.GET("/reconcile/status", tasksController.ReconcileStatus)
	maintenance.GET("/tasks/:id", tasksController.GetTaskStatus)

	return router
}

package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/database"
	dbaudit "github.com/mrlokans/bookreviews/internal/database/audit"
	"github.com/mrlokans/bookreviews/internal/database/books"
	ledger "github.com/mrlokans/bookreviews/internal/database/reviews"
	"github.com/mrlokans/bookreviews/internal/database/settings"
	"github.com/mrlokans/bookreviews/internal/database/users"
	http_controllers "github.com/mrlokans/bookreviews/internal/http"
	"github.com/mrlokans/bookreviews/internal/reviews"
	"github.com/mrlokans/bookreviews/internal/scheduler"
	"github.com/mrlokans/bookreviews/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then give in-flight requests the
	// configured timeout to finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after the server so no request enqueues into a
	// stopped queue.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting bookreviews v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)
	reviewLedger := ledger.NewLedger(db.DB, cfg.Reviews)
	reviewService := reviews.NewService(bookRepo, userRepo, reviewLedger)

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(dbaudit.NewRepository(db.DB))
		defer auditService.Wait()
	}

	authService, err := auth.NewService(userRepo, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfigFromAuth(cfg.Auth))
	defer rateLimiter.Stop()

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled {
		csrfSecret = loadCSRFSecret(cfg.Auth.SessionSecret)
	}

	reconciler := tasks.NewReconciler(bookRepo, reviewLedger, settingsRepo, auditService)

	// Background work shares one cancellable context
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFromApp(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewReconcileAggregatesQueue(reconciler))
		go taskClient.Start(bgCtx)
	}

	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		if taskClient != nil {
			reconcileScheduler = scheduler.NewQueuedReconcileScheduler(cfg.Reconcile.Schedule, taskClient)
		} else {
			reconcileScheduler = scheduler.NewInlineReconcileScheduler(cfg.Reconcile.Schedule, reconciler)
		}
		if err := reconcileScheduler.Start(bgCtx); err != nil {
			log.Fatalf("Failed to start reconcile scheduler: %v", err)
		}
	}

	if n, err := userRepo.CountUsers(context.Background()); err == nil && n == 0 {
		log.Printf("No users found. POST /register to create the first account.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		AuthService:    authService,
		BookStore:      bookRepo,
		ReviewService:  reviewService,
		AuditService:   auditService,
		SessionManager: sessionManager,
		AuthMiddleware: auth.NewMiddleware(sessionManager),
		RateLimiter:    rateLimiter,
		AdminUsernames: cfg.Auth.AdminUsernames,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		TaskClient:     taskClient,
		Reconciler:     reconciler,
		ReconcileState: settingsRepo,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconcileScheduler != nil {
			reconcileScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
	}

	Serve(router, cfg, onShutdown)
}

// loadCSRFSecret decodes a hex secret, falling back to the raw bytes, or
// generates one when none is configured.
func loadCSRFSecret(configured string) []byte {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			return []byte(configured)
		}
		return secret
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	secret, _ := hex.DecodeString(generated)
	log.Printf("Generated CSRF secret (set AUTH_SESSION_SECRET to persist)")
	return secret
}

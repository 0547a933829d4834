// Package auth registers users, verifies credentials and manages login
// sessions.
//
// Passwords are hashed with argon2id and stored in PHC string form. Login
// answers an unknown username and a wrong password with the same
// apperrors.ErrAuthFailed after the same amount of hashing work.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>   # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h            # Session duration
//	AUTH_SECURE_COOKIES=true             # HTTPS-only cookies
//	AUTH_CSRF_ENABLED=false              # gorilla/csrf on unsafe methods
//	AUTH_ARGON2_MEMORY=65536             # KiB
//	AUTH_ARGON2_ITERATIONS=3
//	AUTH_ARGON2_PARALLELISM=2
//	AUTH_MAX_LOGIN_ATTEMPTS=5            # Failures before lockout
//	AUTH_ADMIN_USERNAMES=alice,bob       # May run reconciliation
//
// # Usage
//
//	svc, err := auth.NewService(usersRepo, cfg.Auth)
//	sessions, err := auth.NewSessionManager(sqlDB, cfg.Auth)
//	mw := auth.NewMiddleware(sessions)
//	router.Use(sessions.SessionLoadSave(), mw.Handler())
//	router.POST("/add-book", mw.RequireSession(), handler)
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c) // 0 when anonymous
package auth

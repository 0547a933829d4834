package http

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/auth"
)

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// UsersController handles registration and session endpoints.
type UsersController struct {
	auth     Authenticator
	sessions *auth.SessionManager
	limiter  *auth.RateLimiter
	audit    *audit.Service
}

func NewUsersController(authService Authenticator, sessions *auth.SessionManager, limiter *auth.RateLimiter, auditService *audit.Service) *UsersController {
	return &UsersController{
		auth:     authService,
		sessions: sessions,
		limiter:  limiter,
		audit:    auditService,
	}
}

// Register handles POST /register
func (uc *UsersController) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	userID, err := uc.auth.Register(c.Request.Context(), req.Username, req.Password)
	uc.audit.LogRegister(userID, req.Username, origin(c), err)
	if err != nil {
		respondAppError(c, err, "register")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": userID})
}

// Login handles POST /login
func (uc *UsersController) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	ip := c.ClientIP()
	if uc.limiter != nil {
		if allowed, wait := uc.limiter.Allow(ip, req.Username); !allowed {
			respondTooManyAttempts(c, wait)
			return
		}
	}

	userID, err := uc.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthFailed) {
			uc.audit.LogLogin(0, origin(c), false)
			if uc.limiter != nil {
				if locked, wait := uc.limiter.RecordFailure(ip, req.Username); locked {
					log.Printf("Login locked out for %s for %s after repeated failures", ip, wait)
				}
			}
		}
		respondAppError(c, err, "login")
		return
	}

	if uc.limiter != nil {
		uc.limiter.RecordSuccess(ip, req.Username)
	}

	if err := uc.sessions.CreateSession(c.Request, userID, req.Username); err != nil {
		respondAppError(c, err, "create session")
		return
	}
	uc.audit.LogLogin(userID, origin(c), true)

	c.JSON(http.StatusOK, gin.H{"user_id": userID})
}

// Logout handles POST /logout
func (uc *UsersController) Logout(c *gin.Context) {
	if err := uc.sessions.DestroySession(c.Request); err != nil {
		respondAppError(c, err, "logout")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me handles GET /api/me
func (uc *UsersController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":  auth.GetUserID(c),
		"username": auth.GetUsername(c),
	})
}

func respondTooManyAttempts(c *gin.Context, wait time.Duration) {
	seconds := max(int(math.Ceil(wait.Seconds())), 1)
	c.Header("Retry-After", strconv.Itoa(seconds))
	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error: "too many failed login attempts, try again later",
		Code:  "RATE_LIMITED",
	})
}

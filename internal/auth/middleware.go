package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
)

// Middleware resolves the session user for each request.
type Middleware struct {
	sessions *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// Handler copies the session user, if any, into the gin context. It never
// rejects a request; use RequireSession on routes that need a user.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if data := m.sessions.GetSessionData(c.Request); data != nil {
			c.Set(ContextKeyUserID, data.UserID)
			c.Set(ContextKeyUsername, data.Username)
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless Handler found a logged-in user.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "AUTH_REQUIRED",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the session user is one of the configured
// administrators. An empty list admits nobody.
func (m *Middleware) RequireAdmin(usernames []string) gin.HandlerFunc {
	admins := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		admins[name] = true
	}

	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "AUTH_REQUIRED",
			})
			return
		}
		if !admins[GetUsername(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
				"code":  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context, or 0.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

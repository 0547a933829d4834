package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookreviews/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	sqlDB, err := setupTestDB(t).DB.DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)
	return sm
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestNewSessionManager(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, "session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.False(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
	assert.Equal(t, time.Hour, sm.Lifetime)
	assert.Equal(t, 30*time.Minute, sm.IdleTimeout)
}

func TestSessionManager_CreateAndRetrieveSession(t *testing.T) {
	sm := setupSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, sm.IsAuthenticated(r))

		require.NoError(t, sm.CreateSession(r, 123, "alice"))

		assert.True(t, sm.IsAuthenticated(r))
		assert.Equal(t, uint(123), sm.GetUserID(r))
		assert.Equal(t, "alice", sm.GetUsername(r))

		data := sm.GetSessionData(r)
		require.NotNil(t, data)
		assert.Equal(t, uint(123), data.UserID)
		assert.False(t, data.LoginAt.IsZero())

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotNil(t, sessionCookie(t, rr))
}

func TestSessionManager_DestroySession(t *testing.T) {
	sm := setupSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sm.CreateSession(r, 789, "bob"))
		require.NoError(t, sm.DestroySession(r))

		assert.False(t, sm.IsAuthenticated(r))
		assert.Nil(t, sm.GetSessionData(r))

		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(rr, req)
}

func TestSessionLoadSave_PersistsAcrossRequests(t *testing.T) {
	sm := setupSessionManager(t)
	mw := NewMiddleware(sm)

	router := gin.New()
	router.Use(sm.SessionLoadSave(), mw.Handler())
	router.POST("/login", func(c *gin.Context) {
		require.NoError(t, sm.CreateSession(c.Request, 42, "alice"))
		c.JSON(http.StatusOK, gin.H{"user_id": 42})
	})
	router.POST("/logout", func(c *gin.Context) {
		require.NoError(t, sm.DestroySession(c.Request))
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", mw.RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookie := sessionCookie(t, rr)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"user_id":42,"username":"alice"}`, rr.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "destroyed session no longer authenticates")
}

package audit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/database"
	auditRepo "github.com/mrlokans/bookreviews/internal/database/audit"
	"github.com/mrlokans/bookreviews/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewSilentDatabase(config.Database{Path: filepath.Join(t.TempDir(), "audit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewService(auditRepo.NewRepository(db.DB))
}

func events(t *testing.T, svc *Service) []entities.AuditEvent {
	t.Helper()
	svc.Wait()
	out, _, err := svc.GetEvents(context.Background(), auditRepo.EventFilter{Limit: 100})
	require.NoError(t, err)
	return out
}

func TestService_Log(t *testing.T) {
	svc := setupTestService(t)

	err := svc.Log(context.Background(), &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "book_added",
		Status:    entities.AuditStatusSuccess,
	})
	require.NoError(t, err)

	got := events(t, svc)
	require.Len(t, got, 1)
	assert.Equal(t, "book_added", got[0].Action)
}

func TestService_LogRegister(t *testing.T) {
	svc := setupTestService(t)
	origin := Origin{IPAddress: "10.0.0.1", RequestID: "req-1"}

	svc.LogRegister(7, "alice", origin, nil)
	svc.LogRegister(0, "alice", origin, errors.New("username taken"))

	got := events(t, svc)
	require.Len(t, got, 2)

	byStatus := map[entities.AuditStatus]entities.AuditEvent{}
	for _, e := range got {
		byStatus[e.Status] = e
	}
	ok := byStatus[entities.AuditStatusSuccess]
	assert.Equal(t, uint(7), ok.UserID)
	require.NotNil(t, ok.EntityID)
	assert.Equal(t, uint(7), *ok.EntityID)
	assert.Equal(t, "req-1", ok.RequestID)

	failed := byStatus[entities.AuditStatusFailed]
	assert.Nil(t, failed.EntityID)
	assert.Equal(t, "username taken", failed.ErrorMsg)
}

func TestService_LogLogin_FailureHidesUser(t *testing.T) {
	svc := setupTestService(t)

	svc.LogLogin(3, Origin{IPAddress: "10.0.0.1"}, false)

	got := events(t, svc)
	require.Len(t, got, 1)
	assert.Equal(t, "login_failed", got[0].Action)
	assert.Zero(t, got[0].UserID)
	assert.Equal(t, entities.AuditStatusFailed, got[0].Status)
}

func TestService_LogReviewAdded(t *testing.T) {
	svc := setupTestService(t)

	svc.LogReviewAdded(1, 2, 3, 5, Origin{})

	got := events(t, svc)
	require.Len(t, got, 1)
	assert.Equal(t, entities.AuditEventReview, got[0].EventType)
	assert.JSONEq(t, `{"book_id":2,"rating":5}`, got[0].Metadata)
	assert.Equal(t, "Rated book 2 with 5", got[0].Description)
}

func TestService_LogReconcile(t *testing.T) {
	svc := setupTestService(t)

	svc.LogReconcile(10, 1, nil)
	svc.LogBookAdded(1, 4, strings.Repeat("x", 600), Origin{})

	got := events(t, svc)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.LessOrEqual(t, len(e.Description), 500)
	}
}

func TestService_NilIsNoop(t *testing.T) {
	var svc *Service

	assert.NotPanics(t, func() {
		svc.LogLogin(1, Origin{}, true)
		svc.Wait()
		assert.NoError(t, svc.Log(context.Background(), &entities.AuditEvent{}))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	// "é" is two bytes; the cut at byte 7 would land inside the fourth one.
	got := truncate("ééééééé", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ééé...", got)
	assert.LessOrEqual(t, len(got), 10)
}

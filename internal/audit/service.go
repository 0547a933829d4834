// Package audit records security- and data-relevant events to the
// audit_events table. Writes happen in the background so a slow or failing
// audit insert never fails the request that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/mrlokans/bookreviews/internal/database/audit"
	"github.com/mrlokans/bookreviews/internal/entities"
)

// Origin describes where a request came from.
type Origin struct {
	IPAddress string
	RequestID string
}

// Service provides high-level audit logging functionality. A nil *Service
// is valid and discards every event.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event %s: %v", event.Action, err)
		}
	}()
}

// Wait blocks until every event queued with LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogRegister records a registration attempt.
func (s *Service) LogRegister(userID uint, username string, origin Origin, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      "register",
		Description: truncate("Registered user "+username, 500),
		EntityType:  "user",
		IPAddress:   origin.IPAddress,
		RequestID:   origin.RequestID,
		Status:      entities.AuditStatusSuccess,
	}
	if userID > 0 {
		event.EntityID = &userID
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogLogin records a login attempt. Failed attempts carry no user ID so the
// trail does not reveal which usernames exist.
func (s *Service) LogLogin(userID uint, origin Origin, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    "login_success",
		IPAddress: origin.IPAddress,
		RequestID: origin.RequestID,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.UserID = 0
		event.Action = "login_failed"
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogBookAdded records a book being added to the catalog.
func (s *Service) LogBookAdded(userID, bookID uint, title string, origin Origin) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      "book_added",
		Description: truncate("Added book: "+title, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		IPAddress:   origin.IPAddress,
		RequestID:   origin.RequestID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogReviewAdded records a review and the rating it carried.
func (s *Service) LogReviewAdded(userID, bookID, reviewID uint, rating int, origin Origin) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReview,
		Action:      "review_added",
		Description: fmt.Sprintf("Rated book %d with %d", bookID, rating),
		EntityType:  "review",
		EntityID:    &reviewID,
		IPAddress:   origin.IPAddress,
		RequestID:   origin.RequestID,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"book_id": bookID,
		"rating":  rating,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	s.LogAsync(event)
}

// LogReconcile records a run of the aggregate reconciliation job.
func (s *Service) LogReconcile(checked, repaired int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSync,
		Action:      "reconcile_aggregates",
		Description: fmt.Sprintf("Checked %d books, repaired %d", checked, repaired),
		EntityType:  "book",
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, filter audit.EventFilter) ([]entities.AuditEvent, int64, error) {
	if s == nil {
		return []entities.AuditEvent{}, 0, nil
	}
	return s.repo.GetEvents(ctx, filter)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
}

// truncate shortens a string to at most maxLen bytes without splitting a
// UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/entities"
)

// ReconcileQueueName is the backlite queue that repairs book aggregates.
const ReconcileQueueName = "reconcile_book_aggregates"

// BookIDLister lists every book in the catalog.
type BookIDLister interface {
	ListBookIDs(ctx context.Context) ([]uint, error)
}

// AggregateRepairer rewrites a book's aggregate from its review rows.
type AggregateRepairer interface {
	Reconcile(ctx context.Context, bookID uint) (bool, error)
}

// StatusRecorder persists the outcome of the last run.
type StatusRecorder interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// ReconcileResult summarises one reconciliation run.
type ReconcileResult struct {
	Checked  int
	Repaired int
}

// Reconciler compares each book's stored review_count and rating_sum with
// the values computed from its reviews and repairs any drift.
type Reconciler struct {
	books  BookIDLister
	ledger AggregateRepairer
	status StatusRecorder
	audit  *audit.Service
}

// NewReconciler creates a reconciler. status and auditService may be nil.
func NewReconciler(books BookIDLister, ledger AggregateRepairer, status StatusRecorder, auditService *audit.Service) *Reconciler {
	return &Reconciler{books: books, ledger: ledger, status: status, audit: auditService}
}

// Run reconciles one book, or every book when bookID is 0. A book deleted
// between listing and repair is skipped.
func (r *Reconciler) Run(ctx context.Context, bookID uint) (ReconcileResult, error) {
	var result ReconcileResult

	ids := []uint{bookID}
	if bookID == 0 {
		var err error
		ids, err = r.books.ListBookIDs(ctx)
		if err != nil {
			r.finish(ctx, result, err)
			return result, fmt.Errorf("list books: %w", err)
		}
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			r.finish(ctx, result, err)
			return result, err
		}

		repaired, err := r.ledger.Reconcile(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) && bookID == 0 {
				continue
			}
			r.finish(ctx, result, err)
			return result, fmt.Errorf("reconcile book %d: %w", id, err)
		}

		result.Checked++
		if repaired {
			result.Repaired++
		}
	}

	r.finish(ctx, result, nil)
	return result, nil
}

func (r *Reconciler) finish(ctx context.Context, result ReconcileResult, runErr error) {
	status := "success"
	message := fmt.Sprintf("Checked %d books, repaired %d", result.Checked, result.Repaired)
	if runErr != nil {
		status = "failed"
		message = runErr.Error()
	}
	log.Printf("[RECONCILE] %s: %s", status, message)

	if r.status != nil {
		err := r.status.SetMany(ctx, map[string]string{
			entities.SettingKeyReconcileLastAt:      time.Now().UTC().Format(time.RFC3339),
			entities.SettingKeyReconcileLastStatus:  status,
			entities.SettingKeyReconcileLastMessage: message,
		})
		if err != nil {
			log.Printf("[RECONCILE] Failed to record status: %v", err)
		}
	}

	r.audit.LogReconcile(result.Checked, result.Repaired, runErr)
}

// ReconcileAggregatesTask reconciles one book, or all books when BookID is 0.
type ReconcileAggregatesTask struct {
	BookID uint `json:"book_id,omitempty"`
}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileAggregatesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ReconcileQueueName,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileAggregatesProcessor creates a processor function for ReconcileAggregatesTask.
func ReconcileAggregatesProcessor(r *Reconciler) backlite.QueueProcessor[ReconcileAggregatesTask] {
	return func(ctx context.Context, task ReconcileAggregatesTask) error {
		if r == nil {
			return fmt.Errorf("reconciler not configured")
		}
		_, err := r.Run(ctx, task.BookID)
		return err
	}
}

// NewReconcileAggregatesQueue creates a backlite queue for reconciliation tasks.
func NewReconcileAggregatesQueue(r *Reconciler) backlite.Queue {
	return backlite.NewQueue(ReconcileAggregatesProcessor(r))
}

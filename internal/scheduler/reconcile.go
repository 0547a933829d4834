// Package scheduler triggers periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookreviews/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// ReconcileScheduler periodically requests a full aggregate reconciliation.
// With a queue it enqueues a task; without one it runs the job itself.
type ReconcileScheduler struct {
	schedule string
	enqueue  func(ctx context.Context) error

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
}

// NewQueuedReconcileScheduler schedules reconciliation through the task queue.
func NewQueuedReconcileScheduler(schedule string, client *tasks.Client) *ReconcileScheduler {
	return newReconcileScheduler(schedule, func(ctx context.Context) error {
		ids, err := client.Enqueue(ctx, tasks.ReconcileAggregatesTask{})
		if err != nil {
			return err
		}
		log.Printf("[RECONCILE] Enqueued task %v", ids)
		return nil
	})
}

// NewInlineReconcileScheduler runs reconciliation directly on each tick.
func NewInlineReconcileScheduler(schedule string, reconciler *tasks.Reconciler) *ReconcileScheduler {
	return newReconcileScheduler(schedule, func(ctx context.Context) error {
		_, err := reconciler.Run(ctx, 0)
		return err
	})
}

func newReconcileScheduler(schedule string, run func(ctx context.Context) error) *ReconcileScheduler {
	return &ReconcileScheduler{
		schedule: schedule,
		enqueue:  run,
		cron:     cron.New(cron.WithParser(cronParser)),
		ctx:      context.Background(),
	}
}

// Start registers the job and starts the cron loop. The scheduler stops
// when ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	s.entryID = entryID
	s.ctx = ctx

	s.cron.Start()
	s.isRunning = true

	log.Printf("[RECONCILE] Scheduler started with schedule '%s'. Next run: %v", s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running tick to finish and stops the cron loop.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("[RECONCILE] Scheduler stopped")
}

// RunNow triggers a reconciliation outside the schedule.
func (s *ReconcileScheduler) RunNow(ctx context.Context) error {
	return s.enqueue(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next reconciliation will occur, or nil when stopped.
func (s *ReconcileScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// tick runs on the cron goroutine. s.ctx is set before the cron loop starts
// and is not read under s.mu, since Stop holds s.mu while waiting for ticks.
func (s *ReconcileScheduler) tick() {
	if err := s.enqueue(s.ctx); err != nil {
		log.Printf("[RECONCILE] Scheduled run failed: %v", err)
	}
}

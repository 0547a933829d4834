package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/database"
	"github.com/mrlokans/bookreviews/internal/database/books"
	"github.com/mrlokans/bookreviews/internal/database/reviews"
	"github.com/mrlokans/bookreviews/internal/database/settings"
	"github.com/mrlokans/bookreviews/internal/entities"
)

type reconcileEnv struct {
	path     string
	db       *database.Database
	books    *books.Repository
	ledger   *reviews.Ledger
	settings *settings.Repository
	userID   uint
}

func setupReconcile(t *testing.T) *reconcileEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := database.NewSilentDatabase(config.Database{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	user := &entities.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, db.DB.Create(user).Error)

	return &reconcileEnv{
		path:     path,
		db:       db,
		books:    books.NewRepository(db.DB),
		ledger:   reviews.NewLedger(db.DB, config.Reviews{}),
		settings: settings.NewRepository(db.DB),
		userID:   user.ID,
	}
}

func (e *reconcileEnv) bookWithReviews(t *testing.T, title string, ratings ...int) uint {
	t.Helper()
	ctx := context.Background()
	book, err := e.books.AddBook(ctx, e.userID, title, entities.BookMetadata{})
	require.NoError(t, err)
	for _, r := range ratings {
		_, err := e.ledger.AppendReview(ctx, book.ID, e.userID, r, "")
		require.NoError(t, err)
	}
	return book.ID
}

func (e *reconcileEnv) corrupt(t *testing.T, bookID uint) {
	t.Helper()
	require.NoError(t, e.db.DB.Model(&entities.Book{}).Where("id = ?", bookID).
		Updates(map[string]any{"review_count": 99, "rating_sum": 0}).Error)
}

func TestReconciler_RunAll(t *testing.T) {
	env := setupReconcile(t)
	ctx := context.Background()

	dune := env.bookWithReviews(t, "Dune", 5, 3)
	env.bookWithReviews(t, "Solaris", 4)
	env.corrupt(t, dune)

	r := NewReconciler(env.books, env.ledger, env.settings, nil)
	result, err := r.Run(ctx, 0)

	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Checked: 2, Repaired: 1}, result)

	book, err := env.books.GetBook(ctx, dune)
	require.NoError(t, err)
	assert.Equal(t, int64(2), book.ReviewCount)
	assert.Equal(t, int64(8), book.RatingSum)

	status, err := env.settings.GetValue(ctx, entities.SettingKeyReconcileLastStatus)
	require.NoError(t, err)
	assert.Equal(t, "success", status)
	message, err := env.settings.GetValue(ctx, entities.SettingKeyReconcileLastMessage)
	require.NoError(t, err)
	assert.Equal(t, "Checked 2 books, repaired 1", message)
}

func TestReconciler_RunSingleBook(t *testing.T) {
	env := setupReconcile(t)
	ctx := context.Background()

	dune := env.bookWithReviews(t, "Dune", 5)
	solaris := env.bookWithReviews(t, "Solaris", 4)
	env.corrupt(t, dune)
	env.corrupt(t, solaris)

	result, err := NewReconciler(env.books, env.ledger, nil, nil).Run(ctx, solaris)
	require.NoError(t, err)
	assert.Equal(t, ReconcileResult{Checked: 1, Repaired: 1}, result)

	book, err := env.books.GetBook(ctx, dune)
	require.NoError(t, err)
	assert.Equal(t, int64(99), book.ReviewCount, "other books are left alone")
}

func TestReconciler_UnknownBook(t *testing.T) {
	env := setupReconcile(t)

	_, err := NewReconciler(env.books, env.ledger, env.settings, nil).Run(context.Background(), 404)
	assert.Error(t, err)

	status, err := env.settings.GetValue(context.Background(), entities.SettingKeyReconcileLastStatus)
	require.NoError(t, err)
	assert.Equal(t, "failed", status)
}

type failingLister struct{}

func (failingLister) ListBookIDs(context.Context) ([]uint, error) {
	return nil, errors.New("disk I/O error")
}

func TestReconciler_ListFailure(t *testing.T) {
	env := setupReconcile(t)

	_, err := NewReconciler(failingLister{}, env.ledger, nil, nil).Run(context.Background(), 0)
	assert.ErrorContains(t, err, "disk I/O error")
}

func TestReconcileAggregatesTaskConfig(t *testing.T) {
	cfg := ReconcileAggregatesTask{}.Config()

	assert.Equal(t, ReconcileQueueName, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestReconcileAggregatesQueue_ProcessesTask(t *testing.T) {
	env := setupReconcile(t)
	dune := env.bookWithReviews(t, "Dune", 5, 3)
	env.corrupt(t, dune)

	client, err := NewClient(env.path, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	client.Register(NewReconcileAggregatesQueue(NewReconciler(env.books, env.ledger, env.settings, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Enqueue(ctx, ReconcileAggregatesTask{BookID: dune})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		book, err := env.books.GetBook(context.Background(), dune)
		return err == nil && book.ReviewCount == 2 && book.RatingSum == 8
	}, 5*time.Second, 50*time.Millisecond)
}

func TestReconcileAggregatesProcessor_NilReconciler(t *testing.T) {
	err := ReconcileAggregatesProcessor(nil)(context.Background(), ReconcileAggregatesTask{})
	assert.Error(t, err)
}

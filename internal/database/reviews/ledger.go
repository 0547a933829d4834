// Package reviews is the review ledger: it records reviews and keeps each
// book's aggregate block (review_count, rating_sum) in step with them.
//
// An append inserts the review and bumps the aggregate with a single
// UPDATE ... SET review_count = review_count + 1 in the same transaction.
// The increment is evaluated by SQLite against the row it locks, so
// concurrent appends to one book never lose an update and appends to
// different books do not wait on an application lock.
package reviews

import (
	"context"
	"fmt"
	"iter"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/database"
	"github.com/mrlokans/bookreviews/internal/entities"
)

const (
	defaultMaxRetries   = 5
	defaultRetryBackoff = 20 * time.Millisecond
	pageSize            = 100
)

// Ledger appends reviews and owns every write to a book's aggregate block.
type Ledger struct {
	db  *gorm.DB
	cfg config.Reviews
}

// NewLedger creates a ledger. Zero values in cfg fall back to a 1..5 rating
// scale and five attempts per append.
func NewLedger(db *gorm.DB, cfg config.Reviews) *Ledger {
	if cfg.MinRating == 0 && cfg.MaxRating == 0 {
		cfg.MinRating = config.DefaultMinRating
		cfg.MaxRating = config.DefaultMaxRating
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Ledger{db: db, cfg: cfg}
}

// ratingBounds returns the inclusive range of accepted ratings.
func (l *Ledger) ratingBounds() (minRating, maxRating int) {
	return l.cfg.MinRating, l.cfg.MaxRating
}

// AppendReview records a review and updates the book's aggregate atomically.
// Lock contention is retried up to MaxRetries times; after that the call
// fails with apperrors.ErrTransient and nothing is written.
func (l *Ledger) AppendReview(ctx context.Context, bookID, userID uint, rating int, body string) (*entities.Review, error) {
	if minRating, maxRating := l.ratingBounds(); rating < minRating || rating > maxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}

	var lastErr error
	for attempt := 1; attempt <= l.cfg.MaxRetries; attempt++ {
		review, err := l.appendOnce(ctx, bookID, userID, rating, body)
		if err == nil {
			return review, nil
		}
		if !database.IsBusy(err) {
			return nil, err
		}
		lastErr = err
		if attempt == l.cfg.MaxRetries {
			break
		}

		log.Printf("[LEDGER] Append to book %d hit lock contention (attempt %d/%d), retrying", bookID, attempt, l.cfg.MaxRetries)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}

	return nil, apperrors.Transient(lastErr)
}

func (l *Ledger) appendOnce(ctx context.Context, bookID, userID uint, rating int, body string) (*entities.Review, error) {
	review := &entities.Review{
		BookID: bookID,
		UserID: userID,
		Rating: rating,
		Body:   body,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.Select("id").First(&book, bookID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperrors.NotFound("book", bookID)
			}
			return err
		}

		var user entities.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperrors.NotFound("user", userID)
			}
			return err
		}

		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return err
		}

		result := tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			Updates(map[string]any{
				"review_count": gorm.Expr("review_count + ?", 1),
				"rating_sum":   gorm.Expr("rating_sum + ?", rating),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return apperrors.NotFound("book", bookID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ListReviewsForBook returns the book's reviews in creation order.
//
// The sequence is lazy and may be ranged over any number of times. Each
// ranging pins the newest review ID before reading the first page, so
// reviews appended while iterating belong to the next ranging, not this one.
// An unknown book yields an empty sequence.
func (l *Ledger) ListReviewsForBook(ctx context.Context, bookID uint) iter.Seq2[entities.Review, error] {
	return func(yield func(entities.Review, error) bool) {
		var maxID uint
		err := l.db.WithContext(ctx).
			Model(&entities.Review{}).
			Where("book_id = ?", bookID).
			Select("COALESCE(MAX(id), 0)").
			Scan(&maxID).Error
		if err != nil {
			yield(entities.Review{}, fmt.Errorf("failed to snapshot reviews: %w", err))
			return
		}

		var cursor uint
		for cursor < maxID {
			var page []entities.Review
			err := l.db.WithContext(ctx).
				Where("book_id = ? AND id > ? AND id <= ?", bookID, cursor, maxID).
				Order("id ASC").
				Limit(pageSize).
				Find(&page).Error
			if err != nil {
				yield(entities.Review{}, fmt.Errorf("failed to list reviews: %w", err))
				return
			}
			if len(page) == 0 {
				return
			}

			for _, review := range page {
				if !yield(review, nil) {
					return
				}
			}
			cursor = page[len(page)-1].ID
		}
	}
}

// reviewStats computes the aggregate for a book directly from its review rows.
func reviewStats(db *gorm.DB, bookID uint) (count, sum int64, err error) {
	var row struct {
		Count int64
		Sum   int64
	}
	err = db.Model(&entities.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute review stats: %w", err)
	}
	return row.Count, row.Sum, nil
}

// Reconcile rewrites the book's aggregate from its review rows if the two
// disagree. It reports whether a repair was made.
func (l *Ledger) Reconcile(ctx context.Context, bookID uint) (bool, error) {
	repaired := false

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.Select("id", "review_count", "rating_sum").First(&book, bookID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperrors.NotFound("book", bookID)
			}
			return err
		}

		count, sum, err := reviewStats(tx, bookID)
		if err != nil {
			return err
		}

		if book.ReviewCount == count && book.RatingSum == sum {
			return nil
		}

		log.Printf("[LEDGER] Book %d aggregate drifted: stored count=%d sum=%d, actual count=%d sum=%d",
			bookID, book.ReviewCount, book.RatingSum, count, sum)

		err = tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			Updates(map[string]any{
				"review_count": count,
				"rating_sum":   sum,
			}).Error
		if err != nil {
			return err
		}
		repaired = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return repaired, nil
}

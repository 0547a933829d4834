// Package reviews orchestrates the add-review request path: it checks that
// the book and the reviewer exist, then hands the write to the review
// ledger. It holds no state of its own.
package reviews

import (
	"context"
	"iter"

	"github.com/mrlokans/bookreviews/internal/entities"
)

// BookCatalog looks up books.
type BookCatalog interface {
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
}

// UserDirectory looks up users.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
}

// Ledger appends and lists reviews.
type Ledger interface {
	AppendReview(ctx context.Context, bookID, userID uint, rating int, body string) (*entities.Review, error)
	ListReviewsForBook(ctx context.Context, bookID uint) iter.Seq2[entities.Review, error]
}

// Summary is a book with its derived average rating. AverageRating is nil
// while the book has no reviews.
type Summary struct {
	Book          entities.Book `json:"book"`
	ReviewCount   int64         `json:"review_count"`
	AverageRating *float64      `json:"average_rating"`
}

// Service coordinates the catalog, user directory and ledger.
type Service struct {
	books  BookCatalog
	users  UserDirectory
	ledger Ledger
}

// NewService creates a review service.
func NewService(books BookCatalog, users UserDirectory, ledger Ledger) *Service {
	return &Service{books: books, users: users, ledger: ledger}
}

// AddReview records a review of bookID by userID. It fails with
// apperrors.ErrNotFound if either is missing and with ErrInvalidInput for a
// rating outside the ledger's scale.
func (s *Service) AddReview(ctx context.Context, bookID, userID uint, rating int, body string) (*entities.Review, error) {
	if _, err := s.books.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.AppendReview(ctx, bookID, userID, rating, body)
}

// BookSummary returns the book's current aggregate and average rating.
func (s *Service) BookSummary(ctx context.Context, bookID uint) (*Summary, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return NewSummary(*book), nil
}

// NewSummary derives a Summary from a book's aggregate block.
func NewSummary(book entities.Book) *Summary {
	summary := &Summary{Book: book, ReviewCount: book.ReviewCount}
	if avg, ok := book.AverageRating(); ok {
		summary.AverageRating = &avg
	}
	return summary
}

// ListReviews collects the book's reviews in creation order.
func (s *Service) ListReviews(ctx context.Context, bookID uint) ([]entities.Review, error) {
	if _, err := s.books.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	reviews := []entities.Review{}
	for review, err := range s.ledger.ListReviewsForBook(ctx, bookID) {
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

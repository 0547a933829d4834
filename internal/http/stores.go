package http

import (
	"context"

	"github.com/mrlokans/bookreviews/internal/entities"
	"github.com/mrlokans/bookreviews/internal/reviews"
)

// Each controller declares the narrow slice of a core component it calls.
// They are collected here for an overview of what the HTTP layer touches.

// Authenticator registers and logs in users.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (uint, error)
	Login(ctx context.Context, username, password string) (uint, error)
}

// BookStore adds and reads catalog entries.
type BookStore interface {
	AddBook(ctx context.Context, ownerID uint, title string, meta entities.BookMetadata) (*entities.Book, error)
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
	ListBooks(ctx context.Context, limit, offset int) ([]entities.Book, int64, error)
}

// ReviewService adds reviews and reports book summaries.
type ReviewService interface {
	AddReview(ctx context.Context, bookID, userID uint, rating int, body string) (*entities.Review, error)
	BookSummary(ctx context.Context, bookID uint) (*reviews.Summary, error)
	ListReviews(ctx context.Context, bookID uint) ([]entities.Review, error)
}

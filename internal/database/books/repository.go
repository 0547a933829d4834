// Package books provides the book catalog: creation and lookup of books.
//
// The aggregate block on entities.Book (ReviewCount, RatingSum) is
// initialised here and never written again by this package; the review
// ledger owns every later change to it.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.AddBook(ctx, ownerID, "Dune", entities.BookMetadata{Author: "Frank Herbert"})
package books

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookreviews/internal/apperrors"
	"github.com/mrlokans/bookreviews/internal/database"
	"github.com/mrlokans/bookreviews/internal/entities"
)

const (
	maxTitleLength = 512
	defaultLimit   = 50
	maxLimit       = 200
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddBook creates a book owned by ownerID with an empty aggregate block.
func (r *Repository) AddBook(ctx context.Context, ownerID uint, title string, meta entities.BookMetadata) (*entities.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("title exceeds %d bytes", maxTitleLength))
	}
	if meta.PublicationYear < 0 {
		return nil, apperrors.InvalidInput("publication_year must not be negative")
	}

	book := &entities.Book{
		OwnerID:         ownerID,
		Title:           title,
		Author:          strings.TrimSpace(meta.Author),
		ISBN:            strings.TrimSpace(meta.ISBN),
		Publisher:       strings.TrimSpace(meta.Publisher),
		PublicationYear: meta.PublicationYear,
		ReviewCount:     0,
		RatingSum:       0,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner entities.User
		if err := tx.Select("id").First(&owner, ownerID).Error; err != nil {
			if database.IsNotFound(err) {
				return apperrors.NotFound("user", ownerID)
			}
			return fmt.Errorf("failed to check owner: %w", err)
		}
		// Omit the Owner association so gorm does not try to upsert the user.
		return tx.Omit("Owner").Create(book).Error
	})
	if err != nil {
		return nil, err
	}

	return book, nil
}

// GetBook retrieves a book, including its current aggregate block.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperrors.NotFound("book", id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// ListBooks returns a page of books ordered by ID together with the total count.
func (r *Repository) ListBooks(ctx context.Context, limit, offset int) ([]entities.Book, int64, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	books := []entities.Book{}
	err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// ListBookIDs returns the IDs of every book, in ID order.
func (r *Repository) ListBookIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

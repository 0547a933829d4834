package entities

import "time"

// Book is a catalog entry together with its review aggregate block.
//
// ReviewCount and RatingSum are denormalised running totals over the book's
// reviews. They are written only by the review ledger, in the same
// transaction that inserts the review they account for.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OwnerID         uint      `gorm:"index;not null" json:"owner_id"`
	Title           string    `gorm:"index;size:512;not null" json:"title"`
	Author          string    `gorm:"index;size:256" json:"author,omitempty"`
	ISBN            string    `gorm:"index;size:20" json:"isbn,omitempty"`
	Publisher       string    `gorm:"size:256" json:"publisher,omitempty"`
	PublicationYear int       `json:"publication_year,omitempty"`
	ReviewCount     int64     `gorm:"not null;default:0" json:"review_count"`
	RatingSum       int64     `gorm:"not null;default:0" json:"rating_sum"`
	Owner           User      `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// AverageRating returns RatingSum / ReviewCount. The second result is false
// when the book has no reviews and the average is undefined.
func (b Book) AverageRating() (float64, bool) {
	if b.ReviewCount <= 0 {
		return 0, false
	}
	return float64(b.RatingSum) / float64(b.ReviewCount), true
}

// BookMetadata holds the descriptive fields supplied when a book is added.
type BookMetadata struct {
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publication_year"`
}

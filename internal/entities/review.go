package entities

import "time"

// Review is an immutable rating of one book by one user. IDs are assigned in
// creation order, which is the order reviews are listed in.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Body      string    `gorm:"type:text" json:"body,omitempty"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

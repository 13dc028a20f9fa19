package domain

import "time"

// MaxCommentLength bounds comment text in characters.
const MaxCommentLength = 1000

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;" json:"product,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

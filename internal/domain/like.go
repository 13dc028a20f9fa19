package domain

import "time"

// Like is boolean membership of a user in a product's likers; the composite unique index is the storage guard.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_like_user_product,priority:1;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_like_user_product,priority:2;index;not null" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE;" json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

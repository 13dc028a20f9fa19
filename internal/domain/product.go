package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a listing owned by a single user. It carries no stock and may be bought any number of times.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"index;not null" json:"owner_id"`
	Name        string          `gorm:"size:50;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

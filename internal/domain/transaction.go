package domain

import (
	"errors" // Sentinel errors
	"time"   // Timestamps

	"github.com/shopspring/decimal" // Fixed-point money
	"gorm.io/gorm"                  // Model hooks
)

// ErrLedgerImmutable is returned when code tries to modify a written ledger entry
var ErrLedgerImmutable = errors.New("ledger entries are immutable")

// Ledger entry kinds
const (
	KindDeposit  = "deposit"  // Opening balance credited at registration
	KindWithdraw = "withdraw" // Purchase transfer from buyer to seller
)

// Transaction Model. Rows are append-only: nothing in this module updates or deletes them.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                          // Primary key
	Reference  string          `gorm:"size:36;uniqueIndex;not null" json:"reference"` // Public reference (uuid)
	ProductID  *uint           `gorm:"index" json:"product_id"`                       // Nullable: product may be removed later
	Product    *Product        `gorm:"constraint:OnDelete:SET NULL;" json:"-"`        // Purchased product
	SenderID   uint            `gorm:"index;not null" json:"sender_id"`               // Paying user
	ReceiverID uint            `gorm:"index;not null" json:"receiver_id"`             // Receiving user
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`     // Transferred amount
	Kind       string          `gorm:"size:10;not null" json:"kind"`                  // deposit or withdraw
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`                       // Creation time
}

// BeforeUpdate rejects any attempt to rewrite a ledger entry through the ORM
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

// BeforeDelete rejects any attempt to remove a ledger entry through the ORM
func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return ErrLedgerImmutable
}

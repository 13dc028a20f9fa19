// Package ledger appends and reads the immutable record of completed transfers.
package ledger

import (
	"context"
	"fmt"

	"marketplace/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Append writes entry inside tx. Reference and CreatedAt are assigned here;
// every other field must be set by the caller.
func Append(tx *gorm.DB, entry *domain.Transaction) error {
	if entry.ID != 0 {
		return domain.ErrLedgerImmutable
	}
	if !entry.Amount.IsPositive() {
		return domain.Validation("ledger amount must be greater than zero")
	}
	if entry.Kind != domain.KindDeposit && entry.Kind != domain.KindWithdraw {
		return domain.Validation(fmt.Sprintf("unknown ledger kind %q", entry.Kind))
	}
	entry.Reference = uuid.NewString()
	if err := tx.Omit("Product").Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ForUser returns every entry where userID is sender or receiver, newest first.
func ForUser(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	err := db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at desc").
		Order("id desc").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, nil
}

// Filter narrows an audit listing over the whole ledger.
type Filter struct {
	UserID uint   // Sender or receiver; 0 means any
	Kind   string // deposit or withdraw; empty means any
	From   string // Inclusive lower bound on created_at
	To     string // Inclusive upper bound on created_at
}

// Page is one page of an audit listing.
type Page struct {
	Transactions []domain.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	Total        int64                `json:"total"`
	TotalPages   int                  `json:"total_pages"`
}

// List pages through the whole ledger for audit views, newest first.
func List(ctx context.Context, db *gorm.DB, f Filter, page, pageSize int) (*Page, error) {
	query := db.WithContext(ctx).Model(&domain.Transaction{})
	if f.UserID != 0 {
		query = query.Where("sender_id = ? OR receiver_id = ?", f.UserID, f.UserID)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.From != "" {
		query = query.Where("created_at >= ?", f.From)
	}
	if f.To != "" {
		query = query.Where("created_at <= ?", f.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	txs := []domain.Transaction{}
	err := query.Order("created_at desc").Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return &Page{
		Transactions: txs,
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   (int(total) + pageSize - 1) / pageSize,
	}, nil
}

// Package wallet holds per-user balances. Balances change only through
// Transfer, which must run inside the caller's database transaction.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrWalletNotFound is returned when a user has no wallet row.
var ErrWalletNotFound = errors.New("wallet not found")

// Get returns the committed wallet of userID.
func Get(ctx context.Context, db *gorm.DB, userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

// lockPair takes row locks on both wallets in ascending user id order, so two
// transfers between the same users in opposite directions cannot deadlock on
// each other.
func lockPair(tx *gorm.DB, a, b uint) (map[uint]*domain.Wallet, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	locked := make(map[uint]*domain.Wallet, 2)
	for _, userID := range []uint{first, second} {
		var w domain.Wallet
		err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("user_id = ?", userID).
			First(&w).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user %d: %w", userID, ErrWalletNotFound)
			}
			return nil, fmt.Errorf("failed to lock wallet: %w", err)
		}
		locked[userID] = &w
	}
	return locked, nil
}

// Transfer moves amount from one user's wallet to another's. The balance check
// runs against the locked row, so concurrent transfers from the same wallet
// observe each other's debits. Returns the post-transfer wallets.
func Transfer(tx *gorm.DB, fromUserID, toUserID uint, amount decimal.Decimal) (from, to *domain.Wallet, err error) {
	if !amount.IsPositive() {
		return nil, nil, domain.Validation("amount must be greater than zero")
	}
	if fromUserID == toUserID {
		return nil, nil, domain.Validation("cannot transfer to the same wallet")
	}

	locked, err := lockPair(tx, fromUserID, toUserID)
	if err != nil {
		return nil, nil, err
	}
	from, to = locked[fromUserID], locked[toUserID]

	if from.Balance.LessThan(amount) {
		return nil, nil, domain.ErrInsufficientFunds
	}

	// A debit never applies to a row that changed since it was read, nor drives it negative.
	res := tx.Model(&domain.Wallet{}).
		Where("id = ? AND version = ? AND balance >= ?", from.ID, from.Version, amount).
		Updates(map[string]any{
			"balance": gorm.Expr("balance - ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, nil, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, nil, domain.ErrConflict
	}

	res = tx.Model(&domain.Wallet{}).
		Where("id = ? AND version = ?", to.ID, to.Version).
		Updates(map[string]any{
			"balance": gorm.Expr("balance + ?", amount),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, nil, fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, nil, domain.ErrConflict
	}

	from.Balance, from.Version = from.Balance.Sub(amount), from.Version+1
	to.Balance, to.Version = to.Balance.Add(amount), to.Version+1
	return from, to, nil
}

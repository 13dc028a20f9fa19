// Package purchase executes the buy workflow: the buyer's debit, the seller's
// credit, the ledger entry and the seller's notification commit together or
// not at all.
package purchase

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/db"
	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/notify"
	"marketplace/internal/utils"
	"marketplace/internal/wallet"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service runs purchases.
type Service struct {
	db       *gorm.DB
	outbox   *notify.Outbox
	rdb      *redis.Client // Optional; cached views are invalidated after commit
	attempts int
}

// NewService creates a purchase service retrying lock contention up to attempts times.
func NewService(gdb *gorm.DB, outbox *notify.Outbox, rdb *redis.Client, attempts int) *Service {
	if gdb == nil {
		panic("db is required")
	}
	if outbox == nil {
		panic("outbox is required")
	}
	return &Service{db: gdb, outbox: outbox, rdb: rdb, attempts: attempts}
}

// Purchase buys productID for buyerID at the product's current price.
// Preconditions are checked in order: the product exists, the buyer is not
// its owner, the buyer can afford it. Each call is an independent purchase.
func (s *Service) Purchase(ctx context.Context, buyerID, productID uint) (*domain.Transaction, error) {
	var (
		entry   *domain.Transaction
		product domain.Product
	)
	err := db.WithRetry(ctx, s.db, s.attempts, "purchase", func(tx *gorm.DB) error {
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("failed to get product: %w", err)
		}
		if buyerID == product.UserID {
			return domain.ErrSelfPurchase
		}

		if _, _, err := wallet.Transfer(tx, buyerID, product.UserID, product.Price); err != nil {
			return err
		}

		pid := product.ID
		entry = &domain.Transaction{
			ProductID:  &pid,
			SenderID:   buyerID,
			ReceiverID: product.UserID,
			Amount:     product.Price,
			Kind:       domain.KindWithdraw,
		}
		if err := ledger.Append(tx, entry); err != nil {
			return err
		}

		_, err := s.outbox.Notify(tx, buyerID, product.UserID, domain.EventPurchased)
		return err
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"buyer_id":   buyerID,
			"product_id": productID,
			"error":      err.Error(),
		}).Warn("Purchase failed")
		return nil, err
	}

	s.invalidate(ctx, buyerID, product.UserID)
	logrus.WithFields(logrus.Fields{
		"buyer_id":   buyerID,
		"seller_id":  product.UserID,
		"product_id": product.ID,
		"amount":     entry.Amount.String(),
		"reference":  entry.Reference,
	}).Info("Purchase transaction")
	return entry, nil
}

// invalidate drops every cached view holding either party's balance or ledger
func (s *Service) invalidate(ctx context.Context, buyerID, sellerID uint) {
	err := utils.Invalidate(ctx, s.rdb,
		utils.WalletKey(buyerID), utils.WalletKey(sellerID),
		utils.TxHistoryKey(buyerID), utils.TxHistoryKey(sellerID),
		utils.AdminUsersScope, utils.AdminTxScope,
	)
	if err != nil {
		logrus.WithError(err).Warn("Failed to invalidate wallet cache")
	}
	s.outbox.Invalidate(ctx, sellerID)
}

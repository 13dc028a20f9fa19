// Package history serves read-only engagement views of a single user.
package history

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/ledger"
	"marketplace/internal/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Reader aggregates likes, comments and ledger entries for audit views.
type Reader struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
}

// NewReader creates a reader over db; rdb may be nil to disable caching.
func NewReader(gdb *gorm.DB, rdb *redis.Client, ttl time.Duration) *Reader {
	return &Reader{db: gdb, rdb: rdb, ttl: ttl}
}

// Likes returns the products userID currently likes, most recent like first.
func (r *Reader) Likes(ctx context.Context, userID uint) ([]domain.Like, error) {
	likes, _, err := utils.ReadThrough(ctx, r.rdb, utils.LikesKey(userID), "", r.ttl, func() ([]domain.Like, error) {
		likes := []domain.Like{}
		err := r.db.WithContext(ctx).Preload("Product").
			Where("user_id = ?", userID).
			Order("created_at desc").Order("id desc").
			Find(&likes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get like history: %w", err)
		}
		return likes, nil
	})
	return likes, err
}

// Comments returns the comments userID authored with their target product, newest first.
func (r *Reader) Comments(ctx context.Context, userID uint) ([]domain.Comment, error) {
	comments, _, err := utils.ReadThrough(ctx, r.rdb, utils.CommentsKey(userID), "", r.ttl, func() ([]domain.Comment, error) {
		comments := []domain.Comment{}
		err := r.db.WithContext(ctx).Preload("Product").
			Where("user_id = ?", userID).
			Order("created_at desc").Order("id desc").
			Find(&comments).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get comment history: %w", err)
		}
		return comments, nil
	})
	return comments, err
}

// Transactions returns ledger entries where userID paid or was paid, newest first.
func (r *Reader) Transactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	txs, _, err := utils.ReadThrough(ctx, r.rdb, utils.TxHistoryKey(userID), "", r.ttl, func() ([]domain.Transaction, error) {
		return ledger.ForUser(ctx, r.db, userID)
	})
	return txs, err
}

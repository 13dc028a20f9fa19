// Package interaction implements likes and comments on products. Each write
// and the notification it fans out to the product owner share one transaction.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"marketplace/internal/db"
	"marketplace/internal/domain"
	"marketplace/internal/notify"
	"marketplace/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles like toggles and comment creation.
type Service struct {
	db       *gorm.DB
	outbox   *notify.Outbox
	rdb      *redis.Client
	attempts int
}

// NewService creates an interaction service retrying contention up to attempts times.
func NewService(gdb *gorm.DB, outbox *notify.Outbox, rdb *redis.Client, attempts int) *Service {
	return &Service{db: gdb, outbox: outbox, rdb: rdb, attempts: attempts}
}

func findProduct(tx *gorm.DB, productID uint) (*domain.Product, error) {
	var p domain.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// ToggleLike flips the like of userID on productID and reports whether the
// product is liked afterwards. Only the transition to liked notifies the owner.
//
// The existence check is the DELETE itself: removing a row means the like
// existed. A concurrent toggle that inserts first makes our INSERT hit the
// unique index; that attempt rolls back and the retry sees the row.
func (s *Service) ToggleLike(ctx context.Context, userID, productID uint) (bool, error) {
	var (
		liked   bool
		product *domain.Product
	)
	err := db.WithRetry(ctx, s.db, s.attempts, "toggle_like", func(tx *gorm.DB) error {
		var err error
		if product, err = findProduct(tx, productID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&domain.Like{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove like: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		if err := tx.Create(&domain.Like{UserID: userID, ProductID: productID}).Error; err != nil {
			if db.IsDuplicate(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("failed to add like: %w", err)
		}
		liked = true
		_, err = s.outbox.Notify(tx, userID, product.UserID, domain.EventLiked)
		return err
	})
	if err != nil {
		return false, err
	}

	if derr := utils.Invalidate(ctx, s.rdb, utils.LikesKey(userID)); derr != nil {
		logrus.WithError(derr).Warn("Failed to invalidate likes cache")
	}
	if liked {
		s.outbox.Invalidate(ctx, product.UserID)
	}
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"liked":      liked,
	}).Info("Like toggled")
	return liked, nil
}

// AddComment stores a comment by userID on productID and notifies the owner.
// Text is trimmed; it must be non-empty and at most MaxCommentLength characters.
func (s *Service) AddComment(ctx context.Context, userID, productID uint, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validation("comment cannot be empty")
	}
	if utf8.RuneCountInString(text) > domain.MaxCommentLength {
		return nil, domain.Validation(fmt.Sprintf("comment cannot exceed %d characters", domain.MaxCommentLength))
	}

	var (
		comment *domain.Comment
		product *domain.Product
	)
	err := db.WithRetry(ctx, s.db, s.attempts, "add_comment", func(tx *gorm.DB) error {
		var err error
		if product, err = findProduct(tx, productID); err != nil {
			return err
		}
		comment = &domain.Comment{UserID: userID, ProductID: productID, Text: text}
		if err := tx.Omit("Product").Create(comment).Error; err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}
		_, err = s.outbox.Notify(tx, userID, product.UserID, domain.EventCommented)
		return err
	})
	if err != nil {
		return nil, err
	}

	if derr := utils.Invalidate(ctx, s.rdb, utils.CommentsKey(userID)); derr != nil {
		logrus.WithError(derr).Warn("Failed to invalidate comments cache")
	}
	s.outbox.Invalidate(ctx, product.UserID)
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"comment_id": comment.ID,
	}).Info("Comment added")
	return comment, nil
}

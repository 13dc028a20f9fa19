// Package notify records one-way events from an actor to a recipient. Writes
// always join the transaction of the event that triggered them.
package notify

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Outbox stores notifications and serves each user's inbox.
type Outbox struct {
	db  *gorm.DB
	rdb *redis.Client // Optional read cache
	ttl time.Duration
}

// NewOutbox creates an outbox over db. rdb may be nil to disable caching.
func NewOutbox(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *Outbox {
	return &Outbox{db: db, rdb: rdb, ttl: ttl}
}

// Message renders the human-readable text of an event performed by actor.
func Message(event, actor string) string {
	switch event {
	case domain.EventPurchased:
		return actor + " bought your product"
	case domain.EventLiked:
		return actor + " liked your product"
	case domain.EventCommented:
		return actor + " commented on your product"
	default:
		return actor + " interacted with your product"
	}
}

// Enqueue inserts an unread notification inside tx. A user is never notified
// of their own action: when from == to nothing is written and nil is returned.
func (o *Outbox) Enqueue(tx *gorm.DB, fromUserID, toUserID uint, event, message string) (*domain.Notification, error) {
	if fromUserID == toUserID {
		return nil, nil
	}
	n := &domain.Notification{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Event:      event,
		Message:    message,
		Status:     domain.StatusUnread,
	}
	if err := tx.Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return n, nil
}

// Notify is Enqueue with the message built from the actor's username.
func (o *Outbox) Notify(tx *gorm.DB, fromUserID, toUserID uint, event string) (*domain.Notification, error) {
	if fromUserID == toUserID {
		return nil, nil
	}
	var names []string
	if err := tx.Model(&domain.User{}).Where("id = ?", fromUserID).Pluck("username", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	actor := "someone"
	if len(names) > 0 {
		actor = names[0]
	}
	return o.Enqueue(tx, fromUserID, toUserID, event, Message(event, actor))
}

// ListInbox returns every notification addressed to userID, newest first.
func (o *Outbox) ListInbox(ctx context.Context, userID uint) ([]domain.Notification, error) {
	inbox, _, err := utils.ReadThrough(ctx, o.rdb, utils.InboxKey(userID), "", o.ttl, func() ([]domain.Notification, error) {
		inbox := []domain.Notification{}
		err := o.db.WithContext(ctx).
			Where("to_user_id = ?", userID).
			Order("created_at desc").
			Order("id desc").
			Find(&inbox).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}
		return inbox, nil
	})
	return inbox, err
}

// UnreadCount returns how many notifications addressed to userID are unread.
func (o *Outbox) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	n, _, err := utils.ReadThrough(ctx, o.rdb, utils.UnreadKey(userID), "", o.ttl, func() (int64, error) {
		var n int64
		err := o.db.WithContext(ctx).Model(&domain.Notification{}).
			Where("to_user_id = ? AND status = ?", userID, domain.StatusUnread).
			Count(&n).Error
		if err != nil {
			return 0, fmt.Errorf("failed to count notifications: %w", err)
		}
		return n, nil
	})
	return n, err
}

// MarkRead flips a notification owned by userID to read. A notification that is
// missing or addressed to someone else yields ErrNotificationNotFound; one that
// is already read is left untouched.
func (o *Outbox) MarkRead(ctx context.Context, userID, notificationID uint) error {
	var n domain.Notification
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND to_user_id = ?", notificationID, userID).Limit(1).Find(&n)
		if res.Error != nil {
			return fmt.Errorf("failed to get notification: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotificationNotFound
		}
		if n.Status == domain.StatusRead {
			return nil
		}
		// Conditional on unread: a read notification is never written again
		return tx.Model(&domain.Notification{}).
			Where("id = ? AND to_user_id = ? AND status = ?", notificationID, userID, domain.StatusUnread).
			Update("status", domain.StatusRead).Error
	})
	if err != nil {
		return err
	}
	o.Invalidate(ctx, userID)
	logrus.WithFields(logrus.Fields{
		"user_id":         userID,
		"notification_id": notificationID,
	}).Info("Notification marked read")
	return nil
}

// Invalidate drops cached inbox views of the given recipients.
func (o *Outbox) Invalidate(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, utils.InboxKey(id), utils.UnreadKey(id))
	}
	if err := utils.Invalidate(ctx, o.rdb, keys...); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate inbox cache")
	}
}

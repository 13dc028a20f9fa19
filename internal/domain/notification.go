package domain

import "time"

// Notification statuses
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Notification events
const (
	EventPurchased = "purchased"
	EventLiked     = "liked"
	EventCommented = "commented"
)

// Notification is an outbox row addressed from one user to another.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FromUserID uint      `gorm:"not null" json:"from_user_id"`
	ToUserID   uint      `gorm:"index:idx_notification_inbox,priority:1;not null" json:"to_user_id"`
	Event      string    `gorm:"size:20;not null" json:"event"`
	Message    string    `gorm:"size:255;not null" json:"message"`
	Status     string    `gorm:"size:10;not null;default:unread" json:"status"`
	CreatedAt  time.Time `gorm:"index:idx_notification_inbox,priority:2" json:"created_at"`
}

package api

import (
	"context"                     // Request context
	"marketplace/internal/domain" // Importing domain models
	"net/http"                    // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Inbox serves and acknowledges a user's notifications
type Inbox interface {
	ListInbox(ctx context.Context, userID uint) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint) error
}

// ListNotificationsHandler returns the authenticated user's inbox, newest first
func ListNotificationsHandler(inbox Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		notifications, err := inbox.ListInbox(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

// UnreadCountHandler returns how many notifications are still unread
func UnreadCountHandler(inbox Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		n, err := inbox.UnreadCount(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": n})
	}
}

// MarkReadHandler marks one of the authenticated user's notifications read
func MarkReadHandler(inbox Inbox) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		notificationID, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := inbox.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
			respondError(c, err) // Missing and foreign notifications are both 404
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": domain.StatusRead})
	}
}

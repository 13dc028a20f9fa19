package api

import (
	"context"                     // Request context
	"marketplace/internal/domain" // Importing domain models
	"net/http"                    // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// HistoryReader aggregates a user's engagement
type HistoryReader interface {
	Likes(ctx context.Context, userID uint) ([]domain.Like, error)
	Comments(ctx context.Context, userID uint) ([]domain.Comment, error)
	Transactions(ctx context.Context, userID uint) ([]domain.Transaction, error)
}

// TransactionHistoryHandler returns every ledger entry the authenticated user paid or received
func TransactionHistoryHandler(reader HistoryReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		txs, err := reader.Transactions(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs})
	}
}

// LikeHistoryHandler returns the products the authenticated user likes
func LikeHistoryHandler(reader HistoryReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		likes, err := reader.Likes(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"likes": likes})
	}
}

// CommentHistoryHandler returns the comments the authenticated user wrote
func CommentHistoryHandler(reader HistoryReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		comments, err := reader.Comments(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"comments": comments})
	}
}

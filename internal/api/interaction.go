package api

import (
	"context"                     // Request context
	"marketplace/internal/domain" // Importing domain models
	"net/http"                    // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Purchaser runs the buy workflow
type Purchaser interface {
	Purchase(ctx context.Context, buyerID, productID uint) (*domain.Transaction, error)
}

// Interactor toggles likes and stores comments
type Interactor interface {
	ToggleLike(ctx context.Context, userID, productID uint) (bool, error)
	AddComment(ctx context.Context, userID, productID uint, text string) (*domain.Comment, error)
}

// CommentRequest represents a new comment
type CommentRequest struct {
	Text string `json:"text"` // Comment body, trimmed by the service
}

// PurchaseHandler buys the product in the path for the authenticated user
func PurchaseHandler(svc Purchaser) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Buyer
		if !ok {
			return
		}
		productID, ok := pathID(c, "id") // Product to buy
		if !ok {
			return
		}
		tx, err := svc.Purchase(c.Request.Context(), userID, productID)
		if err != nil {
			respondError(c, err) // Typed failure to HTTP status
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "purchased", "transaction": tx})
	}
}

// LikeHandler flips the authenticated user's like on the product in the path
func LikeHandler(svc Interactor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		productID, ok := pathID(c, "id")
		if !ok {
			return
		}
		liked, err := svc.ToggleLike(c.Request.Context(), userID, productID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked}) // State after the toggle
	}
}

// CommentHandler adds a comment by the authenticated user on the product in the path
func CommentHandler(svc Interactor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		productID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req CommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.Validation("invalid request"))
			return
		}
		comment, err := svc.AddComment(c.Request.Context(), userID, productID, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, comment)
	}
}

package api

import (
	"errors"                      // Error inspection
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/utils"  // Utility functions
	"marketplace/internal/wallet" // Wallet store
	"net/http"                    // HTTP status codes
	"time"                        // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// GetWalletHandler returns wallet info for the authenticated user. Purchases
// invalidate the cached copy of both parties after commit.
func GetWalletHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context() // Context for Redis and DB
		w, cached, err := utils.ReadThrough(ctx, rdb, utils.WalletKey(userID), "", ttl, func() (*domain.Wallet, error) {
			return wallet.Get(ctx, db, userID) // Fetch from DB on a miss
		})
		if err != nil {
			if errors.Is(err, wallet.ErrWalletNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "wallet_not_found", "message": err.Error()})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": w, "cached": cached}) // Return wallet info
	}
}

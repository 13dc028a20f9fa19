package api

import (
	"errors"                      // Error inspection
	"marketplace/internal/db"     // Storage error classification
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/ledger" // Opening deposit entry
	"marketplace/internal/utils"  // Utility functions
	"net/http"                    // HTTP status codes
	"regexp"                      // Regular expressions
	"strings"                     // String manipulation
	"time"                        // Token lifetime

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"golang.org/x/crypto/bcrypt"    // Password hashing
	"gorm.io/gorm"                  // GORM ORM library
)

// TokenTTL is the lifetime of an access token
const TokenTTL = 24 * time.Hour

var usernamePattern = regexp.MustCompile(`^[A-Za-z]+$`) // Alphabetic usernames only

// RegisterRequest represents a sign-up with the opening wallet balance
type RegisterRequest struct {
	Username string          `json:"username" binding:"required"` // Username must be provided
	Password string          `json:"password" binding:"required"` // Password must be provided
	Balance  decimal.Decimal `json:"balance"`                     // Opening balance, zero when omitted
}

// LoginRequest represents a login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the access token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// isValidUsername checks if the username contains only alphabetic characters
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks if the password length is between 8 and 15 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 15
}

// validate checks a sign-up before anything is written
func (r *RegisterRequest) validate() error {
	if !isValidUsername(r.Username) {
		return domain.Validation("username must be alphabetic only")
	}
	if !isValidPassword(r.Password) {
		return domain.Validation("password must be 8-15 characters")
	}
	if r.Balance.IsNegative() {
		return domain.Validation("balance cannot be negative")
	}
	if !r.Balance.Equal(r.Balance.Round(2)) {
		return domain.Validation("balance cannot have more than 2 decimal places")
	}
	return nil
}

// RegisterHandler creates the user, their wallet and, for a positive opening
// balance, a deposit ledger entry in one transaction
func RegisterHandler(gdb *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.Validation("invalid request"))
			return
		}
		if err := req.validate(); err != nil {
			respondError(c, err)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		// Lowercase username to ensure uniqueness
		user := domain.User{
			Username: strings.ToLower(req.Username),
			Password: string(hash),
			Role:     domain.RoleUser,
		}
		ctx := c.Request.Context()
		err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Wallet").Create(&user).Error; err != nil {
				if db.IsDuplicate(err) {
					return domain.Validation("username already exists")
				}
				return err
			}
			// Explicit insert: a zero balance would make the association look empty
			user.Wallet = domain.Wallet{UserID: user.ID, Balance: req.Balance}
			if err := tx.Create(&user.Wallet).Error; err != nil {
				return err
			}
			if !req.Balance.IsPositive() {
				return nil // Nothing was deposited
			}
			return ledger.Append(tx, &domain.Transaction{
				SenderID:   user.ID,
				ReceiverID: user.ID,
				Amount:     req.Balance,
				Kind:       domain.KindDeposit,
			})
		})
		if err != nil {
			respondError(c, err)
			return
		}
		scopes := []string{utils.AdminUsersScope}
		if req.Balance.IsPositive() {
			scopes = append(scopes, utils.AdminTxScope) // Opening deposit is in the ledger
		}
		if err := utils.Invalidate(ctx, rdb, scopes...); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate admin cache")
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,              // New user
			"balance": req.Balance.String(), // Opening balance
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(gdb *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.Validation("invalid request"))
			return
		}
		invalid := gin.H{"error": "unauthorized", "message": "invalid credentials"}
		var user domain.User // Fetch user from database
		err := gdb.WithContext(c.Request.Context()).Where("username = ?", strings.ToLower(req.Username)).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, invalid)
			return
		} else if err != nil {
			respondError(c, err)
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, invalid)
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret, TokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

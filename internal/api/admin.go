package api

import (
	"marketplace/internal/domain" // Importing domain models
	"marketplace/internal/ledger" // Ledger audit listing
	"marketplace/internal/utils"  // Utility functions
	"net/http"                    // HTTP status codes
	"strconv"                     // String conversion
	"strings"                     // String manipulation
	"time"                        // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Pagination bounds shared by admin listings
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint          `json:"id"`       // User ID
	Username string        `json:"username"` // Username
	Role     string        `json:"role"`     // User role
	Wallet   domain.Wallet `json:"wallet"`   // Associated wallet
}

// UserPage is one page of the admin user listing
type UserPage struct {
	Users      []UserAdminResponse `json:"users"`       // List of users
	Page       int                 `json:"page"`        // Current page
	PageSize   int                 `json:"page_size"`   // Page size
	Total      int64               `json:"total"`       // Total number of users
	TotalPages int                 `json:"total_pages"` // Total pages
}

// pagination reads page and page_size, falling back to defaults on bad input
func pagination(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= maxPageSize {
		pageSize = v // Set page size within limits
	}
	return page, pageSize
}

// ListUsersHandler returns all users with their wallet info. Registrations and
// purchases invalidate the whole listing.
func ListUsersHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		variant := ":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize) // One slot per page

		resp, cached, err := utils.ReadThrough(ctx, rdb, utils.AdminUsersScope, variant, ttl, func() (UserPage, error) {
			resp := UserPage{Page: page, PageSize: pageSize}
			if err := db.WithContext(ctx).Model(&domain.User{}).Count(&resp.Total).Error; err != nil {
				return resp, err
			}
			var users []domain.User // Preload Wallet relation, apply offset and limit for pagination
			if err := db.WithContext(ctx).Preload("Wallet").Order("id").
				Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
				return resp, err
			}
			resp.Users = make([]UserAdminResponse, len(users))
			for i, u := range users {
				resp.Users[i] = UserAdminResponse{ID: u.ID, Username: u.Username, Role: u.Role, Wallet: u.Wallet}
			}
			resp.TotalPages = (int(resp.Total) + pageSize - 1) / pageSize
			return resp, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": resp.Users, "page": resp.Page, "page_size": resp.PageSize,
			"total": resp.Total, "total_pages": resp.TotalPages, "cached": cached})
	}
}

// ListTransactionsHandler returns the whole ledger, with optional filtering by user, kind or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := pagination(c)
		filter := ledger.Filter{
			Kind: c.Query("kind"), // deposit or withdraw
			From: c.Query("from"), // Start date
			To:   c.Query("to"),   // End date
		}
		if v := c.Query("user_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				respondError(c, domain.Validation("invalid user_id"))
				return
			}
			filter.UserID = uint(id)
		}
		if filter.Kind != "" && filter.Kind != domain.KindDeposit && filter.Kind != domain.KindWithdraw {
			respondError(c, domain.Validation("kind must be deposit or withdraw"))
			return
		}

		// One slot per normalised query
		keyParts := []string{
			"user_id=" + strconv.FormatUint(uint64(filter.UserID), 10),
			"kind=" + filter.Kind,
			"from=" + filter.From,
			"to=" + filter.To,
			"page=" + strconv.Itoa(page),
			"size=" + strconv.Itoa(pageSize),
		}
		variant := ":" + strings.Join(keyParts, ":")

		result, cached, err := utils.ReadThrough(ctx, rdb, utils.AdminTxScope, variant, ttl, func() (*ledger.Page, error) {
			return ledger.List(ctx, db, filter, page, pageSize)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transactions": result.Transactions, "page": result.Page, "page_size": result.PageSize,
			"total": result.Total, "total_pages": result.TotalPages, "cached": cached})
	}
}

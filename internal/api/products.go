package api

import (
	"errors"                      // Error inspection
	"marketplace/internal/domain" // Importing domain models
	"net/http"                    // HTTP status codes
	"strings"                     // String manipulation
	"unicode/utf8"                // Name length in characters

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// Product name bounds in characters
const (
	minProductName = 3
	maxProductName = 50
)

// ProductRequest represents a new listing
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"` // Listing title
	Description string          `json:"description"`             // Free text
	Price       decimal.Decimal `json:"price"`                   // Must be positive, at most 2 decimals
}

// validate normalises and checks a listing
func (r *ProductRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if n := utf8.RuneCountInString(r.Name); n < minProductName || n > maxProductName {
		return domain.Validation("product name must be 3-50 characters")
	}
	if !r.Price.IsPositive() {
		return domain.Validation("price must be greater than zero")
	}
	if !r.Price.Equal(r.Price.Round(2)) {
		return domain.Validation("price cannot have more than 2 decimal places")
	}
	return nil
}

// CreateProductHandler lists a product owned by the authenticated user
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Owner
		if !ok {
			return
		}
		var req ProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, domain.Validation("invalid request"))
			return
		}
		if err := req.validate(); err != nil {
			respondError(c, err)
			return
		}
		product := domain.Product{
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
		}
		if err := db.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"owner_id":   userID,                 // Owner
			"product_id": product.ID,             // New product
			"price":      product.Price.String(), // Listing price
		}).Info("Product created")
		c.JSON(http.StatusCreated, product)
	}
}

// GetProductHandler returns one product
func GetProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var product domain.Product
		if err := db.WithContext(c.Request.Context()).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = domain.ErrProductNotFound
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

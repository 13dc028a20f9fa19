package api

import (
	"errors"                          // Error inspection
	"marketplace/internal/domain"     // Domain error kinds
	"marketplace/internal/middleware" // Context keys
	"net/http"                        // HTTP status codes
	"strconv"                         // Path parameter parsing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps a domain error kind to its HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindProductNotFound, domain.KindNotificationNotFound:
		return http.StatusNotFound
	case domain.KindSelfPurchase:
		return http.StatusForbidden
	case domain.KindInsufficientFunds:
		return http.StatusConflict
	case domain.KindConflict, domain.KindDuplicate:
		return http.StatusServiceUnavailable
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": kind, "message": text}. Failures outside
// the domain are logged and reported without their internals.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "internal server error"})
		return
	}
	c.JSON(statusFor(de.Kind), gin.H{"error": string(de.Kind), "message": de.Message})
}

// currentUserID reads the authenticated user set by the JWT middleware
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	id, ok := v.(uint)
	if !exists || !ok || id == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "unauthorized"})
		return 0, false
	}
	return id, true
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		respondError(c, domain.Validation("invalid "+name))
		return 0, false
	}
	return uint(v), true
}

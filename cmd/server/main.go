package main

import (
	"context"                          // context package is needed for Redis operations
	"marketplace/internal/api"         // API handlers
	"marketplace/internal/config"      // Configuration
	"marketplace/internal/db"          // Database
	"marketplace/internal/history"     // Engagement history reader
	"marketplace/internal/interaction" // Likes and comments
	"marketplace/internal/middleware"  // Middleware
	"marketplace/internal/notify"      // Notification outbox
	"marketplace/internal/purchase"    // Purchase orchestrator

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	gdb, err := db.Open(cfg) // Connect with the configured driver
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Redis is optional: without REDIS_ADDR every read goes to the database
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Warn("REDIS_ADDR not set, caching disabled")
	}

	// Core services
	outbox := notify.NewOutbox(gdb, redisClient, cfg.CacheTTL)
	purchases := purchase.NewService(gdb, outbox, redisClient, cfg.TxRetryAttempts)
	interactions := interaction.NewService(gdb, outbox, redisClient, cfg.TxRetryAttempts)
	reader := history.NewReader(gdb, redisClient, cfg.CacheTTL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(gdb, redisClient))      // Registration endpoint
	r.POST("/user/login", api.LoginHandler(gdb, cfg.JWTSecret)) // Login endpoint

	// Authenticated routes
	authed := r.Group("")
	authed.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authed.GET("/wallet", api.GetWalletHandler(gdb, redisClient, cfg.CacheTTL)) // Wallet balance

	authed.POST("/products", api.CreateProductHandler(gdb))                 // List a product
	authed.GET("/products/:id", api.GetProductHandler(gdb))                 // Product details
	authed.POST("/products/:id/purchase", api.PurchaseHandler(purchases))   // Buy
	authed.POST("/products/:id/like", api.LikeHandler(interactions))        // Toggle like
	authed.POST("/products/:id/comments", api.CommentHandler(interactions)) // Comment

	authed.GET("/notifications", api.ListNotificationsHandler(outbox))        // Inbox
	authed.GET("/notifications/unread-count", api.UnreadCountHandler(outbox)) // Unread badge
	authed.POST("/notifications/:id/read", api.MarkReadHandler(outbox))       // Acknowledge

	authed.GET("/transactions/history", api.TransactionHistoryHandler(reader)) // Ledger entries
	authed.GET("/likes/history", api.LikeHistoryHandler(reader))               // Liked products
	authed.GET("/comments/history", api.CommentHistoryHandler(reader))         // Written comments

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(gdb))
	adminGroup.GET("/users", api.ListUsersHandler(gdb, redisClient, cfg.CacheTTL))               // List users endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(gdb, redisClient, cfg.CacheTTL)) // List transactions endpoint

	logrus.Infof("Server running on %s", cfg.AppPort) // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

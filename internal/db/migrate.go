package db

import (
	"fmt"                         // Error wrapping
	"log"                         // Standard logger backing the gorm logger
	"marketplace/internal/config" // Application configuration
	"marketplace/internal/domain" // Importing domain models
	"os"                          // Stdout for the gorm logger
	"time"                        // Slow query threshold and pool lifetimes

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM logger configuration
)

// Models lists every table owned by the marketplace core, in dependency order
var Models = []any{
	&domain.User{},
	&domain.Wallet{},
	&domain.Product{},
	&domain.Transaction{},
	&domain.Like{},
	&domain.Comment{},
	&domain.Notification{},
}

// Open connects to the configured database and tunes the connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN()) // MySQL dialector
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN()) // PostgreSQL dialector
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	// Ignore "record not found" noise: not-found is a normal outcome in the core
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !cfg.IsProd,
		},
	)
	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	sqlDB, err := gdb.DB() // Underlying pool
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return gdb, nil
}

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := gdb.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

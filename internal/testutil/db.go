// Package testutil wires DB-backed tests against a real MySQL or PostgreSQL
// instance. Tests are skipped unless TEST_DB_DSN is set; TEST_DB_DRIVER selects
// the dialect (mysql by default).
package testutil

import (
	"os"
	"strings"
	"testing"

	"marketplace/internal/db"
	"marketplace/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the test database, migrates the schema and empties every table.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	var dialector gorm.Dialector
	if strings.EqualFold(os.Getenv("TEST_DB_DRIVER"), "postgres") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = mysql.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "db connection")
	require.NoError(t, db.Migrate(gdb))

	reset(t, gdb)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func reset(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	// Children first so foreign keys never block the delete. Raw statements
	// bypass the ledger's immutability hooks.
	for i := len(db.Models) - 1; i >= 0; i-- {
		stmt := &gorm.Statement{DB: gdb}
		require.NoError(t, stmt.Parse(db.Models[i]))
		require.NoError(t, gdb.Exec("DELETE FROM "+stmt.Schema.Table).Error, "reset db")
	}
}

// SeedUser creates a user with a wallet holding balance.
func SeedUser(t *testing.T, gdb *gorm.DB, username string, balance int64) domain.User {
	t.Helper()

	user := domain.User{Username: username, Password: "x"}
	require.NoError(t, gdb.Omit("Wallet").Create(&user).Error, "seed user")
	user.Wallet = domain.Wallet{UserID: user.ID, Balance: decimal.NewFromInt(balance)}
	require.NoError(t, gdb.Create(&user.Wallet).Error, "seed wallet")
	return user
}

// SeedProduct creates a product owned by ownerID.
func SeedProduct(t *testing.T, gdb *gorm.DB, ownerID uint, price int64) domain.Product {
	t.Helper()

	product := domain.Product{UserID: ownerID, Name: "Lamp", Price: decimal.NewFromInt(price)}
	require.NoError(t, gdb.Create(&product).Error, "seed product")
	return product
}

// Balance reads the committed balance of userID's wallet.
func Balance(t *testing.T, gdb *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()

	var wallet domain.Wallet
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&wallet).Error, "get balance")
	return wallet.Balance
}

// Count returns the number of rows of model matching query.
func Count(t *testing.T, gdb *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := gdb.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

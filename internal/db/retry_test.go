package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"marketplace/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait timeout", fmt.Errorf("update wallet: %w", &mysql.MySQLError{Number: 1205}), true},
		{"mysql duplicate is not contention", &mysql.MySQLError{Number: 1062}, false},
		{"postgres deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"postgres serialization", &pgconn.PgError{Code: "40001"}, true},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"core conflict", domain.ErrConflict, true},
		{"duplicate guard", fmt.Errorf("insert like: %w", domain.ErrDuplicate), true},
		{"precondition failure", domain.ErrInsufficientFunds, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsDuplicate(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.False(t, IsDuplicate(&mysql.MySQLError{Number: 1213}))
	assert.False(t, IsDuplicate(errors.New("boom")))
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 1; attempt <= 4; attempt++ {
		for i := 0; i < 50; i++ {
			d := backoff(attempt)
			assert.GreaterOrEqual(t, d, time.Duration(attempt)*retryBaseDelay)
			assert.Less(t, d, time.Duration(attempt)*retryBaseDelay+retryMaxJitter)
		}
	}
}

func TestSleepStopsOnCancel(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

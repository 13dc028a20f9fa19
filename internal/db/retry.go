package db

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"marketplace/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MySQL server error numbers
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// Pause between attempts grows linearly with jitter so colliding
// transactions do not retry in lockstep
const (
	retryBaseDelay = 5 * time.Millisecond
	retryMaxJitter = 10 * time.Millisecond
)

// backoff is the pause after failed attempt number attempt (1-based).
func backoff(attempt int) time.Duration {
	return time.Duration(attempt)*retryBaseDelay + rand.N(retryMaxJitter)
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRetryable reports whether err is lock contention that a fresh attempt may resolve.
func IsRetryable(err error) bool {
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrDuplicate) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
	}
	return false
}

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// WithRetry runs fn inside a database transaction, starting over on retryable
// failures up to attempts times. Exhausted contention surfaces as ErrConflict;
// any other error is returned as is on first occurrence.
func WithRetry(ctx context.Context, gdb *gorm.DB, attempts int, op string, fn func(tx *gorm.DB) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = gdb.WithContext(ctx).Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Retrying after storage contention")
		if attempt == attempts {
			break
		}
		if serr := sleep(ctx, backoff(attempt)); serr != nil {
			return serr
		}
	}
	return errors.Join(domain.ErrConflict, err)
}

package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Scopes of paginated admin listings
const (
	AdminUsersScope = "admin:users"
	AdminTxScope    = "admin:txs"
)

// Cache scope builders shared by readers and by the writers that invalidate them
func WalletKey(userID uint) string { return fmt.Sprintf("wallet:user:%d", userID) }
func InboxKey(userID uint) string { return fmt.Sprintf("inbox:user:%d", userID) }
func UnreadKey(userID uint) string { return fmt.Sprintf("inbox:unread:user:%d", userID) }
func TxHistoryKey(userID uint) string { return fmt.Sprintf("txhistory:user:%d", userID) }
func LikesKey(userID uint) string { return fmt.Sprintf("likes:user:%d", userID) }
func CommentsKey(userID uint) string { return fmt.Sprintf("comments:user:%d", userID) }

// generationKey holds the counter bumped by every invalidation of scope
func generationKey(scope string) string { return "gen:" + scope }

// GetCache retrieves a value from Redis and unmarshals it into dest.
// A nil client behaves as a permanent cache miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// Generation returns the current invalidation counter of scope, 0 when never invalidated
func Generation(ctx context.Context, rdb *redis.Client, scope string) (int64, error) {
	gen, err := rdb.Get(ctx, generationKey(scope)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SlotKey is where a view of scope is stored at generation gen; variant
// distinguishes views sharing a scope such as listing pages
func SlotKey(scope string, gen int64, variant string) string {
	return fmt.Sprintf("%s:g%d%s", scope, gen, variant)
}

// ReadThrough serves the view of scope from cache or loads and caches it.
// The generation is read before load and the fill is written under it, so a
// load that raced an Invalidate lands in a slot no later reader looks at.
// Without a client, or when Redis fails, every call loads.
func ReadThrough[T any](ctx context.Context, rdb *redis.Client, scope, variant string, ttl time.Duration, load func() (T, error)) (T, bool, error) {
	if rdb == nil {
		v, err := load()
		return v, false, err
	}
	gen, err := Generation(ctx, rdb, scope)
	if err != nil {
		v, lerr := load() // Cache unavailable, serve from the database
		return v, false, lerr
	}
	slot := SlotKey(scope, gen, variant)
	var cached T
	if found, err := GetCache(ctx, rdb, slot, &cached); err == nil && found {
		return cached, true, nil
	}
	v, err := load()
	if err != nil {
		return v, false, err
	}
	_ = SetCache(ctx, rdb, slot, v, ttl) // Best effort fill
	return v, false, nil
}

// Invalidate bumps the generation of every scope so views cached before the
// call are never served again; they expire with their TTL
func Invalidate(ctx context.Context, rdb *redis.Client, scopes ...string) error {
	if rdb == nil || len(scopes) == 0 {
		return nil // Nothing to invalidate
	}
	_, err := rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, scope := range scopes {
			pipe.Incr(ctx, generationKey(scope))
		}
		return nil
	})
	return err
}

package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestRedis(t)

	type entry struct {
		Liked bool `json:"liked"`
	}

	require.NoError(t, SetCache(ctx, rdb, LikesKey(7), entry{Liked: true}, time.Minute))

	var got entry
	found, err := GetCache(ctx, rdb, LikesKey(7), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.Liked)

	found, err = GetCache(ctx, rdb, WalletKey(7), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadThroughServesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestRedis(t)

	loads := 0
	load := func() (int, error) {
		loads++
		return loads * 10, nil
	}

	v, cached, err := ReadThrough(ctx, rdb, WalletKey(1), "", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 10, v)

	v, cached, err = ReadThrough(ctx, rdb, WalletKey(1), "", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 10, v)

	require.NoError(t, Invalidate(ctx, rdb, WalletKey(1)))

	v, cached, err = ReadThrough(ctx, rdb, WalletKey(1), "", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 20, v)
	assert.Equal(t, 2, loads)
}

// A writer that commits and invalidates while a reader is between its
// database read and its cache fill must not leave the old value visible.
func TestReadThroughFillRacingInvalidateIsNeverServed(t *testing.T) {
	ctx := context.Background()
	rdb, _ := newTestRedis(t)

	balance := 100
	v, _, err := ReadThrough(ctx, rdb, WalletKey(1), "", time.Minute, func() (int, error) {
		read := balance
		// Purchase commits and invalidates after the read, before the fill
		balance = 40
		require.NoError(t, Invalidate(ctx, rdb, WalletKey(1)))
		return read, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 100, v)

	v, cached, err := ReadThrough(ctx, rdb, WalletKey(1), "", time.Minute, func() (int, error) {
		return balance, nil
	})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 40, v)
}

func TestReadThroughVariantsShareScope(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)

	one := func() (int, error) { return 1, nil }
	_, _, err := ReadThrough(ctx, rdb, AdminTxScope, ":page=1", time.Minute, one)
	require.NoError(t, err)
	_, _, err = ReadThrough(ctx, rdb, AdminTxScope, ":page=2", time.Minute, one)
	require.NoError(t, err)
	assert.True(t, mr.Exists(SlotKey(AdminTxScope, 0, ":page=2")))

	require.NoError(t, Invalidate(ctx, rdb, AdminTxScope))

	gen, err := Generation(ctx, rdb, AdminTxScope)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	_, cached, err := ReadThrough(ctx, rdb, AdminTxScope, ":page=2", time.Minute, one)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestReadThroughLoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)

	boom := errors.New("db down")
	_, _, err := ReadThrough(ctx, rdb, InboxKey(3), "", time.Minute, func() ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(SlotKey(InboxKey(3), 0, "")))
}

func TestReadThroughWithoutRedisAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)
	mr.Close() // Redis unreachable

	loads := 0
	for _, client := range []*redis.Client{nil, rdb} {
		v, cached, err := ReadThrough(ctx, client, WalletKey(1), "", time.Minute, func() (int, error) {
			loads++
			return 5, nil
		})
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, 5, v)
	}
	assert.Equal(t, 2, loads)

	var dest int
	found, err := GetCache(ctx, nil, WalletKey(1), &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, WalletKey(1), 1, time.Minute))
	assert.NoError(t, Invalidate(ctx, nil, WalletKey(1)))
}

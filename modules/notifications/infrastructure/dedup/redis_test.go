package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink/marketplace/internal/platform/session"
)

func newTestRedis(t *testing.T, ttl time.Duration) *Redis {
	t.Helper()
	addr := os.Getenv("AGRILINK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AGRILINK_TEST_REDIS_ADDR not set")
	}
	rdb, err := session.Dial(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	r := NewRedis(rdb, ttl)
	r.prefix = "agrilink:test:" + t.Name() + ":"
	t.Cleanup(func() { _ = rdb.Del(context.Background(), r.prefix+"evt-1").Err() })
	return r
}

func TestRedis_ClaimOnceAndRelease(t *testing.T) {
	r := newTestRedis(t, time.Minute)
	ctx := context.Background()

	first, err := r.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	// A second replica sees the same claim.
	other := NewRedis(r.rdb, time.Minute)
	other.prefix = r.prefix
	again, err := other.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, r.Release(ctx, "evt-1"))
	retried, err := other.Claim(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, retried)
}

func TestRedis_ClaimExpires(t *testing.T) {
	r := newTestRedis(t, 30*time.Second)
	ctx := context.Background()

	ok, err := r.Claim(ctx, "evt-1")
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := r.rdb.TTL(ctx, r.prefix+"evt-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

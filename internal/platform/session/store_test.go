package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	s := &Session{UserID: "u-1", Email: "ada@farm.example", AccessToken: "at", RefreshToken: "rt"}
	require.NoError(t, store.Create(ctx, s))
	require.NotEmpty(t, s.ID)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "at", got.AccessToken)

	got.AccessToken = "at-2"
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "at-2", got.AccessToken)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Update(ctx, &Session{ID: "missing"}), ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := &Session{UserID: "u-1"}
	require.NoError(t, store.Create(context.Background(), s))

	now = now.Add(59 * time.Second)
	_, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateSweepsAbandonedSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for range 3 {
		require.NoError(t, store.Create(context.Background(), &Session{UserID: "u-gone"}))
	}
	require.Len(t, store.entries, 3)

	now = now.Add(2 * time.Minute)
	fresh := &Session{UserID: "u-1"}
	require.NoError(t, store.Create(context.Background(), fresh))

	assert.Len(t, store.entries, 1)
	assert.Contains(t, store.entries, fresh.ID)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("AGRILINK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AGRILINK_TEST_REDIS_ADDR not set")
	}
	rdb, err := Dial(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, time.Minute)
	store.prefix = "agrilink:test:" + t.Name() + ":"
	exerciseStore(t, store)
}

func TestSession_NeedsRefresh(t *testing.T) {
	now := time.Now()
	s := &Session{AccessExpiresAt: now.Add(30 * time.Second)}

	assert.True(t, s.NeedsRefresh(now, time.Minute))
	assert.False(t, s.NeedsRefresh(now, 10*time.Second))
	assert.False(t, (&Session{}).NeedsRefresh(now, time.Minute), "unknown expiry never refreshes")
}

package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	s := NewStore(rdb, time.Minute)
	s.prefix = "idem-test-" + uuid.NewString()
	return s
}

func TestKeyFormat(t *testing.T) {
	s := NewStore(nil, time.Minute)
	assert.Equal(t, "idem:user.borrowed.book:2:1048", s.Key("user.borrowed.book", 2, 1048))
}

func TestSeen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	key := s.Key("book.published", 0, 7)

	seen, err := s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, s.Forget(ctx, key))
	seen, err = s.Seen(ctx, key)
	require.NoError(t, err)
	assert.False(t, seen)
	require.NoError(t, s.Forget(ctx, key))
}

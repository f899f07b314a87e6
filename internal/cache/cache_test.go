package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.now
	return s, clock
}

func TestKey(t *testing.T) {
	assert.Equal(t, "yahoo:AAPL:6mo", Key("yahoo", "AAPL", "6mo"))
}

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()
	bars := []model.OHLCV{{Close: 1}, {Close: 2}}

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)

	s.Set(ctx, "k", bars, time.Minute)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, bars, got)

	clock.t = clock.t.Add(61 * time.Second)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok, "expired entries miss")
}

func TestMemoryStore_DeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore()

	s.Set(ctx, "short", nil, time.Second)
	s.Set(ctx, "long", nil, time.Hour)
	s.Set(ctx, "gone", nil, time.Hour)
	s.Delete("gone")

	clock.t = clock.t.Add(time.Minute)
	s.Cleanup()

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.items, 1)
	assert.Contains(t, s.items, "long")
}

func TestMemoryStore_Janitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore()
	s.Set(ctx, "k", nil, time.Nanosecond)
	s.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.items) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRedisStore_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisConfig{Addr: "127.0.0.1:1"}, nil)
	assert.Error(t, err)
}

package cache

import (
	"context"
	"sync"
	"time"

	"StockLens/internal/model"
)

// Store caches fetched bars by key.
type Store interface {
	Get(ctx context.Context, key string) ([]model.OHLCV, bool)
	Set(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration)
}

// Key builds the cache key for a provider/symbol/period triple.
func Key(provider, symbol, period string) string {
	return provider + ":" + symbol + ":" + period
}

// item represents a cached item with expiration
type item struct {
	bars       []model.OHLCV
	expiration int64
}

// MemoryStore is a simple in-memory cache with expiration
type MemoryStore struct {
	items map[string]item
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryStore creates a new in-memory cache
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]item),
		now:   time.Now,
	}
}

// Set adds bars under key for the given duration
func (c *MemoryStore) Set(_ context.Context, key string, bars []model.OHLCV, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		bars:       bars,
		expiration: c.now().Add(ttl).UnixNano(),
	}
}

// Get retrieves bars by key; the second return value reports a live hit
func (c *MemoryStore) Get(_ context.Context, key string) ([]model.OHLCV, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.bars, true
}

// Delete removes an item from the cache
func (c *MemoryStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Cleanup removes expired items from the cache
func (c *MemoryStore) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if now > v.expiration {
			delete(c.items, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (c *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

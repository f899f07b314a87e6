package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"StockLens/internal/model"
)

const redisKeyPrefix = "stocklens:bars:"

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps JSON-encoded bars in Redis strings with a TTL.
// Any Redis error is logged and reported as a miss.
type RedisStore struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("redis cache connected", zap.String("addr", cfg.Addr))
	return &RedisStore{client: client, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]model.OHLCV, bool) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(raw, &bars); err != nil {
		s.logger.Warn("redis decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return bars, true
}

func (s *RedisStore) Set(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration) {
	raw, err := json.Marshal(bars)
	if err != nil {
		s.logger.Warn("redis encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		s.logger.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

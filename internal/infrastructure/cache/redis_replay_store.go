package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kasso/backend/internal/domain/shared"
)

// RedisReplayStore remembers settled webhook references in Redis so that
// redeliveries can be acknowledged without touching the database. Losing a
// key is harmless: the settlement row lock stays authoritative.
type RedisReplayStore struct {
	client *redis.Client
	logger *zap.Logger
}

var _ shared.IdempotencyStore = (*RedisReplayStore)(nil)

// NewRedisReplayStore connects to Redis and verifies the connection
func NewRedisReplayStore(addr, password string, db int, logger *zap.Logger) (*RedisReplayStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr), zap.Int("db", db))
	return &RedisReplayStore{client: client, logger: logger}, nil
}

// MarkProcessed records a key with SETNX semantics. It returns true when the
// key was newly set, false when it already existed.
func (s *RedisReplayStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// IsProcessed reports whether the key has been recorded
func (s *RedisReplayStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Close releases the Redis connection
func (s *RedisReplayStore) Close() error {
	return s.client.Close()
}

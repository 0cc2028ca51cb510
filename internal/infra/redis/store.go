package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// retention bounds how long a durable entry can linger in Redis. The cache
// checks its own envelope timestamp on every load, so this only keeps
// abandoned keys from accumulating.
const retention = 7 * 24 * time.Hour

// CacheStore implements the durable store contract on Redis.
type CacheStore struct {
	rdb *redis.Client
}

// NewCacheStore creates a Redis-backed durable store.
func NewCacheStore(client *Client) *CacheStore {
	return &CacheStore{rdb: client.rdb}
}

func cacheKey(key string) string {
	return fmt.Sprintf("taxocache:%s", key)
}

// Load implements cache.Store.
func (s *CacheStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.rdb.Get(ctx, cacheKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return blob, true, nil
}

// Save implements cache.Store.
func (s *CacheStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, cacheKey(key), data, retention).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Clear implements cache.Store.
func (s *CacheStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

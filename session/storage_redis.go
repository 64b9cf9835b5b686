package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisStorage keeps entries in a redis instance private to this device,
// using native key expiry for the ttl hint.
type RedisStorage struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStorage stores keys as "<prefix>:<key>". An empty prefix stores
// keys unchanged.
func NewRedisStorage(rdb redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{redis: rdb, prefix: prefix}
}

func (r *RedisStorage) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get implements [Storage].
func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return v, nil
}

// Set implements [Storage]. A positive ttl becomes the key's expiry.
func (r *RedisStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.redis.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete implements [Storage].
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

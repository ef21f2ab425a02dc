package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeyValue persists values as plain Redis strings without expiry.
type RedisKeyValue struct {
	client redis.Cmdable
}

// NewRedisKeyValue constructs a Redis-backed substrate.
func NewRedisKeyValue(client redis.Cmdable) *RedisKeyValue {
	return &RedisKeyValue{client: client}
}

// Get retrieves the raw value for key.
func (r *RedisKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set stores value under key.
func (r *RedisKeyValue) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryKeyValue keeps values in process memory. Contents are lost on restart.
type MemoryKeyValue struct {
	cache *cache.Cache
}

// NewMemoryKeyValue constructs an in-memory substrate with no expiration.
func NewMemoryKeyValue() *MemoryKeyValue {
	return &MemoryKeyValue{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the stored bytes.
func (r *MemoryKeyValue) Get(_ context.Context, key string) ([]byte, error) {
	if x, found := r.cache.Get(key); found {
		raw := x.([]byte)
		return append([]byte(nil), raw...), nil
	}
	return nil, nil
}

// Set stores a copy of value.
func (r *MemoryKeyValue) Set(_ context.Context, key string, value []byte) error {
	r.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// KeyValue is the byte-level persistence substrate. Get returns nil, nil for absent keys.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store persists a whole collection of T under a logical key.
type Store[T any] interface {
	Load(ctx context.Context, key string) ([]T, error)
	Save(ctx context.Context, key string, items []T) error
}

// QueryObserver receives substrate latency samples.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// JSONStore encodes collections as JSON arrays on top of a KeyValue substrate.
type JSONStore[T any] struct {
	kv       KeyValue
	prefix   string
	observer QueryObserver
}

// NewJSONStore constructs a JSONStore. prefix namespaces every key; observer may be nil.
func NewJSONStore[T any](kv KeyValue, prefix string, observer QueryObserver) *JSONStore[T] {
	return &JSONStore[T]{kv: kv, prefix: prefix, observer: observer}
}

// Load decodes the collection stored under key. A missing key yields an empty slice.
func (s *JSONStore[T]) Load(ctx context.Context, key string) ([]T, error) {
	start := time.Now()
	raw, err := s.kv.Get(ctx, s.prefix+key)
	s.observe("load_"+key, start)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

// Save replaces the collection stored under key.
func (s *JSONStore[T]) Save(ctx context.Context, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	start := time.Now()
	err = s.kv.Set(ctx, s.prefix+key, payload)
	s.observe("save_"+key, start)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *JSONStore[T]) observe(label string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveDBQuery(label, time.Since(start))
	}
}

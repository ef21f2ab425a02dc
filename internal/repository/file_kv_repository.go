package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/sma-adp-counseling/pkg/storage"
)

// FileKeyValue stores each key as a JSON file under a base directory.
type FileKeyValue struct {
	storage *storage.LocalStorage
}

// NewFileKeyValue constructs a file-backed substrate.
func NewFileKeyValue(s *storage.LocalStorage) *FileKeyValue {
	return &FileKeyValue{storage: s}
}

// Get reads the file for key.
func (r *FileKeyValue) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, found, err := r.storage.Read(fileName(key))
	if err != nil {
		return nil, fmt.Errorf("file get %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	return data, nil
}

// Set replaces the file for key.
func (r *FileKeyValue) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.storage.Save(fileName(key), value); err != nil {
		return fmt.Errorf("file set %s: %w", key, err)
	}
	return nil
}

func fileName(key string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(key) + ".json"
}

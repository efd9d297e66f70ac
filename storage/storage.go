package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"finwise-backend/config"

	"github.com/google/uuid"
)

// Storage interface for object storage operations
type Storage interface {
	// Put stores an object under key
	Put(ctx context.Context, key, contentType string, data io.Reader) error

	// Get retrieves an object by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch StorageType(cfg.Type) {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// adviceKey shards archived advice by the first two characters of the profile id
func adviceKey(profileID uuid.UUID) string {
	id := profileID.String()
	return fmt.Sprintf("advice/%s/%s.json", id[:2], id)
}

// cleanKey rejects keys that would escape the storage root
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return key, nil
}

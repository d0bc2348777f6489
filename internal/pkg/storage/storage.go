package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotConfigured is returned by New when the selected driver lacks credentials
var ErrNotConfigured = errors.New("storage not configured")

// Storage is the object store used for space images
type Storage interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Config selects and configures a storage driver
type Config struct {
	Driver string // "s3", "r2" or "local"

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	PublicURL   string

	R2AccountID string

	LocalPath string
}

// New builds the storage driver named in cfg.Driver
func New(cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("%w: S3_BUCKET is empty", ErrNotConfigured)
		}
		return NewS3Storage(cfg)
	case "r2":
		if cfg.R2AccountID == "" || cfg.S3Bucket == "" {
			return nil, fmt.Errorf("%w: R2 account or bucket is empty", ErrNotConfigured)
		}
		return NewR2Storage(cfg)
	case "local":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

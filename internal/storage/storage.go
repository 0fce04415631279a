package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kidneymate/server/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	// ErrNoDirectURL is returned by backends that cannot hand out links to
	// objects; callers serve the bytes themselves instead.
	ErrNoDirectURL = errors.New("storage backend has no direct URLs")
)

// Storage stores report files by path, e.g. "private/reports/<id>.jpg".
type Storage interface {
	Save(ctx context.Context, path string, file io.Reader, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	// SignedURL returns a link that grants read access for expiry.
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// New creates the storage backend selected by STORAGE_DRIVER.
func New(c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case config.StorageS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case config.StorageLocal, "":
		slog.Info("initializing local storage", "path", c.StorageLocalPath)
		return NewLocalStorage(c.StorageLocalPath)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", c.StorageDriver)
	}
}

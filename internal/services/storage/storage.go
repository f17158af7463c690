package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"catalogimport/internal/config"
	"catalogimport/internal/logger"
)

// Blobs stores a stream under a generated key and returns that key.
type Blobs interface {
	Store(ctx context.Context, body io.Reader, filename, contentType string) (string, error)
}

// NewFromConfig picks S3 when a bucket is configured and the local
// filesystem otherwise.
func NewFromConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (Blobs, error) {
	if cfg.S3Bucket == "" {
		log.Info("No S3 bucket configured, storing images under %s", cfg.BlobDir)
		return NewLocalStore(cfg.BlobDir, cfg.S3Prefix)
	}

	store, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to set up S3 storage: %w", err)
	}
	log.Info("Storing images in s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
	return store, nil
}

// objectKey builds a collision-free key that keeps the original filename
// readable.
func objectKey(prefix, filename string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, path.Base(filename))

	return path.Join(prefix, uuid.New().String()+"-"+name)
}

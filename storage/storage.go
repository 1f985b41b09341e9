package storage

import (
	"context"
	"fmt"
	"strings"
)

// ObjectStore keeps uploaded asset bytes.
type ObjectStore interface {
	// Put stores data under key and returns the public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures the object store backend.
type Config struct {
	Driver string // "s3" (default) or "minio"

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "s3":
		s, err := NewS3Store(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "minio":
		m, err := NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

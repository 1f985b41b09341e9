package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// S3Store writes to an S3-compatible bucket (Supabase storage by default).
type S3Store struct {
	client    *s3.S3
	bucket    string
	publicURL string
}

func NewS3Store(cfg Config) (*S3Store, error) {
	if cfg.S3Region == "" || cfg.S3Endpoint == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("missing required S3 configuration environment variables")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("bucket name not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.S3Region),
		Endpoint:         aws.String(cfg.S3Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = cfg.S3Endpoint
	}
	return &S3Store{client: s3.New(sess), bucket: cfg.S3Bucket, publicURL: publicURL}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	url := fmt.Sprintf("%s/object/public/%s/%s", s.publicURL, s.bucket, key)
	log.Info().Str("key", key).Str("url", url).Msg("[S3Store] object stored")
	return url, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 object %s: %w", key, err)
	}
	return nil
}

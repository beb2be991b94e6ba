// Package blobstore optionally offloads captured SFTP upload bytes to S3 or
// an S3-compatible object store instead of storing them inline in the
// file_uploads row. It mirrors a standard S3-backed content-store pattern
// but drops multipart upload and statistics machinery that a honeypot's
// small captured payloads never need.
package blobstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/marmos91/glasshouse/internal/logger"
)

// Store puts and fetches captured upload bytes keyed by their SHA-256 hash,
// so identical payloads uploaded by different attackers are stored once.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config configures an S3-backed blobstore.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	KeyPrefix       string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// New builds a Store from static credentials, following the usual
// NewS3ClientFromConfig pattern for S3-backed content stores.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blobstore: bucket name is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("blobstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Store{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix}, nil
}

func (s *Store) objectKey(sha256Hex string) string {
	if s.keyPrefix == "" {
		return sha256Hex
	}
	return s.keyPrefix + "/" + sha256Hex
}

// Put stores content under its SHA-256 hash and returns the object key to
// persist on the FileUpload row in place of the raw bytes.
func (s *Store) Put(ctx context.Context, sha256Hex string, content []byte) (string, error) {
	key := s.objectKey(sha256Hex)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	logger.Debug("blobstore upload stored", logger.SHA256(sha256Hex), logger.Size(int64(len(content))))
	return key, nil
}

// Get fetches previously stored content by object key.
func (s *Store) Get(ctx context.Context, objectKey string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore: get %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", objectKey, err)
	}
	return buf.Bytes(), nil
}

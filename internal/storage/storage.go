// Package storage uploads audio files to R2-compatible object storage.
package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectStore is the bucket-level operations the uploader needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Config holds R2 connection settings.
type Config struct {
	Endpoint    string
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Region      string
}

// R2Store talks to an R2 bucket through the S3 API.
type R2Store struct {
	api    *s3.S3
	bucket string
}

// NewR2Store creates a store for the configured bucket.
func NewR2Store(cfg Config) *R2Store {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess := session.Must(session.NewSession(s3Config))
	return &R2Store{api: s3.New(sess), bucket: cfg.Bucket}
}

func (s *R2Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *R2Store) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

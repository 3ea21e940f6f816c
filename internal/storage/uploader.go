package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Error codes that indicate a misconfiguration rather than a transient
// network condition. Retrying these only delays the failure.
var permanentCodes = map[string]bool{
	s3.ErrCodeNoSuchBucket:   true,
	"InvalidAccessKeyId":     true,
	"SignatureDoesNotMatch":  true,
	"AccessDenied":           true,
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key string
	URL string
}

// Uploader wraps an ObjectStore with the audio key scheme, public URL
// mapping, and retry policy.
type Uploader struct {
	store         ObjectStore
	publicBaseURL string
	maxAttempts   int
	retryBase     time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewUploader creates an uploader. retryBase is the first backoff interval;
// each subsequent attempt doubles it.
func NewUploader(store ObjectStore, publicBaseURL string, maxAttempts int, retryBase time.Duration) *Uploader {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Uploader{
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		maxAttempts:   maxAttempts,
		retryBase:     retryBase,
		sleep:         time.Sleep,
	}
}

// ObjectKey builds the storage key for an owner's file: the owner ID, a
// generated ID, and the original extension.
func ObjectKey(ownerID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return ownerID + "/" + uuid.NewString() + ext
}

// Upload stores the body under a generated key and returns the key and its
// public URL. Transient failures are retried with exponential backoff and
// jitter; auth and bucket configuration errors fail immediately.
func (u *Uploader) Upload(ctx context.Context, ownerID, filename, contentType string, body io.ReadSeeker) (*UploadResult, error) {
	key := ObjectKey(ownerID, filename)

	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := u.backoff(attempt - 1)
			log.Printf("Upload attempt %d/%d for %s in %s: %v", attempt, u.maxAttempts, key, delay, lastErr)
			u.sleep(delay)
			if _, err := body.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewinding upload body: %w", err)
			}
		}

		err := u.store.Put(ctx, key, body, contentType)
		if err == nil {
			return &UploadResult{Key: key, URL: u.PublicURL(key)}, nil
		}
		if isPermanent(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("upload failed after %d attempts: %w", u.maxAttempts, lastErr)
}

// Delete removes a stored object by key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	return u.store.Delete(ctx, key)
}

// PublicURL maps a storage key to its public address.
func (u *Uploader) PublicURL(key string) string {
	return u.publicBaseURL + "/" + key
}

// backoff returns retryBase doubled per completed attempt, plus up to 20%
// jitter: 5s, 10s, 20s, 40s for the default base.
func (u *Uploader) backoff(completed int) time.Duration {
	delay := u.retryBase << (completed - 1)
	jitter := time.Duration(rand.Int63n(int64(u.retryBase)/5 + 1))
	return delay + jitter
}

func isPermanent(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return permanentCodes[aerr.Code()]
	}
	return false
}

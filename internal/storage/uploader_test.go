package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
)

// fakeStore fails the first failCount Put calls.
type fakeStore struct {
	failCount int
	failWith  error
	puts      []string
	deletes   []string
	bodies    []string
}

func (f *fakeStore) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	data, _ := io.ReadAll(body)
	f.puts = append(f.puts, key)
	f.bodies = append(f.bodies, string(data))
	if len(f.puts) <= f.failCount {
		return f.failWith
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func newTestUploader(store ObjectStore) (*Uploader, *[]time.Duration) {
	u := NewUploader(store, "https://cdn.example.com/", 5, 5*time.Second)
	var sleeps []time.Duration
	u.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return u, &sleeps
}

func TestUpload_Success(t *testing.T) {
	store := &fakeStore{}
	u, sleeps := newTestUploader(store)

	result, err := u.Upload(context.Background(), "user-1", "Tavern Theme.MP3", "audio/mpeg",
		strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !strings.HasPrefix(result.Key, "user-1/") || !strings.HasSuffix(result.Key, ".mp3") {
		t.Errorf("Unexpected key scheme: %s", result.Key)
	}
	if result.URL != "https://cdn.example.com/"+result.Key {
		t.Errorf("Unexpected public URL: %s", result.URL)
	}
	if len(*sleeps) != 0 {
		t.Errorf("Expected no backoff on success, got %v", *sleeps)
	}
}

func TestUpload_RetriesTransientErrors(t *testing.T) {
	store := &fakeStore{failCount: 3, failWith: errors.New("connection reset by peer")}
	u, sleeps := newTestUploader(store)

	result, err := u.Upload(context.Background(), "user-1", "a.mp3", "audio/mpeg",
		strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatalf("Expected retries to recover: %v", err)
	}
	if len(store.puts) != 4 {
		t.Errorf("Expected 4 attempts, got %d", len(store.puts))
	}

	// Backoff doubles: 5s, 10s, 20s, each plus up to 1s jitter.
	expected := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	if len(*sleeps) != len(expected) {
		t.Fatalf("Expected %d backoffs, got %v", len(expected), *sleeps)
	}
	for i, base := range expected {
		got := (*sleeps)[i]
		if got < base || got > base+time.Second+time.Millisecond {
			t.Errorf("Backoff %d = %s, want %s plus jitter", i, got, base)
		}
	}

	// The body is rewound before every retry.
	for i, body := range store.bodies {
		if body != "audio-bytes" {
			t.Errorf("Attempt %d saw partial body %q", i, body)
		}
	}
	if result.Key == "" {
		t.Error("Expected a key on success")
	}
}

func TestUpload_GivesUpAfterMaxAttempts(t *testing.T) {
	transient := errors.New("tls handshake timeout")
	store := &fakeStore{failCount: 100, failWith: transient}
	u, _ := newTestUploader(store)

	_, err := u.Upload(context.Background(), "user-1", "a.mp3", "audio/mpeg",
		strings.NewReader("x"))
	if err == nil {
		t.Fatal("Expected failure after exhausting attempts")
	}
	if !errors.Is(err, transient) {
		t.Errorf("Expected wrapped transient error, got %v", err)
	}
	if len(store.puts) != 5 {
		t.Errorf("Expected 5 attempts, got %d", len(store.puts))
	}
}

func TestUpload_PermanentErrorFailsImmediately(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"missing bucket", s3.ErrCodeNoSuchBucket},
		{"bad access key", "InvalidAccessKeyId"},
		{"bad secret", "SignatureDoesNotMatch"},
		{"denied", "AccessDenied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{
				failCount: 100,
				failWith:  awserr.New(tt.code, "nope", nil),
			}
			u, sleeps := newTestUploader(store)

			_, err := u.Upload(context.Background(), "user-1", "a.mp3", "audio/mpeg",
				strings.NewReader("x"))
			if err == nil {
				t.Fatal("Expected error")
			}
			if len(store.puts) != 1 {
				t.Errorf("Expected 1 attempt for a permanent error, got %d", len(store.puts))
			}
			if len(*sleeps) != 0 {
				t.Errorf("Expected no backoff, got %v", *sleeps)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("user-1", "My Song.WAV")
	if !strings.HasPrefix(key, "user-1/") {
		t.Errorf("Expected owner prefix, got %s", key)
	}
	if !strings.HasSuffix(key, ".wav") {
		t.Errorf("Expected lowercased extension, got %s", key)
	}
	if key == ObjectKey("user-1", "My Song.WAV") {
		t.Error("Expected unique keys per call")
	}
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	u, _ := newTestUploader(store)

	if err := u.Delete(context.Background(), "user-1/abc.mp3"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.deletes) != 1 || store.deletes[0] != "user-1/abc.mp3" {
		t.Errorf("Unexpected deletes: %v", store.deletes)
	}
}

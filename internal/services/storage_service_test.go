package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/catalog-backend/internal/config"
)

// fakeImageStore records removals and can be told to fail.
type fakeImageStore struct {
	mu      sync.Mutex
	removed []string
	fail    bool
}

func (f *fakeImageStore) Remove(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, publicID)
	if f.fail {
		return errors.New("remote unavailable")
	}
	return nil
}

func (f *fakeImageStore) Removed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

func TestStorageServiceSkipsEmptyIDs(t *testing.T) {
	store := &fakeImageStore{}
	svc := NewStorageService(store)

	svc.RemoveAll(context.Background(), []string{"", "a", ""})
	assert.Equal(t, []string{"a"}, store.Removed())
}

func TestStorageServiceSwallowsFailures(t *testing.T) {
	store := &fakeImageStore{fail: true}
	svc := NewStorageService(store)

	assert.NotPanics(t, func() {
		svc.Remove(context.Background(), "poster-1")
	})
	assert.Equal(t, []string{"poster-1"}, store.Removed())
}

func TestNewImageStoreDrivers(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "log"}}
	store, err := NewImageStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, LogImageStore{}, store)

	cfg = &config.Config{
		Storage: config.StorageConfig{Driver: "minio"},
		Minio:   config.MinioConfig{Endpoint: "https://minio.local:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"},
	}
	store, err = NewImageStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioImageStore{}, store)

	cfg = &config.Config{
		Storage: config.StorageConfig{Driver: "s3"},
		AWS:     config.AWSConfig{Region: "us-east-1", AccessKeyID: "k", SecretAccessKey: "s", S3Bucket: "b"},
	}
	store, err = NewImageStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3ImageStore{}, store)
}

// internal/services/storage_service.go
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/catalog-backend/internal/config"
)

// ImageStore is the remote host of catalog images, posters, logos and PDFs.
// Resources are addressed by the public id stored next to their URL.
type ImageStore interface {
	Remove(ctx context.Context, publicID string) error
}

type S3ImageStore struct {
	client *s3.S3
	bucket string
}

func NewS3ImageStore(cfg config.AWSConfig) (*S3ImageStore, error) {
	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3ImageStore{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
	}, nil
}

func (s *S3ImageStore) Remove(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

type MinioImageStore struct {
	client *minio.Client
	bucket string
}

func NewMinioImageStore(cfg config.MinioConfig) (*MinioImageStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &MinioImageStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *MinioImageStore) Remove(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", publicID, err)
	}
	return nil
}

// LogImageStore only records removals. Used in development.
type LogImageStore struct{}

func (LogImageStore) Remove(ctx context.Context, publicID string) error {
	logrus.WithField("public_id", publicID).Info("Image would be removed")
	return nil
}

func NewImageStore(cfg *config.Config) (ImageStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return NewS3ImageStore(cfg.AWS)
	case "minio":
		return NewMinioImageStore(cfg.Minio)
	default:
		return LogImageStore{}, nil
	}
}

// StorageService removes remote resources on behalf of the catalog. Removal
// is best effort: failures are logged and never fail the caller.
type StorageService struct {
	store ImageStore
}

func NewStorageService(store ImageStore) *StorageService {
	return &StorageService{store: store}
}

// Remove deletes one remote resource. An empty public id is a no-op.
func (s *StorageService) Remove(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}

	if err := s.store.Remove(ctx, publicID); err != nil {
		logrus.WithError(err).WithField("public_id", publicID).Warn("Failed to remove remote image")
	}
}

func (s *StorageService) RemoveAll(ctx context.Context, publicIDs []string) {
	for _, publicID := range publicIDs {
		s.Remove(ctx, publicID)
	}
}

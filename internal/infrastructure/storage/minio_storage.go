package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

// MinioStorage stores media in a MinIO bucket.
type MinioStorage struct {
	client       *minio.Client
	bucket       string
	publicBase   string
	publicPolicy bool
	log          zerolog.Logger
}

func NewMinioStorage(cfg *config.Config, log zerolog.Logger) (*MinioStorage, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new client: %w", err)
	}

	return &MinioStorage{
		client:       mc,
		bucket:       cfg.Bucket,
		publicBase:   cfg.ResolvedPublicBaseURL(),
		publicPolicy: !cfg.PresignedURLs(),
		log:          log.With().Str("component", "minio-storage").Logger(),
	}, nil
}

func (m *MinioStorage) Backend() string {
	return config.StorageBackendMinio
}

// EnsureBucket creates the bucket if it does not already exist and, under the public URL
// policy, tries to open it for anonymous reads. A rejected policy is only logged.
func (m *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("make bucket: %w", err)
		}
		m.log.Info().Str("bucket", m.bucket).Msg("bucket created")
	}

	if m.publicPolicy {
		if err := m.client.SetBucketPolicy(ctx, m.bucket, publicReadPolicy(m.bucket)); err != nil {
			m.log.Warn().Err(err).Str("bucket", m.bucket).Msg("could not set public read policy; public URLs may be denied")
		}
	}
	return nil
}

// Put streams the staged file into MinIO.
func (m *MinioStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	defer func(start time.Time) { observe(m.Backend(), "put", start, err) }(time.Now())

	_, err = m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Remove deletes an object from the bucket by key.
func (m *MinioStorage) Remove(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe(m.Backend(), "remove", start, err) }(time.Now())

	if err = m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (m *MinioStorage) PublicURL(key string) string {
	return publicObjectURL(m.publicBase, m.bucket, key)
}

func (m *MinioStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (url string, err error) {
	defer func(start time.Time) { observe(m.Backend(), "presign", start, err) }(time.Now())

	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", key, err)
	}
	return u.String(), nil
}

// Health checks that the bucket is reachable.
func (m *MinioStorage) Health(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.bucket)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/metrics"
)

// Store is an object store that can also report its health.
type Store interface {
	domain.ObjectStore
	Health(ctx context.Context) error
	Backend() string
}

// NewFromConfig builds the configured backend and makes sure its bucket exists.
func NewFromConfig(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		store, err = NewS3Storage(ctx, cfg, log)
	case config.StorageBackendMinio:
		store, err = NewMinioStorage(cfg, log)
	case config.StorageBackendLocal:
		store, err = NewLocalStorage(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, err)
	}
	log.Info().
		Str("backend", store.Backend()).
		Str("bucket", cfg.Bucket).
		Str("url_policy", cfg.URLPolicy).
		Msg("object store ready")
	return store, nil
}

// publicObjectURL joins the external base, bucket and key into a browser-reachable URL.
func publicObjectURL(baseURL, bucket, key string) string {
	base := strings.TrimSuffix(baseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, url.PathEscape(bucket), escapeKey(key))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// publicReadPolicy grants anonymous GetObject on every object in the bucket.
func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func observe(backend, operation string, start time.Time, err error) {
	metrics.RecordStorageOperation(backend, operation, err, time.Since(start).Seconds())
}

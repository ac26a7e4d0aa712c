package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

var errInvalidKey = errors.New("object key escapes the bucket directory")

// LocalStorage keeps objects on the local filesystem under basePath/bucket.
type LocalStorage struct {
	basePath string
	bucket   string
	baseURL  string
	log      zerolog.Logger
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		bucket:   cfg.Bucket,
		baseURL:  cfg.ResolvedPublicBaseURL(),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

func (l *LocalStorage) Backend() string {
	return config.StorageBackendLocal
}

// Root is the directory served at the public base URL.
func (l *LocalStorage) Root() string {
	return l.basePath
}

func (l *LocalStorage) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(filepath.Join(l.basePath, l.bucket), 0o755)
}

// Put writes the object to a temporary sibling and renames it into place, so readers never
// see a partial file.
func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	defer func(start time.Time) { observe(l.Backend(), "put", start, err) }(time.Now())

	fullPath, err := l.objectPath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	l.log.Debug().
		Str("key", key).
		Int64("bytes", written).
		Msg("file uploaded to local storage")
	return nil
}

// Remove deletes the object; a missing file is not an error.
func (l *LocalStorage) Remove(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { observe(l.Backend(), "remove", start, err) }(time.Now())

	fullPath, err := l.objectPath(key)
	if err != nil {
		return err
	}
	if err = os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (l *LocalStorage) PublicURL(key string) string {
	return publicObjectURL(l.baseURL, l.bucket, key)
}

// PresignGet returns the direct URL; files served from disk need no signature.
func (l *LocalStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	fullPath, err := l.objectPath(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("file not found: %s", key)
	}
	return l.PublicURL(key), nil
}

// Health checks if the storage directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("storage directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

func (l *LocalStorage) objectPath(key string) (string, error) {
	root := filepath.Join(l.basePath, l.bucket)
	full := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", errInvalidKey
	}
	return full, nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

func newTestLocalStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		StorageBackend:   config.StorageBackendLocal,
		LocalStoragePath: root,
		Bucket:           "media",
		HTTPPort:         5000,
	}
	store, err := NewLocalStorage(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(context.Background()))
	return store, root
}

func TestLocalStoragePutAndRemove(t *testing.T) {
	store, root := newTestLocalStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc.png", bytes.NewBufferString("payload"), 7, "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "media", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "media"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, store.Remove(ctx, "abc.png"))
	_, err = os.Stat(filepath.Join(root, "media", "abc.png"))
	assert.True(t, os.IsNotExist(err))

	// removing a missing object is not an error
	require.NoError(t, store.Remove(ctx, "abc.png"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, _ := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"../outside.png", "../../etc/passwd", ""} {
		err := store.Put(ctx, key, bytes.NewBufferString("x"), 1, "text/plain")
		assert.ErrorIs(t, err, errInvalidKey, key)
	}
}

func TestLocalStorageCancelledPutLeavesNothing(t *testing.T) {
	store, root := newTestLocalStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Put(ctx, "abc.png", bytes.NewBufferString("payload"), 7, "image/png")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "media"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorageURLs(t *testing.T) {
	store, _ := newTestLocalStorage(t)
	ctx := context.Background()

	assert.Equal(t, "http://localhost:5000/files/media/abc.png", store.PublicURL("abc.png"))

	_, err := store.PresignGet(ctx, "missing.png", time.Hour)
	assert.Error(t, err)

	require.NoError(t, store.Put(ctx, "abc.png", bytes.NewBufferString("x"), 1, "image/png"))
	url, err := store.PresignGet(ctx, "abc.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, store.PublicURL("abc.png"), url)
}

func TestLocalStorageHealth(t *testing.T) {
	store, _ := newTestLocalStorage(t)
	assert.NoError(t, store.Health(context.Background()))
	assert.Equal(t, config.StorageBackendLocal, store.Backend())
}

func TestPublicObjectURLEscapesSegments(t *testing.T) {
	got := publicObjectURL("http://cdn.test/", "media", "folder/my file.png")
	assert.Equal(t, "http://cdn.test/media/folder/my%20file.png", got)
}

func TestPublicReadPolicyIsValidJSON(t *testing.T) {
	var policy map[string]any
	require.NoError(t, json.Unmarshal([]byte(publicReadPolicy("media")), &policy))
	assert.Contains(t, publicReadPolicy("media"), "arn:aws:s3:::media/*")
}

func TestNewFromConfigLocal(t *testing.T) {
	cfg := &config.Config{
		StorageBackend:   config.StorageBackendLocal,
		LocalStoragePath: t.TempDir(),
		Bucket:           "media",
		HTTPPort:         5000,
	}
	store, err := NewFromConfig(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, config.StorageBackendLocal, store.Backend())

	cfg.StorageBackend = "ftp"
	_, err = NewFromConfig(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

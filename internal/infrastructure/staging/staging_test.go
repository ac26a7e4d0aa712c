package staging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
)

func newTestArea(t *testing.T) *Area {
	t.Helper()
	area, err := NewArea(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return area
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestStageDetectsContentAndReleases(t *testing.T) {
	area := newTestArea(t)
	payload := []byte("%PDF-1.7\n" + strings.Repeat("x", 5000))

	staged, err := area.Stage(context.Background(), bytes.NewReader(payload), 1<<20)
	require.NoError(t, err)

	assert.EqualValues(t, len(payload), staged.Size())
	assert.Equal(t, "application/pdf", staged.ContentType())
	assert.Equal(t, 1, countFiles(t, area.Dir()))

	rc, err := staged.Open()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)

	require.NoError(t, staged.Release())
	require.NoError(t, staged.Release())
	assert.Equal(t, 0, countFiles(t, area.Dir()))
}

func TestStageEnforcesLimit(t *testing.T) {
	area := newTestArea(t)

	_, err := area.Stage(context.Background(), strings.NewReader(strings.Repeat("a", 101)), 100)
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
	assert.Equal(t, 0, countFiles(t, area.Dir()))

	staged, err := area.Stage(context.Background(), strings.NewReader(strings.Repeat("a", 100)), 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, staged.Size())
	require.NoError(t, staged.Release())
}

func TestStageHonoursCancellation(t *testing.T) {
	area := newTestArea(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := area.Stage(ctx, strings.NewReader("data"), 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrUploadUnreadable)
	assert.Equal(t, 0, countFiles(t, area.Dir()))
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStageReadErrorCleansUp(t *testing.T) {
	area := newTestArea(t)

	_, err := area.Stage(context.Background(), brokenReader{}, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, domain.ErrUploadUnreadable)
	assert.Equal(t, 0, countFiles(t, area.Dir()))
}

func TestStageLocalFailureIsNotUnreadable(t *testing.T) {
	area := newTestArea(t)
	require.NoError(t, os.RemoveAll(area.Dir()))

	_, err := area.Stage(context.Background(), strings.NewReader("data"), 100)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUploadUnreadable)
	assert.NotErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	area := newTestArea(t)

	stale := filepath.Join(area.Dir(), "upload-stale.part")
	fresh := filepath.Join(area.Dir(), "upload-fresh.part")
	other := filepath.Join(area.Dir(), "keep.txt")
	for _, path := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	removed, err := area.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestJanitorSweepsOnStart(t *testing.T) {
	area := newTestArea(t)
	stale := filepath.Join(area.Dir(), "upload-stale.part")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	janitor := NewJanitor(area, zerolog.Nop())
	janitor.Start(context.Background())
	janitor.Stop()
	janitor.Stop()

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

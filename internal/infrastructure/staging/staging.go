package staging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
)

const (
	filePattern = "upload-*.part"
	sniffBytes  = 3072
)

// Area stages inbound uploads as temporary files in a dedicated directory.
type Area struct {
	dir string
	log zerolog.Logger
}

// NewArea creates the staging directory when needed. An empty dir selects a
// media-staging directory below the OS temp dir.
func NewArea(dir string, log zerolog.Logger) (*Area, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "media-staging")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	return &Area{
		dir: dir,
		log: log.With().Str("component", "staging-area").Logger(),
	}, nil
}

// NewAreaFromConfig builds the staging area from service configuration.
func NewAreaFromConfig(cfg *config.Config, log zerolog.Logger) (*Area, error) {
	return NewArea(cfg.StagingDir, log)
}

// Dir returns the staging directory.
func (a *Area) Dir() string {
	return a.dir
}

// Stage copies body into a fresh temporary file. The file is removed before returning
// when anything fails, including a cancelled context or an oversized body. Failures of the
// body or the context wrap domain.ErrUploadUnreadable; local file errors do not.
func (a *Area) Stage(ctx context.Context, body io.Reader, maxBytes int64) (domain.StagedObject, error) {
	file, err := os.CreateTemp(a.dir, filePattern)
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	staged := &File{path: file.Name(), log: a.log}

	size, head, err := copyWithLimit(ctx, file, body, maxBytes)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close staging file: %w", closeErr)
	}
	if err != nil {
		_ = staged.Release()
		return nil, err
	}

	staged.size = size
	staged.contentType = mimetype.Detect(head).String()
	return staged, nil
}

// Sweep removes staged files older than maxAge left behind by a crashed process.
func (a *Area) Sweep(maxAge time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(a.dir, filePattern))
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.Warn().Err(err).Str("path", path).Msg("remove stale staging file")
			continue
		}
		removed++
	}
	if removed > 0 {
		a.log.Info().Int("removed", removed).Msg("swept stale staging files")
	}
	return removed, nil
}

func copyWithLimit(ctx context.Context, dst io.Writer, src io.Reader, maxBytes int64) (int64, []byte, error) {
	var head bytes.Buffer
	buf := make([]byte, 32*1024)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, nil, fmt.Errorf("%w: %w", domain.ErrUploadUnreadable, err)
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if maxBytes > 0 && written+int64(n) > maxBytes {
				return written, nil, domain.ErrPayloadTooLarge
			}
			if head.Len() < sniffBytes {
				head.Write(buf[:min(n, sniffBytes-head.Len())])
			}
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, nil, fmt.Errorf("write staging file: %w", err)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, head.Bytes(), nil
		}
		if readErr != nil {
			return written, nil, fmt.Errorf("%w: %w", domain.ErrUploadUnreadable, readErr)
		}
	}
}

// File is one staged upload.
type File struct {
	path        string
	size        int64
	contentType string
	log         zerolog.Logger
	releaseOnce sync.Once
	releaseErr  error
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) ContentType() string {
	return f.contentType
}

// Path returns the location of the staged bytes.
func (f *File) Path() string {
	return f.path
}

func (f *File) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// Release deletes the staged file. Calling it more than once is harmless.
func (f *File) Release() error {
	f.releaseOnce.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.releaseErr = fmt.Errorf("remove staging file: %w", err)
		}
	})
	return f.releaseErr
}

package media

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrPayloadTooLarge is returned by a StagingArea when the stream exceeds the size limit.
var ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

// ErrUploadUnreadable marks staging failures caused by the inbound stream itself, such as a
// broken client connection or an abandoned request. Local I/O failures never carry it.
var ErrUploadUnreadable = errors.New("upload stream could not be read")

// Repository defines metadata persistence operations needed by the service.
// Find methods return (nil, nil) when nothing matches.
// Create must report a violated uniqueness constraint as a CONFLICT platform error.
type Repository interface {
	Create(ctx context.Context, record *MediaRecord) error
	FindByID(ctx context.Context, id string) (*MediaRecord, error)
	FindByCorrelationKey(ctx context.Context, key string) (*MediaRecord, error)
	FindAllByCorrelationKey(ctx context.Context, key string) ([]*MediaRecord, error)
	FindByCorrelationKeys(ctx context.Context, keys []string) ([]*MediaRecord, error)
	FindByOwner(ctx context.Context, owner string) ([]*MediaRecord, error)
	List(ctx context.Context, limit, offset int) ([]*MediaRecord, error)
	Delete(ctx context.Context, ids ...string) (int64, error)
}

// TxManager scopes a unit of work. fn runs inside one transaction that is committed when fn
// returns nil and rolled back otherwise.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ObjectStore defines media storage operations.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
	PublicURL(key string) string
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// StagingArea holds inbound bytes locally until they are durably stored.
type StagingArea interface {
	Stage(ctx context.Context, body io.Reader, maxBytes int64) (StagedObject, error)
}

// StagedObject is a staged payload. Release must be called exactly once on every path.
type StagedObject interface {
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
	Release() error
}

// EventPublisher delivers lifecycle events on a best-effort basis.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder receives outcome signals that operators alert on.
type Recorder interface {
	OrphanObject(storedName string)
}

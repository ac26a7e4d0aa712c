package media

import (
	"io"
	"time"
)

// MaxCorrelationKeyLength mirrors the width of the post_id column.
const MaxCorrelationKeyLength = 50

// MaxOwnerLength mirrors the width of the owner column.
const MaxOwnerLength = 128

// DefaultExtension is used when the uploaded filename carries no usable suffix.
const DefaultExtension = "bin"

// MediaRecord represents stored media metadata.
type MediaRecord struct {
	ID             string    `json:"id"`
	CorrelationKey string    `json:"post_id"`
	StoredName     string    `json:"filename"`
	PublicURL      string    `json:"file_url"`
	ContentType    string    `json:"content_type,omitempty"`
	SizeBytes      int64     `json:"size_bytes"`
	Owner          string    `json:"owner,omitempty"`
	CreatedAt      time.Time `json:"uploaded_at"`
}

// UploadRequest carries an already-parsed inbound file.
type UploadRequest struct {
	CorrelationKey string
	Body           io.Reader
	FileNameHint   string
	Owner          string
}

// BatchResult is the outcome of a bulk correlation key lookup.
type BatchResult struct {
	Found          []*MediaRecord `json:"found"`
	NotFound       []string       `json:"not_found"`
	TotalRequested int            `json:"total_requested"`
	TotalFound     int            `json:"total_found"`
}

// PresignedURL is a time-limited link to one stored object.
type PresignedURL struct {
	PostID    string `json:"post_id"`
	MediaID   string `json:"media_id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignResult is the outcome of a batch presign request.
type PresignResult struct {
	URLs      []PresignedURL `json:"urls"`
	NotFound  []string       `json:"not_found"`
	ExpiresIn int            `json:"expires_in"`
}

// EventType names a media lifecycle notification.
type EventType string

const (
	EventMediaUploaded EventType = "media.uploaded"
	EventMediaDeleted  EventType = "media.deleted"
)

// Event is the payload published to the event bus.
type Event struct {
	Type       EventType `json:"type"`
	MediaID    string    `json:"media_id"`
	PostID     string    `json:"post_id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	Owner      string    `json:"owner,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(eventType EventType, record *MediaRecord) Event {
	return Event{
		Type:       eventType,
		MediaID:    record.ID,
		PostID:     record.CorrelationKey,
		Filename:   record.StoredName,
		FileURL:    record.PublicURL,
		Owner:      record.Owner,
		OccurredAt: time.Now().UTC(),
	}
}

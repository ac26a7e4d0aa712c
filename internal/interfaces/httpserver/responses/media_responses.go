package responses

import (
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
)

// MessageResponse is returned by operations with no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// MediaListResponse wraps a list of records.
type MediaListResponse struct {
	Data  []*domain.MediaRecord `json:"data"`
	Total int                   `json:"total"`
}

// BuildMediaListResponse never returns a nil slice so clients always see an array.
func BuildMediaListResponse(records []*domain.MediaRecord) *MediaListResponse {
	if records == nil {
		records = []*domain.MediaRecord{}
	}
	return &MediaListResponse{Data: records, Total: len(records)}
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

package requests

// BatchRequest asks for the media of many posts at once. An empty list is valid.
type BatchRequest struct {
	PostIDs []string `json:"post_ids" validate:"required"`
}

// PresignRequest asks for time-limited URLs for the media of many posts.
type PresignRequest struct {
	PostIDs        []string `json:"post_ids" validate:"required"`
	ExpiresInHours int      `json:"expires_in_hours" validate:"gte=0"`
}

package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
)

// Publisher is an event sink with a lifecycle.
type Publisher interface {
	domain.EventPublisher
	Start(ctx context.Context)
	Stop()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
func (NoopPublisher) Start(context.Context) {}
func (NoopPublisher) Stop() {}

// NewFromConfig selects the event backend.
func NewFromConfig(cfg *config.Config, log zerolog.Logger) (Publisher, error) {
	if cfg.EventsBackend != config.EventsBackendRedis {
		return NoopPublisher{}, nil
	}
	return NewRedisPublisher(cfg.RedisURL, cfg.EventsChannel, cfg.EventsBuffer, log)
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/metrics"
)

// ErrQueueFull is returned when the publisher cannot accept more events.
var ErrQueueFull = errors.New("event queue is full")

// ErrPublisherStopped is returned after Stop has been called.
var ErrPublisherStopped = errors.New("event publisher is stopped")

const publishTimeout = 5 * time.Second

// publishClient is the part of the redis client the publisher needs.
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher delivers lifecycle events over Redis Pub/Sub from a background worker so
// request paths never wait on the bus.
type RedisPublisher struct {
	client    publishClient
	closer    func() error
	channel   string
	queue     chan domain.Event
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	stopped   bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRedisPublisher connects to the Redis URL (comma separated for cluster) and verifies the
// connection.
func NewRedisPublisher(redisURL, channel string, buffer int, log zerolog.Logger) (*RedisPublisher, error) {
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	p := newRedisPublisher(client, channel, buffer, log)
	p.closer = client.Close
	return p, nil
}

func newRedisPublisher(client publishClient, channel string, buffer int, log zerolog.Logger) *RedisPublisher {
	if buffer <= 0 {
		buffer = 1
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   make(chan domain.Event, buffer),
		log:     log.With().Str("component", "redis-event-publisher").Str("channel", channel).Logger(),
		done:    make(chan struct{}),
	}
}

// Publish enqueues the event without blocking.
func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPublisherStopped
	}
	select {
	case p.queue <- event:
		return nil
	default:
		metrics.RecordEvent(string(event.Type), ErrQueueFull)
		return ErrQueueFull
	}
}

// Start begins delivering queued events.
// Safe to call multiple times - only the first call starts the worker.
func (p *RedisPublisher) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.run(ctx)
		p.log.Info().Msg("event publisher started")
	})
}

// Stop rejects new events, drains the queue and closes the connection.
// Safe to call multiple times.
func (p *RedisPublisher) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		close(p.done)
		p.wg.Wait()
		if p.closer != nil {
			if err := p.closer(); err != nil {
				p.log.Warn().Err(err).Msg("close redis client")
			}
		}
		p.log.Info().Msg("event publisher stopped")
	})
}

func (p *RedisPublisher) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.queue:
			p.deliver(event)
		case <-p.done:
			p.drain()
			return
		case <-ctx.Done():
			p.drain()
			return
		}
	}
}

func (p *RedisPublisher) drain() {
	for {
		select {
		case event := <-p.queue:
			p.deliver(event)
		default:
			return
		}
	}
}

func (p *RedisPublisher) deliver(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.RecordEvent(string(event.Type), err)
		p.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	err = p.client.Publish(ctx, p.channel, payload).Err()
	metrics.RecordEvent(string(event.Type), err)
	if err != nil {
		p.log.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("media_id", event.MediaID).
			Msg("publish event")
		return
	}
	p.log.Debug().Str("event_type", string(event.Type)).Str("media_id", event.MediaID).Msg("event published")
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}
		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, errors.New("no redis address configured")
	}
	if len(opts.Addrs) > 1 {
		opts.DB = 0
	}
	return opts, nil
}

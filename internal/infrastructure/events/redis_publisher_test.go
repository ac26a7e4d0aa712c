package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
)

type fakeClient struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeClient) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.payloads...)
}

func testEvent(id string) domain.Event {
	return domain.Event{
		Type:       domain.EventMediaUploaded,
		MediaID:    id,
		PostID:     "post-1",
		Filename:   id + ".png",
		FileURL:    "http://objects.test/media/" + id + ".png",
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRedisPublisherDeliversAndDrainsOnStop(t *testing.T) {
	client := &fakeClient{}
	p := newRedisPublisher(client, "media.events", 8, zerolog.Nop())
	p.Start(context.Background())

	for _, id := range []string{"med_1", "med_2", "med_3"} {
		require.NoError(t, p.Publish(context.Background(), testEvent(id)))
	}
	p.Stop()

	payloads := client.received()
	require.Len(t, payloads, 3)
	assert.Equal(t, []string{"media.events", "media.events", "media.events"}, client.channels)

	var decoded domain.Event
	require.NoError(t, json.Unmarshal(payloads[0], &decoded))
	assert.Equal(t, domain.EventMediaUploaded, decoded.Type)
	assert.Equal(t, "med_1", decoded.MediaID)
	assert.Equal(t, "post-1", decoded.PostID)
}

func TestRedisPublisherRejectsWhenQueueFull(t *testing.T) {
	p := newRedisPublisher(&fakeClient{}, "media.events", 1, zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), testEvent("med_1")))
	err := p.Publish(context.Background(), testEvent("med_2"))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRedisPublisherRejectsAfterStop(t *testing.T) {
	p := newRedisPublisher(&fakeClient{}, "media.events", 4, zerolog.Nop())
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Publish(context.Background(), testEvent("med_1"))
	assert.ErrorIs(t, err, ErrPublisherStopped)
}

func TestRedisPublisherSurvivesDeliveryErrors(t *testing.T) {
	client := &fakeClient{err: errors.New("redis down")}
	p := newRedisPublisher(client, "media.events", 4, zerolog.Nop())
	p.Start(context.Background())

	require.NoError(t, p.Publish(context.Background(), testEvent("med_1")))
	p.Stop()
	assert.Empty(t, client.received())
}

func TestBuildUniversalOptions(t *testing.T) {
	opts, err := buildUniversalOptions("redis://:secret@cache:6379/2")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:6379"}, opts.Addrs)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildUniversalOptions("node-a:6379, node-b:6379")
	require.NoError(t, err)
	assert.Equal(t, []string{"node-a:6379", "node-b:6379"}, opts.Addrs)
	assert.Zero(t, opts.DB)

	_, err = buildUniversalOptions(" , ")
	assert.Error(t, err)
}

func TestNewFromConfigDefaultsToNoop(t *testing.T) {
	p, err := NewFromConfig(&config.Config{EventsBackend: config.EventsBackendNone}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), testEvent("med_1")))
}

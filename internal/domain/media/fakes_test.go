package media_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

// memoryRepository keeps records in memory and enforces post_id uniqueness like the
// unique index does when unique is set.
type memoryRepository struct {
	mu        sync.Mutex
	records   []*media.MediaRecord
	unique    bool
	createErr error
	deleteErr error
	findErr   error
	// createDelay widens the race window between the existence check and the insert.
	createDelay time.Duration
	onCreate    func()
	// block makes lookups hang until their context is done.
	block bool
}

func (r *memoryRepository) wait(ctx context.Context) error {
	if !r.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *memoryRepository) Create(ctx context.Context, record *media.MediaRecord) error {
	if r.onCreate != nil {
		r.onCreate()
	}
	if r.createDelay > 0 {
		time.Sleep(r.createDelay)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.unique {
		for _, existing := range r.records {
			if existing.CorrelationKey == record.CorrelationKey {
				return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
					"duplicate post_id", nil, "test-conflict")
			}
		}
	}
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id string) (*media.MediaRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) FindByCorrelationKey(ctx context.Context, key string) (*media.MediaRecord, error) {
	all, err := r.FindAllByCorrelationKey(ctx, key)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memoryRepository) FindAllByCorrelationKey(ctx context.Context, key string) ([]*media.MediaRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*media.MediaRecord
	for _, record := range r.records {
		if record.CorrelationKey == key {
			out = append(out, record)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) FindByCorrelationKeys(ctx context.Context, keys []string) ([]*media.MediaRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		wanted[key] = struct{}{}
	}
	out := []*media.MediaRecord{}
	for _, record := range r.records {
		if _, ok := wanted[record.CorrelationKey]; ok {
			out = append(out, record)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) FindByOwner(ctx context.Context, owner string) ([]*media.MediaRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*media.MediaRecord{}
	for _, record := range r.records {
		if record.Owner == owner {
			out = append(out, record)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]*media.MediaRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*media.MediaRecord(nil), r.records...)
	sortNewestFirst(out)
	if offset >= len(out) {
		return []*media.MediaRecord{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, ids ...string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}
	kept := r.records[:0]
	var affected int64
	for _, record := range r.records {
		if _, ok := remove[record.ID]; ok {
			affected++
			continue
		}
		kept = append(kept, record)
	}
	r.records = kept
	return affected, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func sortNewestFirst(records []*media.MediaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	putErr     error
	removeErr  error
	presignErr error
	removed    []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Put(ctx context.Context, key string, body io.Reader, size int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: got %d want %d", len(data), size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, key)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) EnsureBucket(context.Context) error { return nil }

func (s *memoryStore) PublicURL(key string) string {
	return "http://objects.test/media/" + key
}

func (s *memoryStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	return fmt.Sprintf("http://objects.test/media/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (s *memoryStore) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

func (s *memoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []media.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event media.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []media.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]media.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

// failingReader returns some bytes and then an error.
type failingReader struct {
	data []byte
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

var errBoom = errors.New("boom")

func body(s string) io.Reader {
	return bytes.NewBufferString(s)
}

// recordingMetrics counts orphan reports.
type recordingMetrics struct {
	mu      sync.Mutex
	orphans []string
}

func (m *recordingMetrics) OrphanObject(storedName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orphans = append(m.orphans, storedName)
}

func (m *recordingMetrics) orphaned() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.orphans...)
}

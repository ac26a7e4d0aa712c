package media

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

const (
	defaultPresignHours = 1
	presignConcurrency  = 8
	defaultListLimit    = 100
	maxListLimit        = 1000
)

// GetByCorrelationKey returns the record bound to a post. When a post owns several records
// the newest one is returned.
func (s *Service) GetByCorrelationKey(ctx context.Context, key string) (*MediaRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, validationError(ctx, "post_id is required", "4e8a0c2d-6f1b-4d3e-8a5c-7b9d1f3e5a82")
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	record, err := s.repo.FindByCorrelationKey(callCtx, key)
	if err != nil {
		return nil, persistenceError(ctx, "failed to load media", err, "6b0d2f4a-8c3e-4f5b-9d7a-1c3e5b7d9f28")
	}
	if record == nil {
		return nil, notFoundError(ctx, "media not found for this post_id", "a3c5e7f9-1b2d-4c6e-8f0a-9d1b3c5e7a64")
	}
	return record, nil
}

// GetByID returns a record by its primary id.
func (s *Service) GetByID(ctx context.Context, id string) (*MediaRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError(ctx, "id is required", "b7d9f1a3-5c2e-4e8a-9b4d-6f8a0c2e4b19")
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	record, err := s.repo.FindByID(callCtx, id)
	if err != nil {
		return nil, persistenceError(ctx, "failed to load media", err, "c9e1a3b5-7d4f-4a6c-8e0b-2d4f6a8c0e53")
	}
	if record == nil {
		return nil, notFoundError(ctx, "file not found", "d1f3b5c7-9e6a-4b8d-a2c4-5e7a9c1e3b86")
	}
	return record, nil
}

// GetBatch resolves many post ids with a single bulk query. NotFound keeps the order of the
// first occurrence of each missing key; Found ordering is whatever the store returns.
func (s *Service) GetBatch(ctx context.Context, keys []string) (*BatchResult, error) {
	unique := normalizeKeys(keys)
	if len(unique) > s.cfg.MaxBatchKeys {
		return nil, validationError(ctx, fmt.Sprintf("at most %d post_ids may be requested at once", s.cfg.MaxBatchKeys), "e3a5c7d9-1f8b-4c0e-b4d6-8a0c2e4f6d17")
	}

	result := &BatchResult{
		Found:          []*MediaRecord{},
		NotFound:       []string{},
		TotalRequested: len(unique),
	}
	if len(unique) == 0 {
		return result, nil
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	records, err := s.repo.FindByCorrelationKeys(callCtx, unique)
	if err != nil {
		return nil, persistenceError(ctx, "failed to load media batch", err, "f5c7e9a1-3b0d-4e2a-8c6f-0b2d4f6a8e49")
	}

	present := make(map[string]struct{}, len(records))
	for _, record := range records {
		present[record.CorrelationKey] = struct{}{}
	}
	for _, key := range unique {
		if _, ok := present[key]; !ok {
			result.NotFound = append(result.NotFound, key)
		}
	}

	result.Found = records
	result.TotalFound = len(records)
	return result, nil
}

// ListByOwner returns every record uploaded by the given principal.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]*MediaRecord, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"an authenticated owner is required", nil, "a7e9c1d3-5f2b-4a4c-9e8d-3c5e7a9b1d60")
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	records, err := s.repo.FindByOwner(callCtx, owner)
	if err != nil {
		return nil, persistenceError(ctx, "failed to list media", err, "b9a1e3f5-7c4d-4e6b-8a0f-5e7c9a1b3d92")
	}
	return records, nil
}

// List pages through all records, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*MediaRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	records, err := s.repo.List(callCtx, limit, offset)
	if err != nil {
		return nil, persistenceError(ctx, "failed to list media", err, "c1b3f5a7-9e6f-4a8d-b2c1-7a9e1c3d5f24")
	}
	return records, nil
}

// SupportsPresignedURLs reports whether the deployment hands out signed URLs.
func (s *Service) SupportsPresignedURLs() bool {
	return s.cfg.PresignedURLs()
}

// PresignURLs issues time-limited URLs for the media of the given posts. expiresInHours
// defaults to one hour and is capped by configuration.
func (s *Service) PresignURLs(ctx context.Context, keys []string, expiresInHours int) (*PresignResult, error) {
	if !s.SupportsPresignedURLs() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotImplemented,
			"presigned URLs are disabled; objects are served from public URLs", nil, "d3c5a7b9-1e8a-4c0f-8d4e-9c1a3e5f7b56")
	}
	if expiresInHours <= 0 {
		expiresInHours = defaultPresignHours
	}
	if expiresInHours > s.cfg.MaxPresignHours {
		return nil, validationError(ctx, fmt.Sprintf("expires_in_hours must be at most %d", s.cfg.MaxPresignHours), "e5e7c9d1-3a0c-4e2b-9f6a-1e3c5a7b9d88")
	}

	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	batch, err := s.GetBatch(callCtx, keys)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(expiresInHours) * time.Hour
	result := &PresignResult{
		URLs:      make([]PresignedURL, 0, len(batch.Found)),
		NotFound:  batch.NotFound,
		ExpiresIn: int(ttl.Seconds()),
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(callCtx)
	group.SetLimit(presignConcurrency)
	for _, record := range batch.Found {
		record := record
		group.Go(func() error {
			url, err := s.store.PresignGet(groupCtx, record.StoredName, ttl)
			if err != nil {
				return fmt.Errorf("presign %s: %w", record.StoredName, err)
			}
			mu.Lock()
			result.URLs = append(result.URLs, PresignedURL{
				PostID:    record.CorrelationKey,
				MediaID:   record.ID,
				URL:       url,
				ExpiresIn: result.ExpiresIn,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"failed to generate presigned URLs", err, "f7a9e1b3-5c2e-4a4d-8b8c-3a5e7c9d1f10")
	}
	return result, nil
}

// normalizeKeys trims keys, drops blanks and collapses duplicates, keeping first-seen order.
func normalizeKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

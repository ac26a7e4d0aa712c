package media

import (
	"context"
	"strings"

	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

// DeleteByCorrelationKey removes every record bound to the post together with its objects.
func (s *Service) DeleteByCorrelationKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return validationError(ctx, "post_id is required", "1a3c5e7f-9b2d-4f4a-8c6e-0d2f4a6c8e35")
	}
	lookupCtx, cancel := s.callContext(ctx)
	records, err := s.repo.FindAllByCorrelationKey(lookupCtx, key)
	cancel()
	if err != nil {
		return persistenceError(ctx, "failed to load media", err, "2b4d6f8a-0c3e-4a5b-9d7f-1e3a5c7e9b68")
	}
	if len(records) == 0 {
		return notFoundError(ctx, "media not found for this post_id", "3c5e7a9b-1d4f-4b6c-8e8a-2f4b6d8f0c91")
	}
	return s.deleteRecords(ctx, records)
}

// DeleteByID removes a single record and its object.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	record, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteRecords(ctx, []*MediaRecord{record})
}

// deleteRecords removes objects first and metadata second. The metadata row is the
// authoritative existence signal, so a failed object removal is logged and the row is
// deleted anyway; a failed row delete rolls back and is reported.
func (s *Service) deleteRecords(ctx context.Context, records []*MediaRecord) error {
	opCtx, cancel := s.operationContext(ctx)
	defer cancel()

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
		if err := s.store.Remove(opCtx, record.StoredName); err != nil {
			s.log.Warn().
				Err(err).
				Str("media_id", record.ID).
				Str("stored_name", record.StoredName).
				Bool("orphan_object", true).
				Msg("object removal failed; deleting metadata anyway")
		}
	}

	err := s.tx.WithinTransaction(opCtx, func(txCtx context.Context) error {
		affected, err := s.repo.Delete(txCtx, ids...)
		if err != nil {
			return err
		}
		if affected == 0 {
			return notFoundError(ctx, "media already deleted", "4d6f8a0b-2e5a-4c7d-9f9b-3a5c7e9a1d24")
		}
		return nil
	})
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return err
		}
		return persistenceError(ctx, "failed to delete media record", err, "5e7a9b1c-3f6b-4d8e-8a0c-4b6d8f0b2e57")
	}

	for _, record := range records {
		s.log.Info().Str("media_id", record.ID).Str("post_id", record.CorrelationKey).Msg("media deleted")
		s.publish(opCtx, newEvent(EventMediaDeleted, record))
	}
	return nil
}

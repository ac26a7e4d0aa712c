package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
	"github.com/Gustavo-Marin05/media-service/utils/mediaid"
)

var extensionPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Service orchestrates media upload, retrieval and deletion across the object store and
// the metadata store. It keeps no state of its own.
type Service struct {
	cfg     *config.Config
	repo    Repository
	tx      TxManager
	store   ObjectStore
	staging StagingArea
	events  EventPublisher
	metrics Recorder
	log     zerolog.Logger
}

func NewService(
	cfg *config.Config,
	repo Repository,
	tx TxManager,
	store ObjectStore,
	staging StagingArea,
	events EventPublisher,
	recorder Recorder,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		tx:      tx,
		store:   store,
		staging: staging,
		events:  events,
		metrics: recorder,
		log:     log.With().Str("component", "media-service").Logger(),
	}
}

// Upload stages the inbound file, writes it to the object store and then commits the
// metadata row. A failed commit removes the object again before the error is returned.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*MediaRecord, error) {
	callCtx, cancelCall := s.callContext(ctx)
	defer cancelCall()

	key := strings.TrimSpace(req.CorrelationKey)
	if key == "" {
		return nil, validationError(ctx, "post_id is required", "3f0c6a1e-52d4-4b8e-9d27-6c1a0e4b9f11")
	}
	if len(key) > MaxCorrelationKeyLength {
		return nil, validationError(ctx, fmt.Sprintf("post_id must be at most %d characters", MaxCorrelationKeyLength), "8a2d4c6e-1f3b-4d5a-9c7e-2b4d6f8a0c13")
	}
	owner := strings.TrimSpace(req.Owner)
	if len(owner) > MaxOwnerLength {
		return nil, validationError(ctx, fmt.Sprintf("owner must be at most %d characters", MaxOwnerLength), "6f2a8c4e-0b3d-4e7f-9a1c-8d5b3f7e1a29")
	}
	if req.Body == nil {
		return nil, validationError(ctx, "file is required", "c41e7b2a-9d3f-4e6c-8a1b-5f7d9e2c4a60")
	}

	if s.cfg.OneToOne() {
		existing, err := s.repo.FindByCorrelationKey(callCtx, key)
		if err != nil {
			return nil, persistenceError(ctx, "failed to check existing media", err, "d82b5f19-3c6e-4a7d-b1e9-0f2a4c6e8b35")
		}
		if existing != nil {
			return nil, conflictError(ctx, key)
		}
	}

	storedName := uuid.NewString() + "." + ExtensionFromFilename(req.FileNameHint)

	staged, err := s.staging.Stage(callCtx, req.Body, s.cfg.MaxMediaBytes)
	if err != nil {
		switch {
		case errors.Is(err, ErrPayloadTooLarge):
			return nil, validationError(ctx, fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxMediaBytes), "5b9e1d3f-7a2c-4f8e-a6d0-3c5e7a9b1d24")
		case errors.Is(err, ErrUploadUnreadable):
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"failed to read uploaded file", err, "e6a0c2d4-8b1f-4a3e-9c5d-7f1b3d5e9a02")
		default:
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
				"failed to stage uploaded file", err, "0c8e4a2f-6d1b-4f3a-b9e7-5a2c8e6f4d13")
		}
	}
	defer s.release(staged)

	if staged.Size() == 0 {
		return nil, validationError(ctx, "file is empty", "1d7f3b5a-2e9c-4c6d-8f0a-4b6d8e0f2a97")
	}

	// From here on the store/metadata sequence completes or unwinds even if the caller
	// goes away.
	opCtx, cancel := s.operationContext(ctx)
	defer cancel()

	if err := s.putObject(opCtx, storedName, staged); err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
			"object storage unavailable", err, "7c3e5a9d-4f1b-4e2a-b8c6-9d1f3a5c7e08",
			map[string]any{"post_id": key, "stored_name": storedName})
	}

	record := &MediaRecord{
		ID:             mediaid.New(),
		CorrelationKey: key,
		StoredName:     storedName,
		PublicURL:      s.store.PublicURL(storedName),
		ContentType:    staged.ContentType(),
		SizeBytes:      staged.Size(),
		Owner:          owner,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.tx.WithinTransaction(opCtx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, record)
	})
	if err != nil {
		s.removeOrphan(opCtx, storedName, err)
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			return nil, conflictError(ctx, key)
		}
		return nil, persistenceError(ctx, "failed to persist media record", err, "9e5a7c1b-6d3f-4b8e-a2c4-1e3a5c7d9f46")
	}

	s.log.Info().
		Str("media_id", record.ID).
		Str("post_id", record.CorrelationKey).
		Str("stored_name", record.StoredName).
		Int64("bytes", record.SizeBytes).
		Msg("media uploaded")

	s.publish(opCtx, newEvent(EventMediaUploaded, record))
	return record, nil
}

// UploadWithGeneratedKey serves clients that do not track posts: it assigns a fresh
// twelve character post_id before uploading.
func (s *Service) UploadWithGeneratedKey(ctx context.Context, req UploadRequest) (*MediaRecord, error) {
	req.CorrelationKey = uuid.NewString()[:12]
	return s.Upload(ctx, req)
}

// ExtensionFromFilename returns the lower-cased suffix after the last dot, or
// DefaultExtension when the name has none or the suffix is not plain alphanumerics.
func ExtensionFromFilename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return DefaultExtension
	}
	ext := strings.ToLower(base[idx+1:])
	if !extensionPattern.MatchString(ext) {
		return DefaultExtension
	}
	return ext
}

func (s *Service) putObject(ctx context.Context, key string, staged StagedObject) error {
	body, err := staged.Open()
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer body.Close()
	return s.store.Put(ctx, key, body, staged.Size(), staged.ContentType())
}

// removeOrphan is the compensating action after a failed metadata commit. A failure here
// leaves an object without a record, which must be visible in the logs.
func (s *Service) removeOrphan(ctx context.Context, storedName string, cause error) {
	if err := s.store.Remove(ctx, storedName); err != nil {
		if s.metrics != nil {
			s.metrics.OrphanObject(storedName)
		}
		s.log.Error().
			Err(err).
			AnErr("cause", cause).
			Str("stored_name", storedName).
			Bool("orphan_object", true).
			Msg("compensating object removal failed")
		return
	}
	s.log.Warn().
		AnErr("cause", cause).
		Str("stored_name", storedName).
		Msg("removed object after metadata commit failure")
}

func (s *Service) release(staged StagedObject) {
	if err := staged.Release(); err != nil {
		s.log.Error().Err(err).Msg("release staged upload")
	}
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("media_id", event.MediaID).
			Msg("event publish failed")
	}
}

// callContext bounds the calls made on behalf of a request, honouring an earlier caller
// deadline.
func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

// operationContext detaches from caller cancellation but keeps a deadline.
func (s *Service) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.OperationTimeout)
}

func validationError(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, message, nil, code)
}

func conflictError(ctx context.Context, key string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
		fmt.Sprintf("media already exists for post_id: %s", key), nil, "2a6c8e0f-5b7d-4f1a-9e3c-6d8f0a2c4e71",
		map[string]any{"post_id": key})
}

func notFoundError(ctx context.Context, message, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, message, nil, code)
}

func persistenceError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, message, err, code)
}

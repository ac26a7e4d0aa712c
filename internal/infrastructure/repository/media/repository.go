package media

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database/entities"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database/transaction"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

const newestFirst = "uploaded_at DESC, id DESC"

// Repository handles media metadata persistence.
type Repository struct {
	db *transaction.Database
}

func NewRepository(db *transaction.Database) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *domain.MediaRecord) error {
	entity := toEntity(record)
	err := r.db.GetTx(ctx).Create(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"media record violates a uniqueness constraint",
				err,
				"0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create media record",
			err,
			"9b2e4f5a-6c7d-4e8f-9a0b-1c2d3e4f5a6b",
		)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.MediaRecord, error) {
	var entity entities.MediaFile
	err := r.db.GetTx(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, findError(ctx, "failed to get media by id", err, "2d3e4f5a-6b7c-4d8e-9f0a-1b2c3d4e5f6a")
	}
	return mapEntity(entity), nil
}

// FindByCorrelationKey returns the newest record for the post.
func (r *Repository) FindByCorrelationKey(ctx context.Context, key string) (*domain.MediaRecord, error) {
	var entity entities.MediaFile
	err := r.db.GetTx(ctx).Where("post_id = ?", key).Order(newestFirst).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, findError(ctx, "failed to find media by post_id", err, "7a8f3d2e-4b1c-4a9e-8f7d-2c3e4f5a6b7c")
	}
	return mapEntity(entity), nil
}

func (r *Repository) FindAllByCorrelationKey(ctx context.Context, key string) ([]*domain.MediaRecord, error) {
	var rows []entities.MediaFile
	if err := r.db.GetTx(ctx).Where("post_id = ?", key).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, findError(ctx, "failed to list media by post_id", err, "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7")
	}
	return mapEntities(rows), nil
}

// FindByCorrelationKeys resolves all keys with one IN query.
func (r *Repository) FindByCorrelationKeys(ctx context.Context, keys []string) ([]*domain.MediaRecord, error) {
	if len(keys) == 0 {
		return []*domain.MediaRecord{}, nil
	}
	var rows []entities.MediaFile
	if err := r.db.GetTx(ctx).Where("post_id IN ?", keys).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, findError(ctx, "failed to find media batch", err, "4f5a6b7c-8d9e-4fa0-b1c2-d3e4f5a6b7c8")
	}
	return mapEntities(rows), nil
}

func (r *Repository) FindByOwner(ctx context.Context, owner string) ([]*domain.MediaRecord, error) {
	var rows []entities.MediaFile
	if err := r.db.GetTx(ctx).Where("owner = ?", owner).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, findError(ctx, "failed to list media by owner", err, "5a6b7c8d-9ea0-4fb1-82c3-e4f5a6b7c8d9")
	}
	return mapEntities(rows), nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*domain.MediaRecord, error) {
	var rows []entities.MediaFile
	if err := r.db.GetTx(ctx).Order(newestFirst).Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, findError(ctx, "failed to list media", err, "6b7c8d9e-a0b1-4c2d-93e4-f5a6b7c8d9e0")
	}
	return mapEntities(rows), nil
}

// Delete removes the given rows and reports how many existed.
func (r *Repository) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.GetTx(ctx).Where("id IN ?", ids).Delete(&entities.MediaFile{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete media records",
			result.Error,
			"7c8d9ea0-b1c2-4d3e-a4f5-a6b7c8d9e0f1",
		)
	}
	return result.RowsAffected, nil
}

func findError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}

func toEntity(record *domain.MediaRecord) entities.MediaFile {
	return entities.MediaFile{
		ID:          record.ID,
		PostID:      record.CorrelationKey,
		Filename:    record.StoredName,
		FileURL:     record.PublicURL,
		ContentType: record.ContentType,
		SizeBytes:   record.SizeBytes,
		Owner:       record.Owner,
		UploadedAt:  record.CreatedAt,
	}
}

func mapEntity(entity entities.MediaFile) *domain.MediaRecord {
	return &domain.MediaRecord{
		ID:             entity.ID,
		CorrelationKey: entity.PostID,
		StoredName:     entity.Filename,
		PublicURL:      entity.FileURL,
		ContentType:    entity.ContentType,
		SizeBytes:      entity.SizeBytes,
		Owner:          entity.Owner,
		CreatedAt:      entity.UploadedAt.UTC(),
	}
}

func mapEntities(rows []entities.MediaFile) []*domain.MediaRecord {
	out := make([]*domain.MediaRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapEntity(row))
	}
	return out
}

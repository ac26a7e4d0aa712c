package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database/entities"
)

// CorrelationIndex is the unique index that enforces one media record per post.
const CorrelationIndex = "ux_media_files_post_id"

// EnforceCorrelationPolicy makes the metadata store arbitrate the post to media relation.
// one_to_one adds a unique index on post_id so concurrent uploads for the same post cannot
// both commit; one_to_many drops it.
func EnforceCorrelationPolicy(db *gorm.DB, policy string, log zerolog.Logger) error {
	migrator := db.Migrator()
	exists := migrator.HasIndex(&entities.MediaFile{}, CorrelationIndex)

	switch policy {
	case config.CorrelationOneToOne:
		if !exists {
			stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON media_files (post_id)", CorrelationIndex)
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("enforce correlation policy %s: %w", policy, err)
			}
		}
	case config.CorrelationOneToMany:
		if exists {
			if err := migrator.DropIndex(&entities.MediaFile{}, CorrelationIndex); err != nil {
				return fmt.Errorf("enforce correlation policy %s: %w", policy, err)
			}
		}
	default:
		return fmt.Errorf("unsupported correlation policy %q", policy)
	}
	log.Info().Str("policy", policy).Msg("correlation policy enforced")
	return nil
}

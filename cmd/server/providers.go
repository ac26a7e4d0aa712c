package main

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/events"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/observability"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/staging"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/storage"
	gqlapi "github.com/Gustavo-Marin05/media-service/internal/interfaces/graphql"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver"
)

func provideTelemetry(ctx context.Context, cfg *config.Config, log zerolog.Logger) (observability.Shutdown, error) {
	return observability.Setup(ctx, cfg, log)
}

func provideGormDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewFromConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Store, error) {
	return storage.NewFromConfig(ctx, cfg, log)
}

func provideStagingArea(cfg *config.Config, log zerolog.Logger) (*staging.Area, error) {
	return staging.NewAreaFromConfig(cfg, log)
}

func providePublisher(cfg *config.Config, log zerolog.Logger) (events.Publisher, error) {
	return events.NewFromConfig(cfg, log)
}

func provideGraphQLHandler(service *domain.Service, log zerolog.Logger) (*gqlapi.Handler, error) {
	return gqlapi.NewHandler(service, log)
}

func provideProbes(db *gorm.DB, store storage.Store) []httpserver.Probe {
	return []httpserver.Probe{
		{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{Name: "object_store", Check: store.Health},
	}
}

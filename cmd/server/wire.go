//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/auth"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/database/transaction"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/events"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/logger"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/metrics"
	repo "github.com/Gustavo-Marin05/media-service/internal/infrastructure/repository/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/staging"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/storage"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver"
)

var infrastructureSet = wire.NewSet(
	provideTelemetry,
	provideGormDB,
	transaction.NewDatabase,
	provideStore,
	provideStagingArea,
	staging.NewJanitor,
	providePublisher,
	auth.NewValidator,
)

var mediaSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	wire.Bind(new(domain.TxManager), new(*transaction.Database)),
	wire.Bind(new(domain.ObjectStore), new(storage.Store)),
	wire.Bind(new(domain.StagingArea), new(*staging.Area)),
	wire.Bind(new(domain.EventPublisher), new(events.Publisher)),
	wire.Struct(new(metrics.Recorder)),
	wire.Bind(new(domain.Recorder), new(metrics.Recorder)),
	domain.NewService,
)

// BuildApplication assembles the media service with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		infrastructureSet,
		mediaSet,
		provideGraphQLHandler,
		provideProbes,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}

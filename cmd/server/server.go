package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/events"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/observability"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/staging"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver"
)

// @title Media Service
// @version 1.0
// @description Stores media files for posts in object storage and tracks them in PostgreSQL.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	cfg               *config.Config
	httpServer        *httpserver.HttpServer
	publisher         events.Publisher
	janitor           *staging.Janitor
	shutdownTelemetry observability.Shutdown
	log               zerolog.Logger
}

func NewApplication(
	cfg *config.Config,
	httpServer *httpserver.HttpServer,
	publisher events.Publisher,
	janitor *staging.Janitor,
	shutdownTelemetry observability.Shutdown,
	log zerolog.Logger,
) *Application {
	return &Application{
		cfg:               cfg,
		httpServer:        httpServer,
		publisher:         publisher,
		janitor:           janitor,
		shutdownTelemetry: shutdownTelemetry,
		log:               log,
	}
}

// Start runs background workers and blocks serving HTTP until ctx is cancelled. Workers
// and telemetry are stopped after the listener has drained.
func (a *Application) Start(ctx context.Context) error {
	a.publisher.Start(ctx)
	a.janitor.Start(ctx)
	defer func() {
		a.janitor.Stop()
		a.publisher.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.shutdownTelemetry(shutdownCtx); err != nil {
			a.log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := BuildApplication(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build application: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(ctx); err != nil {
		app.log.Error().Err(err).Msg("application stopped with error")
		cleanup()
		os.Exit(1)
	}

	app.log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

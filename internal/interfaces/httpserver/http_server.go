package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	mediadocs "github.com/Gustavo-Marin05/media-service/docs/swagger"
	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/auth"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/storage"
	gqlapi "github.com/Gustavo-Marin05/media-service/internal/interfaces/graphql"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/handlers"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/middlewares"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/responses"
	v1 "github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/routes/v1"
)

const readinessTimeout = 3 * time.Second

// Probe is one readiness dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(
	cfg *config.Config,
	log zerolog.Logger,
	mediaService *domain.Service,
	authValidator *auth.Validator,
	graphqlHandler *gqlapi.Handler,
	store storage.Store,
	probes []Probe,
) *HttpServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	mediadocs.SwaggerInfo.BasePath = "/"

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		middlewares.TracingMiddleware(cfg.ServiceName),
		middlewares.LoggingMiddleware(log),
		middlewares.MetricsMiddleware(),
		middlewares.CORSMiddleware(cfg.CORSAllowedOrigins),
	)
	engine.MaxMultipartMemory = 8 << 20

	registerCoreRoutes(engine, cfg, probes)

	if local, ok := store.(*storage.LocalStorage); ok {
		engine.Static("/files", local.Root())
	}

	api := engine.Group("/")
	if authValidator != nil {
		api.Use(authValidator.Middleware())
	}
	handlerProvider := handlers.NewProvider(cfg, mediaService, log)
	v1.NewRoutes(handlerProvider, cfg).Register(api)
	if graphqlHandler != nil {
		api.GET("/graphql", graphqlHandler.Serve)
		api.POST("/graphql", graphqlHandler.Serve)
	}

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}
}

// Handler exposes the engine for in-process tests.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// newServer bounds every phase of a connection, including the multipart body read.
func (s *HttpServer) newServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.HTTPReadTimeout,
		WriteTimeout:      s.cfg.HTTPWriteTimeout,
		IdleTimeout:       s.cfg.HTTPIdleTimeout,
	}
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := s.newServer()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("media service HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, cfg *config.Config, probes []Probe) {
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.HealthResponse{Status: "ok", Service: cfg.ServiceName})
	}
	engine.GET("/", health)
	engine.GET("/health", health)
	engine.GET("/api/health", health)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, probe := range probes {
			if err := probe.Check(ctx); err != nil {
				checks[probe.Name] = err.Error()
				ready = false
				continue
			}
			checks[probe.Name] = "ok"
		}
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

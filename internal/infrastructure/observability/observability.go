package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/metrics"
)

const metricExportInterval = 30 * time.Second

// Shutdown is a function that releases telemetry resources.
type Shutdown func(ctx context.Context) error

// collector is where spans and measurements go: an OTLP/HTTP endpoint, or nowhere.
type collector struct {
	endpoint string
	insecure bool
}

func (c collector) enabled() bool {
	return c.endpoint != ""
}

func collectorFromConfig(cfg *config.Config) collector {
	if !cfg.EnableTracing || strings.TrimSpace(cfg.OTLPEndpoint) == "" {
		return collector{}
	}
	endpoint, insecure := normalizeEndpoint(strings.TrimSpace(cfg.OTLPEndpoint))
	return collector{endpoint: endpoint, insecure: insecure}
}

// Setup installs the global tracer and meter providers and registers the media
// instruments on the meter. Without a collector both providers stay process local.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Shutdown, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	target := collectorFromConfig(cfg)

	tracerProvider, err := newTracerProvider(ctx, target, res)
	if err != nil {
		return nil, err
	}
	meterProvider, err := newMeterProvider(ctx, target, res)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := metrics.UseMeter(meterProvider.Meter(metrics.InstrumentationName)); err != nil {
		return nil, fmt.Errorf("register media instruments: %w", err)
	}

	if target.enabled() {
		log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("OTLP trace and metric export enabled")
	} else {
		log.Info().Msg("OTLP export disabled")
	}

	return func(ctx context.Context) error {
		return errors.Join(
			logShutdown(log, "meter provider", meterProvider.Shutdown(ctx)),
			logShutdown(log, "tracer provider", tracerProvider.Shutdown(ctx)),
		)
	}, nil
}

func newTracerProvider(ctx context.Context, target collector, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if !target.enabled() {
		return sdktrace.NewTracerProvider(sdktrace.WithResource(res)), nil
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.endpoint)}
	if target.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	), nil
}

func newMeterProvider(ctx context.Context, target collector, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	if !target.enabled() {
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(target.endpoint)}
	if target.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricExportInterval))),
	), nil
}

func logShutdown(log zerolog.Logger, name string, err error) error {
	if err != nil {
		log.Error().Err(err).Str("provider", name).Msg("telemetry shutdown failed")
	}
	return err
}

// normalizeEndpoint strips the scheme the OTLP/HTTP exporters do not accept and reports
// whether plain HTTP should be used.
func normalizeEndpoint(raw string) (string, bool) {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimPrefix(raw, "https://"), false
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimPrefix(raw, "http://"), true
	default:
		return raw, true
	}
}

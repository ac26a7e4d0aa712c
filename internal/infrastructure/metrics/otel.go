package metrics

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName identifies the meter used for OTLP export.
const InstrumentationName = "github.com/Gustavo-Marin05/media-service"

// instruments mirror the prometheus vectors that matter outside the process.
type instruments struct {
	uploads         metric.Int64Counter
	uploadBytes     metric.Int64Counter
	storageOps      metric.Int64Counter
	storageDuration metric.Float64Histogram
	orphanObjects   metric.Int64Counter
}

var active atomic.Pointer[instruments]

// UseMeter registers OTLP instruments on meter. Measurements recorded afterwards are
// reported to both prometheus and the meter provider.
func UseMeter(meter metric.Meter) error {
	uploads, err := meter.Int64Counter(
		"media.uploads",
		metric.WithDescription("Total file uploads"),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return err
	}

	uploadBytes, err := meter.Int64Counter(
		"media.upload.bytes",
		metric.WithDescription("Total bytes uploaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	storageOps, err := meter.Int64Counter(
		"media.storage.operations",
		metric.WithDescription("Total object store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	storageDuration, err := meter.Float64Histogram(
		"media.storage.duration",
		metric.WithDescription("Object store operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	orphanObjects, err := meter.Int64Counter(
		"media.orphan_objects",
		metric.WithDescription("Objects that could not be removed after a metadata failure"),
		metric.WithUnit("{object}"),
	)
	if err != nil {
		return err
	}

	active.Store(&instruments{
		uploads:         uploads,
		uploadBytes:     uploadBytes,
		storageOps:      storageOps,
		storageDuration: storageDuration,
		orphanObjects:   orphanObjects,
	})
	return nil
}

func exportUpload(contentType, status string, bytes int64) {
	inst := active.Load()
	if inst == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.String("status", status),
	)
	inst.uploads.Add(ctx, 1, attrs)
	if status == "success" {
		inst.uploadBytes.Add(ctx, bytes, metric.WithAttributes(attribute.String("content_type", contentType)))
	}
}

func exportStorageOperation(backend, operation, status string, durationSec float64) {
	inst := active.Load()
	if inst == nil {
		return
	}
	ctx := context.Background()
	inst.storageOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	inst.storageDuration.Record(ctx, durationSec, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	))
}

func exportOrphanObject() {
	inst := active.Load()
	if inst == nil {
		return
	}
	inst.orphanObjects.Add(context.Background(), 1)
}

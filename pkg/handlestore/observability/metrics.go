package observability

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records handle store metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordInsert records an insertion attempt. attempts is the number of
	// candidate handles generated; err is non-nil when no handle was found.
	RecordInsert(ctx context.Context, storeID string, attempts int, err error)

	// RecordFallbackInsert records a lookup that inserted a default value.
	RecordFallbackInsert(ctx context.Context, storeID string)

	// RecordKeyedInsert records a value built and stored under a handle the
	// caller chose.
	RecordKeyedInsert(ctx context.Context, storeID string)

	// RecordSnapshot records a snapshot save or restore.
	RecordSnapshot(ctx context.Context, storeID, op string, entries int, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	inserts       metric.Int64Counter
	collisions    metric.Int64Counter
	exhausted     metric.Int64Counter
	attempts      metric.Int64Histogram
	fallbacks     metric.Int64Counter
	keyed         metric.Int64Counter
	snapshots     metric.Int64Counter
	snapshotBytes metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("handlestore")

	inserts, err := meter.Int64Counter("handlestore.inserts",
		metric.WithDescription("Number of successful insertions"),
	)
	if err != nil {
		return nil, err
	}

	collisions, err := meter.Int64Counter("handlestore.collisions",
		metric.WithDescription("Number of generated handles rejected as duplicates"),
	)
	if err != nil {
		return nil, err
	}

	exhausted, err := meter.Int64Counter("handlestore.exhausted",
		metric.WithDescription("Number of insertions that found no free handle"),
	)
	if err != nil {
		return nil, err
	}

	attempts, err := meter.Int64Histogram("handlestore.insert.attempts",
		metric.WithDescription("Candidate handles generated per insertion"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter("handlestore.fallback_inserts",
		metric.WithDescription("Number of lookups that inserted a default value"),
	)
	if err != nil {
		return nil, err
	}

	keyed, err := meter.Int64Counter("handlestore.keyed_inserts",
		metric.WithDescription("Number of values created under caller-chosen handles"),
	)
	if err != nil {
		return nil, err
	}

	snapshots, err := meter.Int64Counter("handlestore.snapshots",
		metric.WithDescription("Number of snapshot operations"),
	)
	if err != nil {
		return nil, err
	}

	snapshotBytes, err := meter.Int64Histogram("handlestore.snapshot.size_bytes",
		metric.WithDescription("Encoded snapshot size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		inserts:       inserts,
		collisions:    collisions,
		exhausted:     exhausted,
		attempts:      attempts,
		fallbacks:     fallbacks,
		keyed:         keyed,
		snapshots:     snapshots,
		snapshotBytes: snapshotBytes,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordInsert records an insertion attempt.
func (m *otelMetrics) RecordInsert(ctx context.Context, storeID string, attempts int, err error) {
	attrs := metric.WithAttributes(attribute.String("store_id", storeID))

	m.attempts.Record(ctx, int64(attempts), attrs)
	if err != nil {
		m.exhausted.Add(ctx, 1, attrs)
		m.collisions.Add(ctx, int64(attempts), attrs)
		return
	}
	m.inserts.Add(ctx, 1, attrs)
	if attempts > 1 {
		m.collisions.Add(ctx, int64(attempts-1), attrs)
	}
}

// RecordFallbackInsert records a fallback insertion.
func (m *otelMetrics) RecordFallbackInsert(ctx context.Context, storeID string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("store_id", storeID)))
}

// RecordKeyedInsert records a keyed insertion.
func (m *otelMetrics) RecordKeyedInsert(ctx context.Context, storeID string) {
	m.keyed.Add(ctx, 1, metric.WithAttributes(attribute.String("store_id", storeID)))
}

// RecordSnapshot records a snapshot operation.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, storeID, op string, entries int, sizeBytes int64) {
	attrs := metric.WithAttributes(
		attribute.String("store_id", storeID),
		attribute.String("operation", op),
		attribute.Int("entries", entries),
	)
	m.snapshots.Add(ctx, 1, attrs)
	m.snapshotBytes.Record(ctx, sizeBytes, attrs)
}

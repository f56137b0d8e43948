// Package observability provides logging, metrics and tracing hooks for
// handle stores.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds store context to a logger.
// Returns a new logger with store_id and hash_length fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "sessions", 10)
//	enriched.Info("ready") // includes store_id, hash_length
func EnrichLogger(logger *slog.Logger, storeID string, hashLength int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("store_id", storeID),
		slog.Int("hash_length", hashLength),
	)
}

// LogInsert logs a successful insertion.
func LogInsert(logger *slog.Logger, handle string, attempts int) {
	if logger == nil {
		return
	}
	logger.Debug("resource stored",
		slog.String("handle", handle),
		slog.Int("attempts", attempts),
	)
}

// LogCollision logs a generated handle that was already taken.
func LogCollision(logger *slog.Logger, handle string, attempt int) {
	if logger == nil {
		return
	}
	logger.Debug("handle collision",
		slog.String("handle", handle),
		slog.Int("attempt", attempt),
	)
}

// LogExhausted logs a failed insertion after the retry bound was hit.
func LogExhausted(logger *slog.Logger, attempts, live int, err error) {
	if logger == nil {
		return
	}
	logger.Error("handle space exhausted",
		slog.Int("attempts", attempts),
		slog.Int("live", live),
		slog.String("error", err.Error()),
	)
}

// LogFallbackInsert logs a lookup that created a default entry.
func LogFallbackInsert(logger *slog.Logger, handle string) {
	if logger == nil {
		return
	}
	logger.Debug("lookup inserted default resource",
		slog.String("handle", handle),
	)
}

// LogKeyedInsert logs a value created under a caller-chosen handle.
func LogKeyedInsert(logger *slog.Logger, handle string) {
	if logger == nil {
		return
	}
	logger.Debug("resource created under caller handle",
		slog.String("handle", handle),
	)
}

// LogSnapshotSaved logs a completed snapshot.
func LogSnapshotSaved(logger *slog.Logger, entries int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("snapshot saved",
		slog.Int("entries", entries),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSnapshotRestored logs a store rebuilt from a snapshot.
func LogSnapshotRestored(logger *slog.Logger, entries int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("snapshot restored",
		slog.Int("entries", entries),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSnapshotError logs a snapshot failure.
func LogSnapshotError(logger *slog.Logger, op string, handle string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot failed",
		slog.String("operation", op),
		slog.String("handle", handle),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}

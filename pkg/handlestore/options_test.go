package handlestore

import (
	"log/slog"
	"testing"

	"github.com/randalmurphal/handlestore/pkg/handlestore/handle"
	"github.com/randalmurphal/handlestore/pkg/handlestore/observability"
	"github.com/stretchr/testify/assert"
)

func TestDefaultStoreConfig(t *testing.T) {
	cfg := defaultStoreConfig()

	assert.Equal(t, DefaultHashLength, cfg.hashLength)
	assert.Equal(t, DefaultMaxAttempts, cfg.maxAttempts)
	assert.Nil(t, cfg.src)
	assert.Empty(t, cfg.id)
}

func TestNewStoreConfig_FillsServices(t *testing.T) {
	cfg := newStoreConfig()

	assert.NotNil(t, cfg.src)
	assert.NotEmpty(t, cfg.id)
	assert.Same(t, slog.Default(), cfg.logger)
	assert.Equal(t, observability.NoopMetrics{}, cfg.metrics)
	assert.Equal(t, observability.NoopSpanManager{}, cfg.spans)
}

func TestWithHashLength(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"zero", 0, 0},
		{"short", 2, 2},
		{"long", 32, 32},
		{"negative ignored", -1, DefaultHashLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultStoreConfig()
			WithHashLength(tt.value)(&cfg)
			assert.Equal(t, tt.want, cfg.hashLength)
		})
	}
}

func TestWithMaxAttempts(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"one", 1, 1},
		{"large", 10_000, 10_000},
		{"zero ignored", 0, DefaultMaxAttempts},
		{"negative ignored", -5, DefaultMaxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultStoreConfig()
			WithMaxAttempts(tt.value)(&cfg)
			assert.Equal(t, tt.want, cfg.maxAttempts)
		})
	}
}

func TestWithSeed(t *testing.T) {
	a := defaultStoreConfig()
	WithSeed(9)(&a)
	b := defaultStoreConfig()
	WithSeed(9)(&b)

	assert.Equal(t, handle.Generate(a.src, 10), handle.Generate(b.src, 10))
}

func TestWithSource(t *testing.T) {
	src := handle.NewSource(3)

	cfg := defaultStoreConfig()
	WithSource(src)(&cfg)
	assert.Same(t, src, cfg.src)

	WithSource(nil)(&cfg)
	assert.Same(t, src, cfg.src)
}

func TestWithID(t *testing.T) {
	cfg := defaultStoreConfig()
	WithID("sessions")(&cfg)
	assert.Equal(t, "sessions", cfg.id)

	WithID("")(&cfg)
	assert.Equal(t, "sessions", cfg.id)
}

func TestWithServices_IgnoreNil(t *testing.T) {
	logger := discardLogger()
	cfg := defaultStoreConfig()

	WithLogger(logger)(&cfg)
	WithLogger(nil)(&cfg)
	assert.Same(t, logger, cfg.logger)

	WithMetrics(observability.NoopMetrics{})(&cfg)
	WithMetrics(nil)(&cfg)
	assert.Equal(t, observability.NoopMetrics{}, cfg.metrics)

	WithSpanManager(observability.NoopSpanManager{})(&cfg)
	WithSpanManager(nil)(&cfg)
	assert.Equal(t, observability.NoopSpanManager{}, cfg.spans)
}

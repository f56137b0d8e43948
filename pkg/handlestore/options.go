package handlestore

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/randalmurphal/handlestore/pkg/handlestore/handle"
	"github.com/randalmurphal/handlestore/pkg/handlestore/observability"
)

const (
	// DefaultHashLength is the handle length used when none is configured.
	DefaultHashLength = 10

	// DefaultMaxAttempts bounds candidate generation per insertion.
	DefaultMaxAttempts = 64
)

// storeConfig holds construction settings for a Manager.
type storeConfig struct {
	hashLength  int
	maxAttempts int
	src         handle.Source
	id          string
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
}

func defaultStoreConfig() storeConfig {
	return storeConfig{
		hashLength:  DefaultHashLength,
		maxAttempts: DefaultMaxAttempts,
	}
}

// newStoreConfig applies opts over the defaults and fills in the
// remaining services.
func newStoreConfig(opts ...Option) storeConfig {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.src == nil {
		cfg.src = handle.NewRandomSource()
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.metrics == nil {
		cfg.metrics = observability.NoopMetrics{}
	}
	if cfg.spans == nil {
		cfg.spans = observability.NoopSpanManager{}
	}
	return cfg
}

// Option configures a Manager at construction.
type Option func(*storeConfig)

// WithHashLength sets the length of every generated handle.
// Default: 10
//
// Zero is accepted: the only handle of length zero is "", so a second
// insertion fails with ErrHandleSpaceExhausted. Negative values are ignored.
func WithHashLength(n int) Option {
	return func(c *storeConfig) {
		if n >= 0 {
			c.hashLength = n
		}
	}
}

// WithMaxAttempts sets how many candidate handles an insertion may generate
// before giving up with ErrHandleSpaceExhausted.
// Default: 64. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithSeed makes handle generation deterministic.
//
// Example:
//
//	a := handlestore.New[int](handlestore.WithSeed(7))
//	b := handlestore.New[int](handlestore.WithSeed(7))
//	// a and b hand out the same handle sequence
func WithSeed(seed uint64) Option {
	return func(c *storeConfig) {
		c.src = handle.NewSource(seed)
	}
}

// WithSource sets the random source used for handle generation.
// The Manager takes ownership of src; do not share it between stores
// used from different goroutines.
func WithSource(src handle.Source) Option {
	return func(c *storeConfig) {
		if src != nil {
			c.src = src
		}
	}
}

// WithID sets the store identifier reported in logs, metrics and snapshots.
// Default: a random UUID.
func WithID(id string) Option {
	return func(c *storeConfig) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: observability.NoopMetrics{}.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *storeConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the tracing span manager used by snapshot operations.
// Default: observability.NoopSpanManager{}.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *storeConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

package handlestore

import (
	"github.com/randalmurphal/handlestore/pkg/handlestore/config"
)

// ConfigOptions translates recognised keys of cfg into Options.
// Keys that are absent leave the corresponding default in place.
//
//	hash_length   WithHashLength
//	max_attempts  WithMaxAttempts
//	seed          WithSeed
//	id            WithID
func ConfigOptions(cfg config.Config) []Option {
	var opts []Option
	if cfg.Has("hash_length") {
		opts = append(opts, WithHashLength(cfg.Int("hash_length", DefaultHashLength)))
	}
	if cfg.Has("max_attempts") {
		opts = append(opts, WithMaxAttempts(cfg.Int("max_attempts", DefaultMaxAttempts)))
	}
	if cfg.Has("seed") {
		opts = append(opts, WithSeed(cfg.Uint64("seed", 0)))
	}
	if cfg.Has("id") {
		opts = append(opts, WithID(cfg.String("id", "")))
	}
	return opts
}

// NewFromConfig creates a Manager from configuration. Explicit opts are
// applied after the configured values and take precedence.
//
// Example:
//
//	cfg, err := config.FromFile("store.yaml")
//	if err != nil {
//	    return err
//	}
//	m := handlestore.NewFromConfig[Session](cfg, handlestore.WithLogger(logger))
func NewFromConfig[T any](cfg config.Config, opts ...Option) *Manager[T] {
	return New[T](append(ConfigOptions(cfg), opts...)...)
}

package snapshot

import (
	"fmt"

	"github.com/randalmurphal/handlestore/pkg/handlestore/config"
)

// Open builds a Store from a config section, typically cfg.Sub("snapshot"):
//
//	backend       string    "memory" (default) or "sqlite"
//	path          string    database file for sqlite (default ":memory:")
//	wal           bool      write-ahead logging for sqlite (default true)
//	busy_timeout  duration  sqlite lock wait, e.g. "2s" (default: driver's)
func Open(cfg config.Config) (Store, error) {
	switch backend := cfg.String("backend", "memory"); backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.String("path", ":memory:"),
			WithWAL(cfg.Bool("wal", true)),
			WithBusyTimeout(cfg.Duration("busy_timeout", 0)),
		)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}

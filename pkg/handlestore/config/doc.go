/*
Package config provides typed access to handle store settings held in a
map[string]any, usually decoded from a YAML or JSON file.

# Overview

Accessors never fail: a missing key or a value of the wrong type yields the
supplied default. This keeps call sites short when reading optional settings:

	cfg := config.New(map[string]any{
	    "hash_length":  12,
	    "max_attempts": 128,
	    "seed":         42,
	})

	length := cfg.Int("hash_length", 10)     // 12
	seed := cfg.Uint64("seed", 0)            // 42
	id := cfg.String("id", "")               // ""

# Recognised Keys

handlestore.NewFromConfig reads:

	hash_length   int     handle length (default 10)
	max_attempts  int     candidate handles tried per insertion (default 64)
	seed          uint64  deterministic generator seed (random when absent)
	id            string  store identifier (uuid when absent)

snapshot.Open reads a nested section, usually cfg.Sub("snapshot"):

	backend       string    "memory" or "sqlite"
	path          string    sqlite database file
	wal           bool      sqlite write-ahead logging
	busy_timeout  duration  sqlite lock wait ("2s" or seconds)

# File Loading

	cfg, err := config.FromFile("store.yaml")
	if err != nil {
	    log.Fatal(err)
	}

FromYAML and FromJSON parse in-memory bytes.

# Thread Safety

Config is read-only after creation and safe for concurrent reads.
*/
package config

package config

import (
	"math"
	"time"
)

// Config is a read-only view over decoded settings. Accessors take a
// default that is returned when the key is absent or its value has an
// unusable type, so reading optional settings never fails.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map behaves like an empty one.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// lookup converts the value under key with conv, falling back to def.
func lookup[V any](c Config, key string, def V, conv func(any) (V, bool)) V {
	raw, ok := c.data[key]
	if !ok {
		return def
	}
	if v, ok := conv(raw); ok {
		return v
	}
	return def
}

func asIs[V any](raw any) (V, bool) {
	v, ok := raw.(V)
	return v, ok
}

// String returns the string under key.
func (c Config) String(key, def string) string {
	return lookup(c, key, def, asIs[string])
}

// Bool returns the bool under key.
func (c Config) Bool(key string, def bool) bool {
	return lookup(c, key, def, asIs[bool])
}

// Int returns the integer under key. int, int64 and uint64 values are
// accepted when they fit; float64 only when it is a whole number, which
// covers JSON input.
func (c Config) Int(key string, def int) int {
	return lookup(c, key, def, toInt)
}

func toInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), n >= math.MinInt && n <= math.MaxInt
	case uint64:
		return int(n), n <= math.MaxInt
	case float64:
		return int(n), n == math.Trunc(n) && n >= math.MinInt && n <= math.MaxInt
	}
	return 0, false
}

// Uint64 returns the unsigned integer under key. Negative and fractional
// numbers fall back to def. Seeds are read through this accessor.
func (c Config) Uint64(key string, def uint64) uint64 {
	return lookup(c, key, def, toUint64)
}

func toUint64(raw any) (uint64, bool) {
	switch n := raw.(type) {
	case uint64:
		return n, true
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case float64:
		return uint64(n), n >= 0 && n == math.Trunc(n) && n < math.MaxUint64
	}
	return 0, false
}

// Duration returns the duration under key. Strings go through
// time.ParseDuration; bare numbers are seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	return lookup(c, key, def, toDuration)
}

func toDuration(raw any) (time.Duration, bool) {
	switch d := raw.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		return parsed, err == nil
	case int:
		return time.Duration(d) * time.Second, true
	case int64:
		return time.Duration(d) * time.Second, true
	case float64:
		return time.Duration(d * float64(time.Second)), true
	}
	return 0, false
}

// Sub returns the nested section under key, or an empty Config.
func (c Config) Sub(key string) Config {
	m, _ := c.data[key].(map[string]any)
	return New(m)
}

// Has reports whether key is set, whatever its type.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

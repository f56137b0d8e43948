package handlestore

import (
	"io"
	"log/slog"
)

// Resource types used across tests

// Widget has a zero-value default and several constructors.
type Widget struct {
	Count   uint
	Ratio   float32
	Enabled bool
}

func newWidgetCount(count uint) Widget {
	return Widget{Count: count}
}

func newWidgetCountRatio(count uint, ratio float32) Widget {
	return Widget{Count: count, Ratio: ratio}
}

func newWidgetFull(count uint, ratio float32, enabled bool) Widget {
	return Widget{Count: count, Ratio: ratio, Enabled: enabled}
}

// newWidgetFlagFirst takes the flag before the ratio.
func newWidgetFlagFirst(count uint, enabled bool, ratio float32) Widget {
	return Widget{Count: count, Ratio: ratio, Enabled: enabled}
}

// Point is set from a single argument.
type Point struct {
	X int
}

func newPoint(x int) Point {
	return Point{X: x}
}

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager creates a seeded, silent manager.
func newTestManager[T any](opts ...Option) *Manager[T] {
	base := []Option{WithSeed(1), WithLogger(discardLogger())}
	return New[T](append(base, opts...)...)
}

// fixedSource replays a fixed index sequence, cycling when exhausted.
type fixedSource struct {
	next []int
	pos  int
}

func (s *fixedSource) IntN(n int) int {
	v := s.next[s.pos%len(s.next)] % n
	s.pos++
	return v
}

package handlestore

import (
	"context"
	"iter"
	"log/slog"

	"github.com/randalmurphal/handlestore/pkg/handlestore/handle"
	"github.com/randalmurphal/handlestore/pkg/handlestore/observability"
)

// Handle is the opaque key a Manager returns for a stored resource.
type Handle string

// String returns the handle text.
func (h Handle) String() string {
	return string(h)
}

// Manager owns resources of type T and indexes them by randomly generated
// handles.
//
// Manager is NOT safe for concurrent use. Callers that share a Manager
// between goroutines must serialize access themselves, or use the
// registry package.
//
// Each resource lives in its own slot for the lifetime of the Manager, so
// pointers returned by Get, At, Lookup and All remain valid and writes
// through them change the stored value.
type Manager[T any] struct {
	resources  map[Handle]*T
	hashLength int
	// occupied counts keys that are valid handles of hashLength characters.
	occupied    uint64
	maxAttempts int
	src         handle.Source
	id          string
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
}

// New creates an empty Manager. Without options, handles are 10 characters
// long and generated from a randomly seeded source.
//
// Example:
//
//	sessions := handlestore.New[Session](handlestore.WithHashLength(16))
//	h, err := sessions.Insert(Session{User: "ada"})
func New[T any](opts ...Option) *Manager[T] {
	return newManager[T](newStoreConfig(opts...))
}

func newManager[T any](cfg storeConfig) *Manager[T] {
	return &Manager[T]{
		resources:   make(map[Handle]*T),
		hashLength:  cfg.hashLength,
		maxAttempts: cfg.maxAttempts,
		src:         cfg.src,
		id:          cfg.id,
		logger:      observability.EnrichLogger(cfg.logger, cfg.id, cfg.hashLength),
		metrics:     cfg.metrics,
		spans:       cfg.spans,
	}
}

// Insert stores value under a new handle. The Manager owns the stored copy;
// later changes to the caller's variable do not reach it.
func (m *Manager[T]) Insert(value T) (Handle, error) {
	return m.insert(func(slot *T) { *slot = value })
}

// Move transfers *src into the Manager and resets *src to the zero value,
// leaving the Manager with the only copy. On error *src is left untouched.
func (m *Manager[T]) Move(src *T) (Handle, error) {
	if src == nil {
		return "", ErrNilResource
	}
	return m.insert(func(slot *T) {
		*slot = *src
		var zero T
		*src = zero
	})
}

// Create builds a resource with build and stores it under a new handle.
// build runs exactly once, and only after a handle has been reserved.
// A nil build stores the zero value of T.
//
// Example:
//
//	h, err := conns.Create(func() Conn { return NewConn("10.0.0.1", 443) })
func (m *Manager[T]) Create(build func() T) (Handle, error) {
	return m.insert(func(slot *T) {
		if build != nil {
			*slot = build()
		}
	})
}

// insert reserves a handle and fills a fresh slot for it.
func (m *Manager[T]) insert(fill func(slot *T)) (Handle, error) {
	h, attempts, err := m.allocate()
	m.metrics.RecordInsert(context.Background(), m.id, attempts, err)
	if err != nil {
		observability.LogExhausted(m.logger, attempts, len(m.resources), err)
		return "", err
	}

	slot := new(T)
	fill(slot)
	m.resources[h] = slot
	m.occupied++

	observability.LogInsert(m.logger, string(h), attempts)
	return h, nil
}

// allocate generates candidates until one is unused, giving up after
// maxAttempts. It returns the number of candidates generated.
func (m *Manager[T]) allocate() (Handle, int, error) {
	if m.occupied >= handle.Space(m.hashLength) {
		return "", 0, m.exhausted(0)
	}
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		h := Handle(handle.Generate(m.src, m.hashLength))
		if _, taken := m.resources[h]; !taken {
			return h, attempt, nil
		}
		observability.LogCollision(m.logger, string(h), attempt)
	}
	return "", m.maxAttempts, m.exhausted(m.maxAttempts)
}

func (m *Manager[T]) exhausted(attempts int) error {
	return &ExhaustedError{
		StoreID:    m.id,
		HashLength: m.hashLength,
		Attempts:   attempts,
		Live:       len(m.resources),
	}
}

// Get returns the resource stored under h.
//
// Get is a side-effecting read: when h is not present, a zero-value T is
// inserted under h and returned, and Len grows by one. Any string is
// accepted as the key in that case, including ones the Manager could never
// have generated. Use Lookup to read without inserting.
func (m *Manager[T]) Get(h Handle) *T {
	if slot, ok := m.resources[h]; ok {
		return slot
	}

	slot := new(T)
	m.place(h, slot)

	observability.LogFallbackInsert(m.logger, string(h))
	m.metrics.RecordFallbackInsert(context.Background(), m.id)
	return slot
}

// GetOrCreate returns the resource stored under h. When h is absent, build
// runs first and its result is stored under h; created reports that case.
// A nil build stores the zero value. If build panics nothing is stored.
//
// Like Get, any string is accepted as the key.
func (m *Manager[T]) GetOrCreate(h Handle, build func() T) (slot *T, created bool) {
	if slot, ok := m.resources[h]; ok {
		return slot, false
	}

	slot = new(T)
	if build != nil {
		*slot = build()
	}
	m.place(h, slot)

	observability.LogKeyedInsert(m.logger, string(h))
	m.metrics.RecordKeyedInsert(context.Background(), m.id)
	return slot, true
}

// At is the index-style spelling of Get and behaves identically,
// including the insertion of a zero value for unknown handles.
func (m *Manager[T]) At(h Handle) *T {
	return m.Get(h)
}

// Lookup returns the resource stored under h without modifying the Manager.
func (m *Manager[T]) Lookup(h Handle) (*T, bool) {
	slot, ok := m.resources[h]
	return slot, ok
}

// Has reports whether h is present.
func (m *Manager[T]) Has(h Handle) bool {
	_, ok := m.resources[h]
	return ok
}

// Len returns the number of stored resources.
func (m *Manager[T]) Len() int {
	return len(m.resources)
}

// HashLength returns the configured handle length.
func (m *Manager[T]) HashLength() int {
	return m.hashLength
}

// MaxAttempts returns the per-insertion candidate bound.
func (m *Manager[T]) MaxAttempts() int {
	return m.maxAttempts
}

// ID returns the store identifier.
func (m *Manager[T]) ID() string {
	return m.id
}

// All yields every handle with a pointer to its resource. Writes through
// the pointer change the stored value. Order is unspecified, and the
// Manager must not gain entries while the sequence is being consumed.
func (m *Manager[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for h, slot := range m.resources {
			if !yield(h, slot) {
				return
			}
		}
	}
}

// Values yields every handle with a copy of its resource. Order is
// unspecified.
func (m *Manager[T]) Values() iter.Seq2[Handle, T] {
	return func(yield func(Handle, T) bool) {
		for h, slot := range m.resources {
			if !yield(h, *slot) {
				return
			}
		}
	}
}

// Handles returns all handles in unspecified order.
func (m *Manager[T]) Handles() []Handle {
	handles := make([]Handle, 0, len(m.resources))
	for h := range m.resources {
		handles = append(handles, h)
	}
	return handles
}

// restore places slot under a known handle. Used when rebuilding from a snapshot.
func (m *Manager[T]) restore(h Handle, slot *T) error {
	if _, taken := m.resources[h]; taken {
		return ErrDuplicateHandle
	}
	m.place(h, slot)
	return nil
}

// place stores slot under a caller-supplied key that is known to be absent.
func (m *Manager[T]) place(h Handle, slot *T) {
	m.resources[h] = slot
	if handle.Valid(string(h), m.hashLength) {
		m.occupied++
	}
}

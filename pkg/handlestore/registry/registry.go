// Package registry provides a concurrency-safe wrapper around
// handlestore.Manager.
package registry

import (
	"sync"

	"github.com/randalmurphal/handlestore/pkg/handlestore"
)

// Registry is a thread-safe store of values indexed by generated handles.
// It uses sync.RWMutex so concurrent readers do not block each other.
//
// Reads return copies. Use Update to change a stored value in place.
type Registry[T any] struct {
	mu sync.RWMutex
	m  *handlestore.Manager[T]
}

// New creates an empty registry backed by a new Manager.
func New[T any](opts ...handlestore.Option) *Registry[T] {
	return Wrap(handlestore.New[T](opts...))
}

// Wrap takes over an existing Manager. The caller must not use m directly
// afterwards.
func Wrap[T any](m *handlestore.Manager[T]) *Registry[T] {
	return &Registry[T]{m: m}
}

// Insert stores value under a new handle.
func (r *Registry[T]) Insert(value T) (handlestore.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.Insert(value)
}

// Create stores the result of build under a new handle. build runs with
// the write lock held and must not call back into the registry.
func (r *Registry[T]) Create(build func() T) (handlestore.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.Create(build)
}

// Get returns a copy of the value for h and whether it exists. Unlike
// Manager.Get it never inserts.
func (r *Registry[T]) Get(h handlestore.Handle) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.m.Lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return *slot, true
}

// MustGet returns the value for h, panicking if not found.
func (r *Registry[T]) MustGet(h handlestore.Handle) T {
	v, ok := r.Get(h)
	if !ok {
		panic("registry: handle not found: " + h.String())
	}
	return v
}

// Has returns true if h is present.
func (r *Registry[T]) Has(h handlestore.Handle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Has(h)
}

// GetOrCreate returns the value for h, storing the result of factory under
// h if it doesn't exist. The factory is called at most once per handle,
// even under concurrent access, and runs before anything is stored: if it
// panics the registry is unchanged. A nil factory stores the zero value.
func (r *Registry[T]) GetOrCreate(h handlestore.Handle, factory func() T) T {
	// Fast path
	r.mu.RLock()
	slot, ok := r.m.Lookup(h)
	if ok {
		v := *slot
		r.mu.RUnlock()
		return v
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// The Manager re-checks under the write lock.
	slot, _ = r.m.GetOrCreate(h, factory)
	return *slot
}

// Update applies fn to the value stored under h while holding the write
// lock. It returns false, without calling fn, when h is absent.
func (r *Registry[T]) Update(h handlestore.Handle, fn func(*T)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.m.Lookup(h)
	if !ok {
		return false
	}
	fn(slot)
	return true
}

// Len returns the number of stored values.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Len()
}

// HashLength returns the handle length of the underlying Manager.
func (r *Registry[T]) HashLength() int {
	return r.m.HashLength()
}

// Handles returns all handles. The order is not guaranteed.
func (r *Registry[T]) Handles() []handlestore.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m.Handles()
}

// Range iterates over all entries. If fn returns false, iteration stops.
//
// Range iterates over a snapshot of the registry, so fn may call Insert or
// Update without affecting the current iteration.
func (r *Registry[T]) Range(fn func(handlestore.Handle, T) bool) {
	r.mu.RLock()
	snapshot := make(map[handlestore.Handle]T, r.m.Len())
	for h, v := range r.m.Values() {
		snapshot[h] = v
	}
	r.mu.RUnlock()

	for h, v := range snapshot {
		if !fn(h, v) {
			return
		}
	}
}

package snapshot

import (
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory.
// Data is lost when the process exits; it is meant for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*memSnapshot
	closed    bool
}

// memSnapshot is one saved store ID. It is never mutated after Replace
// publishes it.
type memSnapshot struct {
	manifest Manifest
	order    []string // handles in sequence order
	data     map[string][]byte
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*memSnapshot)}
}

// Replace implements Store. The new snapshot is built aside and swapped in
// under the lock, so readers see either the old set or the new one.
func (m *MemoryStore) Replace(storeID string, hashLength int, records []Record) error {
	snap := &memSnapshot{
		manifest: Manifest{
			StoreID:    storeID,
			HashLength: hashLength,
			Entries:    len(records),
			SavedAt:    time.Now().UTC(),
		},
		order: make([]string, 0, len(records)),
		data:  make(map[string][]byte, len(records)),
	}
	for _, r := range records {
		if _, dup := snap.data[r.Handle]; dup {
			return ErrDuplicateRecord
		}
		snap.order = append(snap.order, r.Handle)
		snap.data[r.Handle] = append([]byte{}, r.Data...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.snapshots[storeID] = snap
	return nil
}

// Stat implements Store.
func (m *MemoryStore) Stat(storeID string) (Manifest, error) {
	snap, err := m.get(storeID)
	if err != nil {
		return Manifest{}, err
	}
	if snap == nil {
		return Manifest{}, ErrNotFound
	}
	return snap.manifest, nil
}

// Load implements Store.
func (m *MemoryStore) Load(storeID, handle string) ([]byte, error) {
	snap, err := m.get(storeID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotFound
	}
	data, ok := snap.data[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, data...), nil
}

// List implements Store.
func (m *MemoryStore) List(storeID string) ([]Info, error) {
	snap, err := m.get(storeID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return []Info{}, nil
	}

	infos := make([]Info, len(snap.order))
	for i, h := range snap.order {
		infos[i] = Info{
			StoreID:  storeID,
			Handle:   h,
			Sequence: i + 1,
			Size:     int64(len(snap.data[h])),
		}
	}
	return infos, nil
}

// DeleteStore implements Store.
func (m *MemoryStore) DeleteStore(storeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	delete(m.snapshots, storeID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.snapshots = nil
	return nil
}

// Len returns the total number of entries across all snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, snap := range m.snapshots {
		count += len(snap.order)
	}
	return count
}

func (m *MemoryStore) get(storeID string) (*memSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	return m.snapshots[storeID], nil
}

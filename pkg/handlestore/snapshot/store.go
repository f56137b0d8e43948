// Package snapshot stores encoded handle store entries so a store can be
// rebuilt after a restart.
//
// Snapshots are an opt-in extension: a handlestore.Manager never touches a
// snapshot store on its own. Use handlestore.SaveSnapshot and
// handlestore.RestoreSnapshot to move data in and out.
//
// A snapshot is written as a whole. Replace swaps every entry of a store ID
// in one step and records a Manifest next to them, so a reader can tell a
// complete snapshot from a damaged one by comparing List with
// Manifest.Entries.
package snapshot

import (
	"errors"
	"time"
)

// Store persists snapshots keyed by store ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Replace atomically discards the snapshot saved under storeID and
	// stores records in its place, in order. On error the previous
	// snapshot is left intact.
	Replace(storeID string, hashLength int, records []Record) error

	// Stat returns the manifest of the snapshot saved under storeID.
	// Returns ErrNotFound if nothing has been saved.
	Stat(storeID string) (Manifest, error)

	// Load retrieves one encoded entry.
	// Returns ErrNotFound if the entry doesn't exist.
	Load(storeID, handle string) ([]byte, error)

	// List returns all entries for a store, ordered by sequence.
	// Returns empty slice (not error) if the store has no entries.
	List(storeID string) ([]Info, error)

	// DeleteStore removes the snapshot and its manifest.
	// Returns nil if nothing is saved under storeID.
	DeleteStore(storeID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one encoded entry handed to Replace.
type Record struct {
	Handle string
	Data   []byte
}

// Manifest describes a saved snapshot as a whole.
type Manifest struct {
	StoreID    string
	HashLength int
	// Entries is the number of records written by Replace.
	Entries int
	SavedAt time.Time
}

// Info describes a stored entry without loading it.
type Info struct {
	StoreID  string
	Handle   string
	Sequence int
	Size     int64
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates an entry or snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")

	// ErrDuplicateRecord indicates Replace was given the same handle twice.
	ErrDuplicateRecord = errors.New("duplicate record handle")
)

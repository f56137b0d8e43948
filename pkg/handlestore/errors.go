package handlestore

import (
	"errors"
	"fmt"
)

// Sentinel errors for insertion.
var (
	// ErrHandleSpaceExhausted indicates no unused handle was found within the
	// configured attempt bound. Match with errors.Is; the concrete error is
	// an *ExhaustedError.
	ErrHandleSpaceExhausted = errors.New("handle space exhausted")

	// ErrNilResource indicates Move was called with a nil pointer.
	ErrNilResource = errors.New("resource pointer is nil")
)

// Sentinel errors for snapshot restore.
var (
	// ErrDuplicateHandle indicates a snapshot listed the same handle twice.
	ErrDuplicateHandle = errors.New("duplicate handle")

	// ErrSnapshotVersion indicates an entry was written in an unknown format.
	ErrSnapshotVersion = errors.New("snapshot version mismatch")

	// ErrSnapshotMismatch indicates entries disagree with the snapshot manifest,
	// on store ID, hash length or entry count.
	ErrSnapshotMismatch = errors.New("snapshot entries are inconsistent")
)

// ExhaustedError reports a failed insertion.
type ExhaustedError struct {
	// StoreID identifies the store.
	StoreID string
	// HashLength is the store's configured handle length.
	HashLength int
	// Attempts is the number of candidates generated. Zero means the store
	// already held every handle of that length.
	Attempts int
	// Live is the number of entries at the time of failure.
	Live int
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("store %s: no free handle of length %d after %d attempts (%d live)",
		e.StoreID, e.HashLength, e.Attempts, e.Live)
}

// Unwrap returns ErrHandleSpaceExhausted for errors.Is support.
func (e *ExhaustedError) Unwrap() error {
	return ErrHandleSpaceExhausted
}

// SnapshotError wraps errors from snapshot save and restore.
type SnapshotError struct {
	// StoreID identifies the store being saved or restored.
	StoreID string
	// Handle is the entry being processed, empty for store-wide steps.
	Handle string
	// Op is the step that failed ("stat", "list", "load", "decode", "encode", "save").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("snapshot %s of %s/%s: %v", e.Op, e.StoreID, e.Handle, e.Err)
	}
	return fmt.Sprintf("snapshot %s of %s: %v", e.Op, e.StoreID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

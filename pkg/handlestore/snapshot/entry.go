package snapshot

import (
	"encoding/json"
	"time"
)

// Version is the current entry format version.
const Version = 1

// Entry is the persisted form of one stored resource.
type Entry struct {
	Version    int             `json:"version"`
	StoreID    string          `json:"store_id"`
	Handle     string          `json:"handle"`
	HashLength int             `json:"hash_length"`
	SavedAt    time.Time       `json:"saved_at"`
	Value      json.RawMessage `json:"value"`
}

// NewEntry creates an entry for an already-encoded value.
func NewEntry(storeID, handle string, hashLength int, value []byte) *Entry {
	return &Entry{
		Version:    Version,
		StoreID:    storeID,
		Handle:     handle,
		HashLength: hashLength,
		SavedAt:    time.Now().UTC(),
		Value:      value,
	}
}

// Marshal serializes an entry to JSON.
func (e *Entry) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal deserializes an entry from JSON.
func Unmarshal(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

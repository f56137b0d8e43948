package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		store_id    TEXT PRIMARY KEY,
		hash_length INTEGER NOT NULL,
		entries     INTEGER NOT NULL,
		saved_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS resources (
		store_id TEXT NOT NULL,
		handle   TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		data     BLOB NOT NULL,
		PRIMARY KEY (store_id, handle)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_resources_sequence ON resources(store_id, sequence)`,
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	wal         bool
	busyTimeout time.Duration
}

// WithWAL toggles write-ahead logging. Enabled by default.
func WithWAL(enabled bool) SQLiteOption {
	return func(c *sqliteConfig) {
		c.wal = enabled
	}
}

// WithBusyTimeout sets how long a write waits on a locked database before
// failing. Zero keeps the driver default; negative values are ignored.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(c *sqliteConfig) {
		if d >= 0 {
			c.busyTimeout = d
		}
	}
}

// SQLiteStore persists snapshots to SQLite. Each store ID has one row in
// snapshots (its manifest) and one row per handle in resources.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (or creates) a snapshot database.
// The path should be a file path (e.g., "./handles.db") or ":memory:" for testing.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	cfg := sqliteConfig{wal: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	pragmas := make([]string, 0, 2)
	if cfg.wal {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	if cfg.busyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.busyTimeout.Milliseconds()))
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Replace implements Store. All statements run in one transaction; a
// failure rolls back to the previous snapshot.
func (s *SQLiteStore) Replace(storeID string, hashLength int, records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.Handle]; dup {
			return ErrDuplicateRecord
		}
		seen[r.Handle] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := deleteStore(tx, storeID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshots (store_id, hash_length, entries, saved_at)
		VALUES (?, ?, ?, ?)
	`, storeID, hashLength, len(records), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO resources (store_id, handle, sequence, data)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		data := r.Data
		if data == nil {
			data = []byte{}
		}
		if _, err := stmt.Exec(storeID, r.Handle, i+1, data); err != nil {
			return fmt.Errorf("write entry %s: %w", r.Handle, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// Stat implements Store.
func (s *SQLiteStore) Stat(storeID string) (Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Manifest{}, ErrStoreClosed
	}

	m := Manifest{StoreID: storeID}
	var savedAt string
	err := s.db.QueryRow(`
		SELECT hash_length, entries, saved_at FROM snapshots WHERE store_id = ?
	`, storeID).Scan(&m.HashLength, &m.Entries, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Manifest{}, ErrNotFound
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return m, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(storeID, handle string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.QueryRow(`
		SELECT data FROM resources WHERE store_id = ? AND handle = ?
	`, storeID, handle).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return data, nil
}

// List implements Store.
func (s *SQLiteStore) List(storeID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT handle, sequence, LENGTH(data)
		FROM resources
		WHERE store_id = ?
		ORDER BY sequence
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		info := Info{StoreID: storeID}
		if err := rows.Scan(&info.Handle, &info.Sequence, &info.Size); err != nil {
			return nil, fmt.Errorf("scan entry info: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return infos, nil
}

// DeleteStore implements Store.
func (s *SQLiteStore) DeleteStore(storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := deleteStore(tx, storeID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func deleteStore(tx *sql.Tx, storeID string) error {
	if _, err := tx.Exec(`DELETE FROM resources WHERE store_id = ?`, storeID); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM snapshots WHERE store_id = ?`, storeID); err != nil {
		return fmt.Errorf("delete manifest: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

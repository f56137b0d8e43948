package handlestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/handlestore/pkg/handlestore/observability"
	"github.com/randalmurphal/handlestore/pkg/handlestore/snapshot"
	"go.opentelemetry.io/otel/attribute"
)

// SaveSnapshot writes every resource of m to store under m.ID(), replacing
// any snapshot previously saved for that ID. Values are encoded with
// encoding/json, so only exported fields of T survive a round trip.
//
// All values are encoded before the store is touched, and the store swaps
// the whole set in one step, so a failed save leaves the previous snapshot
// in place.
func SaveSnapshot[T any](ctx context.Context, m *Manager[T], store snapshot.Store) error {
	done := observability.TimedOperation()
	ctx, span := m.spans.StartSnapshotSpan(ctx, "save", m.id)

	size, err := saveSnapshot(ctx, m, store)
	m.spans.EndSpanWithError(span, err)
	if err != nil {
		return err
	}

	m.metrics.RecordSnapshot(ctx, m.id, "save", len(m.resources), size)
	observability.LogSnapshotSaved(m.logger, len(m.resources), done())
	return nil
}

func saveSnapshot[T any](ctx context.Context, m *Manager[T], store snapshot.Store) (int64, error) {
	var size int64
	records := make([]snapshot.Record, 0, len(m.resources))
	for h, slot := range m.resources {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		value, err := json.Marshal(slot)
		if err != nil {
			return 0, m.snapshotErr("encode", h, err)
		}
		data, err := snapshot.NewEntry(m.id, string(h), m.hashLength, value).Marshal()
		if err != nil {
			return 0, m.snapshotErr("encode", h, err)
		}
		records = append(records, snapshot.Record{Handle: string(h), Data: data})
		size += int64(len(data))
	}

	if err := store.Replace(m.id, m.hashLength, records); err != nil {
		return 0, m.snapshotErr("save", "", err)
	}
	return size, nil
}

func (m *Manager[T]) snapshotErr(op string, h Handle, err error) error {
	observability.LogSnapshotError(m.logger, op, string(h), err)
	return &SnapshotError{StoreID: m.id, Handle: string(h), Op: op, Err: err}
}

// RestoreSnapshot rebuilds the Manager saved under storeID. The restored
// Manager keeps the saved ID, hash length and handles; opts supply the
// remaining settings (logger, metrics, seed, attempt bound). Restoring an
// ID with no saved snapshot yields an empty Manager.
//
// Restore fails with ErrSnapshotMismatch when the stored entries do not
// add up to the snapshot's manifest, for example after entries were lost.
func RestoreSnapshot[T any](ctx context.Context, store snapshot.Store, storeID string, opts ...Option) (*Manager[T], error) {
	done := observability.TimedOperation()
	cfg := newStoreConfig(append(opts[:len(opts):len(opts)], WithID(storeID))...)
	ctx, span := cfg.spans.StartSnapshotSpan(ctx, "restore", storeID)

	manifest, entries, size, err := loadEntries(ctx, cfg, store, storeID)
	if err != nil {
		cfg.spans.EndSpanWithError(span, err)
		return nil, err
	}

	if manifest != nil {
		cfg.hashLength = manifest.HashLength
	}
	m := newManager[T](cfg)

	for _, e := range entries {
		slot := new(T)
		if err := json.Unmarshal(e.Value, slot); err != nil {
			err = m.snapshotErr("decode", Handle(e.Handle), err)
			cfg.spans.EndSpanWithError(span, err)
			return nil, err
		}
		if err := m.restore(Handle(e.Handle), slot); err != nil {
			err = m.snapshotErr("decode", Handle(e.Handle), err)
			cfg.spans.EndSpanWithError(span, err)
			return nil, err
		}
	}

	cfg.spans.AddSpanEvent(ctx, "restored", attribute.Int("entries", len(entries)))
	cfg.spans.EndSpanWithError(span, nil)
	m.metrics.RecordSnapshot(ctx, m.id, "restore", len(entries), size)
	observability.LogSnapshotRestored(m.logger, len(entries), done())
	return m, nil
}

// loadEntries reads and validates every entry saved for storeID. A nil
// manifest means nothing was saved.
func loadEntries(ctx context.Context, cfg storeConfig, store snapshot.Store, storeID string) (*snapshot.Manifest, []*snapshot.Entry, int64, error) {
	fail := func(op, h string, err error) error {
		observability.LogSnapshotError(cfg.logger, op, h, err)
		return &SnapshotError{StoreID: storeID, Handle: h, Op: op, Err: err}
	}

	manifest, err := store.Stat(storeID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, nil, 0, nil
	}
	if err != nil {
		return nil, nil, 0, fail("stat", "", err)
	}

	infos, err := store.List(storeID)
	if err != nil {
		return nil, nil, 0, fail("list", "", err)
	}
	if len(infos) != manifest.Entries {
		return nil, nil, 0, fail("list", "", fmt.Errorf("%w: manifest lists %d entries, found %d",
			ErrSnapshotMismatch, manifest.Entries, len(infos)))
	}

	var size int64
	entries := make([]*snapshot.Entry, 0, len(infos))
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, nil, size, err
		}

		data, err := store.Load(storeID, info.Handle)
		if err != nil {
			return nil, nil, size, fail("load", info.Handle, err)
		}
		size += int64(len(data))

		e, err := snapshot.Unmarshal(data)
		if err != nil {
			return nil, nil, size, fail("decode", info.Handle, err)
		}
		if e.Version != snapshot.Version {
			return nil, nil, size, fail("decode", info.Handle, ErrSnapshotVersion)
		}
		if e.StoreID != storeID || e.Handle != info.Handle || e.HashLength != manifest.HashLength {
			return nil, nil, size, fail("decode", info.Handle, ErrSnapshotMismatch)
		}
		entries = append(entries, e)
	}
	return &manifest, entries, size, nil
}

package handlestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/handlestore/pkg/handlestore/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotStores(t *testing.T) map[string]snapshot.Store {
	sqliteStore, err := snapshot.NewSQLiteStore(filepath.Join(t.TempDir(), "handles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]snapshot.Store{
		"memory": snapshot.NewMemoryStore(),
		"sqlite": sqliteStore,
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := newTestManager[Widget](WithHashLength(6), WithID("widgets-"+name))

			want := make(map[Handle]Widget)
			for i := 0; i < 5; i++ {
				w := newWidgetFull(uint(i), float32(i)/2, i%2 == 0)
				h, err := m.Insert(w)
				require.NoError(t, err)
				want[h] = w
			}
			m.Get("ZZZZZ").Count = 77
			want["ZZZZZ"] = Widget{Count: 77}

			require.NoError(t, SaveSnapshot(ctx, m, store))

			restored, err := RestoreSnapshot[Widget](ctx, store, m.ID(), WithLogger(discardLogger()))
			require.NoError(t, err)

			assert.Equal(t, m.ID(), restored.ID())
			assert.Equal(t, 6, restored.HashLength())
			assert.Equal(t, len(want), restored.Len())
			for h, w := range want {
				got, ok := restored.Lookup(h)
				require.True(t, ok, "missing handle %q", h)
				assert.Equal(t, w, *got)
			}

			// restored manager keeps handing out unique handles
			h, err := restored.Insert(Widget{})
			require.NoError(t, err)
			_, dup := want[h]
			assert.False(t, dup)
		})
	}
}

func TestSnapshot_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	m := newTestManager[int](WithID("counter"))

	_, err := m.Insert(1)
	require.NoError(t, err)
	require.NoError(t, SaveSnapshot(ctx, m, store))

	// a different store with the same ID overwrites the snapshot
	other := newTestManager[int](WithID("counter"), WithSeed(2))
	h, err := other.Insert(2)
	require.NoError(t, err)
	require.NoError(t, SaveSnapshot(ctx, other, store))

	restored, err := RestoreSnapshot[int](ctx, store, "counter", WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Len())
	assert.Equal(t, 2, *restored.Get(h))
}

func TestRestoreSnapshot_Empty(t *testing.T) {
	restored, err := RestoreSnapshot[int](context.Background(), snapshot.NewMemoryStore(), "nothing",
		WithHashLength(4), WithLogger(discardLogger()))
	require.NoError(t, err)

	assert.Equal(t, 0, restored.Len())
	assert.Equal(t, "nothing", restored.ID())
	assert.Equal(t, 4, restored.HashLength())
}

// saveRaw stores already-encoded entries as one snapshot.
func saveRaw(t *testing.T, store snapshot.Store, storeID string, hashLength int, entries map[string][]byte) {
	t.Helper()
	recs := make([]snapshot.Record, 0, len(entries))
	for h, data := range entries {
		recs = append(recs, snapshot.Record{Handle: h, Data: data})
	}
	require.NoError(t, store.Replace(storeID, hashLength, recs))
}

func marshalEntry(t *testing.T, e *snapshot.Entry) []byte {
	t.Helper()
	data, err := e.Marshal()
	require.NoError(t, err)
	return data
}

func TestRestoreSnapshot_DecodeError(t *testing.T) {
	store := snapshot.NewMemoryStore()
	saveRaw(t, store, "s", 3, map[string][]byte{"abc": []byte("not json")})

	_, err := RestoreSnapshot[int](context.Background(), store, "s", WithLogger(discardLogger()))

	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "decode", snapErr.Op)
	assert.Equal(t, "abc", snapErr.Handle)
}

func TestRestoreSnapshot_ValueTypeMismatch(t *testing.T) {
	store := snapshot.NewMemoryStore()
	saveRaw(t, store, "s", 3, map[string][]byte{
		"abc": marshalEntry(t, snapshot.NewEntry("s", "abc", 3, []byte(`"text"`))),
	})

	_, err := RestoreSnapshot[int](context.Background(), store, "s", WithLogger(discardLogger()))

	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "decode", snapErr.Op)
}

func TestRestoreSnapshot_VersionMismatch(t *testing.T) {
	store := snapshot.NewMemoryStore()
	e := snapshot.NewEntry("s", "abc", 3, []byte(`1`))
	e.Version = snapshot.Version + 1
	saveRaw(t, store, "s", 3, map[string][]byte{"abc": marshalEntry(t, e)})

	_, err := RestoreSnapshot[int](context.Background(), store, "s", WithLogger(discardLogger()))
	assert.ErrorIs(t, err, ErrSnapshotVersion)
}

func TestRestoreSnapshot_InconsistentEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]*snapshot.Entry // keyed by stored handle
	}{
		{
			name: "hash length differs from manifest",
			entries: map[string]*snapshot.Entry{
				"abc":  snapshot.NewEntry("s", "abc", 3, []byte(`1`)),
				"abcd": snapshot.NewEntry("s", "abcd", 4, []byte(`2`)),
			},
		},
		{
			name: "foreign store id",
			entries: map[string]*snapshot.Entry{
				"abc": snapshot.NewEntry("other", "abc", 3, []byte(`1`)),
			},
		},
		{
			name: "handle differs from key",
			entries: map[string]*snapshot.Entry{
				"abc": snapshot.NewEntry("s", "xyz", 3, []byte(`1`)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := snapshot.NewMemoryStore()
			raw := make(map[string][]byte, len(tt.entries))
			for key, e := range tt.entries {
				raw[key] = marshalEntry(t, e)
			}
			saveRaw(t, store, "s", 3, raw)

			_, err := RestoreSnapshot[int](context.Background(), store, "s", WithLogger(discardLogger()))
			assert.ErrorIs(t, err, ErrSnapshotMismatch)
		})
	}
}

// lossyStore hides one saved entry from List, as if its row were lost.
type lossyStore struct {
	snapshot.Store
	lost string
}

func (s lossyStore) List(storeID string) ([]snapshot.Info, error) {
	infos, err := s.Store.List(storeID)
	if err != nil {
		return nil, err
	}
	kept := infos[:0]
	for _, info := range infos {
		if info.Handle != s.lost {
			kept = append(kept, info)
		}
	}
	return kept, nil
}

func TestRestoreSnapshot_MissingEntries(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	m := newTestManager[int](WithID("lossy"))
	var lost Handle
	for i := 0; i < 3; i++ {
		h, err := m.Insert(i)
		require.NoError(t, err)
		lost = h
	}
	require.NoError(t, SaveSnapshot(ctx, m, store))

	_, err := RestoreSnapshot[int](ctx, lossyStore{Store: store, lost: lost.String()}, "lossy",
		WithLogger(discardLogger()))

	assert.ErrorIs(t, err, ErrSnapshotMismatch)
	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "list", snapErr.Op)
}

func TestSaveSnapshot_FailureKeepsPrevious(t *testing.T) {
	for name, store := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := newTestManager[any](WithID("keep-" + name))

			want := make(map[Handle]any)
			for i := 0; i < 5; i++ {
				h, err := m.Insert(float64(i))
				require.NoError(t, err)
				want[h] = float64(i)
			}
			require.NoError(t, SaveSnapshot(ctx, m, store))

			// functions cannot be JSON encoded
			_, err := m.Insert(func() {})
			require.NoError(t, err)

			err = SaveSnapshot(ctx, m, store)
			var snapErr *SnapshotError
			require.ErrorAs(t, err, &snapErr)
			assert.Equal(t, "encode", snapErr.Op)

			restored, err := RestoreSnapshot[any](ctx, store, m.ID(), WithLogger(discardLogger()))
			require.NoError(t, err)
			assert.Equal(t, len(want), restored.Len())
			for h, v := range want {
				got, ok := restored.Lookup(h)
				require.True(t, ok)
				assert.Equal(t, v, *got)
			}
		})
	}
}

func TestSnapshot_ClosedStore(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	require.NoError(t, store.Close())

	m := newTestManager[int]()
	_, err := m.Insert(1)
	require.NoError(t, err)

	err = SaveSnapshot(ctx, m, store)
	assert.ErrorIs(t, err, snapshot.ErrStoreClosed)
	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "save", snapErr.Op)

	_, err = RestoreSnapshot[int](ctx, store, m.ID(), WithLogger(discardLogger()))
	assert.ErrorIs(t, err, snapshot.ErrStoreClosed)
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "stat", snapErr.Op)
}

// failingStore rejects every Replace.
type failingStore struct {
	*snapshot.MemoryStore
}

func (failingStore) Replace(string, int, []snapshot.Record) error {
	return errors.New("disk full")
}

func TestSaveSnapshot_SaveError(t *testing.T) {
	m := newTestManager[int]()
	_, err := m.Insert(1)
	require.NoError(t, err)

	err = SaveSnapshot(context.Background(), m, failingStore{snapshot.NewMemoryStore()})

	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "save", snapErr.Op)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSaveSnapshot_EncodeError(t *testing.T) {
	m := newTestManager[chan int]()
	_, err := m.Insert(make(chan int))
	require.NoError(t, err)

	store := snapshot.NewMemoryStore()
	err = SaveSnapshot(context.Background(), m, store)

	var snapErr *SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Equal(t, "encode", snapErr.Op)

	// nothing was written
	_, err = store.Stat(m.ID())
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSaveSnapshot_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager[int]()
	_, err := m.Insert(1)
	require.NoError(t, err)

	err = SaveSnapshot(ctx, m, snapshot.NewMemoryStore())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRestoreSnapshot_SavedEmpty(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	m := newTestManager[int](WithID("empty"), WithHashLength(3))
	require.NoError(t, SaveSnapshot(ctx, m, store))

	restored, err := RestoreSnapshot[int](ctx, store, "empty", WithHashLength(9), WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Len())
	assert.Equal(t, 3, restored.HashLength())
}

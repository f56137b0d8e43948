package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CopiesData(t *testing.T) {
	store := NewMemoryStore()

	data := []byte("original")
	require.NoError(t, store.Replace("s", 1, []Record{{Handle: "h", Data: data}}))
	data[0] = 'X'

	loaded, err := store.Load("s", "h")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), loaded)

	loaded[0] = 'Y'
	again, err := store.Load("s", "h")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestMemoryStore_Len(t *testing.T) {
	store := NewMemoryStore()
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Replace("s1", 1, []Record{{Handle: "a"}, {Handle: "b"}}))
	require.NoError(t, store.Replace("s2", 1, []Record{{Handle: "a"}}))
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.Replace("s1", 1, nil))
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Close())
	assert.Equal(t, 0, store.Len())
}

package badger

import (
	"context"
	"testing"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir() + "/db"
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = backend.FindSimilar(context.Background(), []float32{1}, 0, 10)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	results, err := backend.FindSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithRecords(t *testing.T) {
	songs, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	_, err = songs.UpsertSongs(ctx,
		&core.SongRecord{Path: "./a.json", Title: "First", TitleVector: []float32{1, 0, 0}},
		&core.SongRecord{Path: "./b.json", Title: "Second", TitleVector: []float32{0.9, 0.1, 0}},
		&core.SongRecord{Path: "./c.json", Title: "Third", TitleVector: []float32{0, 0, 1}},
		&core.SongRecord{Path: "./d.json", Title: "No vector"},
	)
	require.NoError(t, err)

	query := []float32{1, 0, 0}

	t.Run("threshold", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, 0.8, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "First", results[0].Record.Title)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	})

	t.Run("all with vectors", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, -1, 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, query, -1, 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

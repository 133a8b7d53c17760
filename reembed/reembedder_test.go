package reembed

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/motif/ai/mock"
	"github.com/poiesic/motif/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedder_Run(t *testing.T) {
	repo, checkpoints := setupTestDB(t)
	seedSongs(t, repo, 10)
	ctx := context.Background()

	var buf bytes.Buffer
	r, err := NewReembedder(repo, checkpoints, mock.NewMockEmbedder(), testConfig(), &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	songs, err := repo.GetSongsAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, songs, 10)
	for _, song := range songs {
		require.Len(t, song.TitleVector, mock.Dimension)
		assert.InDelta(t, 1.0, magnitude(song.TitleVector), 1e-4)
	}

	assert.Contains(t, buf.String(), "10/10")
	cp, err := checkpoints.LoadCheckpoint(ctx, CheckpointName)
	require.NoError(t, err)
	assert.Nil(t, cp, "checkpoint should be removed after a complete run")
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	repo, checkpoints := setupTestDB(t)

	var buf bytes.Buffer
	r, err := NewReembedder(repo, checkpoints, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, buf.String(), "No songs found")
}

func TestReembedder_ResumesFromCheckpoint(t *testing.T) {
	repo, checkpoints := setupTestDB(t)
	seedSongs(t, repo, 8)
	ctx := context.Background()

	all, err := repo.GetSongsAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.NoError(t, checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: CheckpointName,
		LastID:        all[4].Id,
		Processed:     5,
		UpdatedAt:     time.Now(),
	}))

	var embedded atomic.Int64
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded.Add(int64(len(texts)))
		return unnormalized(ctx, texts)
	}

	var buf bytes.Buffer
	r, err := NewReembedder(repo, checkpoints, embedder, testConfig(), &buf)
	require.NoError(t, err)
	require.NoError(t, r.Run(ctx))

	assert.EqualValues(t, 3, embedded.Load())
	first, err := repo.GetSong(ctx, all[0].Id)
	require.NoError(t, err)
	assert.Empty(t, first.TitleVector, "songs before the checkpoint are skipped")
}

func TestReembedder_FailureKeepsCheckpoint(t *testing.T) {
	repo, checkpoints := setupTestDB(t)
	seedSongs(t, repo, 7)
	ctx := context.Background()

	batches := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batches++
		if batches > 1 {
			return nil, Permanent(errors.New("quota exceeded"))
		}
		return unnormalized(ctx, texts)
	}

	var buf bytes.Buffer
	r, err := NewReembedder(repo, checkpoints, embedder, testConfig(), &buf)
	require.NoError(t, err)
	require.Error(t, r.Run(ctx))

	cp, err := checkpoints.LoadCheckpoint(ctx, CheckpointName)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 3, cp.Processed)
}

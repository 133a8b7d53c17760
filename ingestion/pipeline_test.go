package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/motif/ai/mock"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/corpus"
	"github.com/poiesic/motif/features"
	"github.com/poiesic/motif/storage"
	"github.com/poiesic/motif/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const melody = `[{"time":0,"pitch":60,"duration":240},{"time":240,"pitch":64,"duration":240},{"time":480,"pitch":67,"duration":480}]`

func songDoc(title, notes string) string {
	return fmt.Sprintf(`{"metadata":{"title":%q,"creators":["Anon"]},"tempos":[{"qpm":90}],"tracks":[{"notes":%s}]}`, title, notes)
}

func newCorpus(t *testing.T, files map[string]string) *corpus.Loader {
	t.Helper()
	dir := t.TempDir()
	for rel, contents := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}
	loader, err := corpus.NewLoader(dir)
	require.NoError(t, err)
	return loader
}

func numberedCorpus(t *testing.T, n int) (*corpus.Loader, []string) {
	files := make(map[string]string, n)
	paths := make([]string, n)
	for i := range n {
		rel := fmt.Sprintf("data/%02d.json", i)
		files[rel] = songDoc(fmt.Sprintf("Prelude %d", i+1), melody)
		paths[i] = "./" + rel
	}
	return newCorpus(t, files), paths
}

func setupRepositories(t *testing.T) (storage.SongRepository, storage.CheckpointRepository) {
	songs, checkpoints, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return songs, checkpoints
}

func newPipeline(t *testing.T, songs storage.SongRepository, loader *corpus.Loader, provider *mock.MockEmbedder, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithPoolSize(2), WithRetry(2, time.Millisecond)}, opts...)
	p, err := NewPipeline(songs, loader, mock.NewMockProviderWithEmbedder(provider), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

type recordingSink struct {
	mu      sync.Mutex
	records []*core.SongRecord
	err     error
}

func (s *recordingSink) StoreFeatures(_ context.Context, records ...*core.SongRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func TestNewPipeline_Validation(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader, _ := numberedCorpus(t, 1)
	provider := mock.NewMockProvider()

	_, err := NewPipeline(nil, loader, provider)
	assert.ErrorIs(t, err, ErrSongRepositoryRequired)

	_, err = NewPipeline(songs, nil, provider)
	assert.ErrorIs(t, err, ErrLoaderRequired)

	_, err = NewPipeline(songs, loader, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewPipeline(songs, loader, provider, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestPipeline_Ingest(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader := newCorpus(t, map[string]string{
		"a/nocturne.json": songDoc("Nocturne in E-flat", melody),
		"b/minuet.json":   songDoc("Minuet in G", melody),
	})
	ctx := context.Background()

	p := newPipeline(t, songs, loader, mock.NewMockEmbedder())
	report, err := p.Ingest(ctx, []string{"./a/nocturne.json", "./b/minuet.json"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Indexed)
	assert.Empty(t, report.Skipped)
	assert.NotEmpty(t, report.RunID)

	record, err := songs.GetSong(ctx, core.IDFromContent("./a/nocturne.json"))
	require.NoError(t, err)
	assert.Equal(t, "Nocturne in E-flat", record.Title)
	assert.Equal(t, []string{"Anon"}, record.Creators)
	assert.Len(t, record.FeatureVector, features.VectorSize)
	assert.Len(t, record.TitleVector, mock.Dimension)
	assert.Equal(t, 90.0, record.Summary.Tempo)
	assert.False(t, record.InsertedAt.IsZero())
}

func TestPipeline_SkipsBadFiles(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader := newCorpus(t, map[string]string{
		"good.json":    songDoc("Good", melody),
		"broken.json":  `{"metadata": {"title": "Broken"}, "tracks": [`,
		"invalid.json": songDoc("Invalid", `[{"time":0,"pitch":200}]`),
	})

	p := newPipeline(t, songs, loader, mock.NewMockEmbedder())
	report, err := p.Ingest(context.Background(), []string{"./good.json", "./broken.json", "./missing.json", "./invalid.json"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, "./broken.json", report.Skipped[0].Path)
	assert.Equal(t, "./missing.json", report.Skipped[1].Path)
	assert.Equal(t, "./invalid.json", report.Skipped[2].Path)

	count, err := songs.CountSongs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_BatchesTitleEmbeddings(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader, paths := numberedCorpus(t, 7)

	embedder := mock.NewMockEmbedder()
	var progress bytes.Buffer
	p := newPipeline(t, songs, loader, embedder, WithBatchSize(3), WithProgress(&progress, 3))

	report, err := p.Ingest(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Indexed)
	assert.Equal(t, 3, embedder.CallCount(), "one embedding request per batch")
	assert.Contains(t, progress.String(), "7/7")
}

func TestPipeline_Reingest(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader, paths := numberedCorpus(t, 3)
	ctx := context.Background()

	p := newPipeline(t, songs, loader, mock.NewMockEmbedder())
	_, err := p.Ingest(ctx, paths)
	require.NoError(t, err)
	first, err := songs.GetSong(ctx, core.IDFromContent(paths[0]))
	require.NoError(t, err)

	_, err = p.Ingest(ctx, paths)
	require.NoError(t, err)

	count, err := songs.CountSongs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "reindexing upserts instead of duplicating")

	again, err := songs.GetSong(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, first.InsertedAt, again.InsertedAt)
}

func TestPipeline_FeatureSink(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader, paths := numberedCorpus(t, 4)
	sink := &recordingSink{}

	p := newPipeline(t, songs, loader, mock.NewMockEmbedder(), WithBatchSize(2), WithFeatureSink(sink))
	_, err := p.Ingest(context.Background(), paths)
	require.NoError(t, err)
	assert.Len(t, sink.records, 4)

	failing := newPipeline(t, songs, loader, mock.NewMockEmbedder(), WithFeatureSink(&recordingSink{err: errors.New("connection refused")}))
	_, err = failing.Ingest(context.Background(), paths)
	assert.ErrorContains(t, err, "connection refused")
}

func TestPipeline_CheckpointResume(t *testing.T) {
	songs, checkpoints := setupRepositories(t)
	loader, paths := numberedCorpus(t, 6)
	ctx := context.Background()

	calls := 0
	flaky := mock.NewMockEmbedder()
	flaky.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("rate limited")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.Vector(text, mock.Dimension)
		}
		return out, nil
	}

	p := newPipeline(t, songs, loader, flaky, WithBatchSize(2), WithCheckpoints(checkpoints))
	_, err := p.Ingest(ctx, paths)
	require.Error(t, err)

	cp, err := checkpoints.LoadCheckpoint(ctx, CheckpointName)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.Processed)

	embedder := mock.NewMockEmbedder()
	resumed := newPipeline(t, songs, loader, embedder, WithBatchSize(2), WithCheckpoints(checkpoints))
	report, err := resumed.Ingest(ctx, paths)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Resumed)
	assert.Equal(t, 4, report.Indexed)
	assert.Equal(t, 2, embedder.CallCount())

	count, err := songs.CountSongs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count)

	cp, err = checkpoints.LoadCheckpoint(ctx, CheckpointName)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestPipeline_ContextCanceled(t *testing.T) {
	songs, _ := setupRepositories(t)
	loader, paths := numberedCorpus(t, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPipeline(t, songs, loader, mock.NewMockEmbedder())
	_, err := p.Ingest(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
}

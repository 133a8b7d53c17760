package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/hnsw"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/storage"
)

const (
	defaultM        = 16
	defaultEfSearch = 64
	buildPageSize   = 500
)

// TitleIndex is an HNSW graph of song title vectors keyed by song ID.
// It is safe for concurrent use.
type TitleIndex struct {
	mu     sync.Mutex
	graph    *hnsw.Graph[core.ID]
	m        int
	efSearch int
	dims     int
	repo   storage.SongRepository
	logger *slog.Logger
}

// Option configures a TitleIndex.
type Option func(*TitleIndex) error

// WithM sets the maximum number of neighbours per graph node.
func WithM(m int) Option {
	return func(x *TitleIndex) error {
		if m < 2 {
			return fmt.Errorf("M must be at least 2, got %d", m)
		}
		x.m = m
		return nil
	}
}

// WithEfSearch sets the candidate list size used while searching.
func WithEfSearch(ef int) Option {
	return func(x *TitleIndex) error {
		if ef < 1 {
			return fmt.Errorf("EfSearch must be positive, got %d", ef)
		}
		x.efSearch = ef
		return nil
	}
}

// WithLogger sets the logger. If nil, uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *TitleIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger.With("component", "title-index")
		return nil
	}
}

// NewTitleIndex creates an empty index that resolves hits through repo.
func NewTitleIndex(repo storage.SongRepository, opts ...Option) (*TitleIndex, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	x := &TitleIndex{
		m:        defaultM,
		efSearch: defaultEfSearch,
		repo:     repo,
		logger:   slog.Default().With("component", "title-index"),
	}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	x.graph = x.newGraph()
	return x, nil
}

func (x *TitleIndex) newGraph() *hnsw.Graph[core.ID] {
	graph := hnsw.NewGraph[core.ID]()
	graph.Distance = hnsw.CosineDistance
	graph.M = x.m
	graph.EfSearch = x.efSearch
	return graph
}

// delete removes id and swaps in a fresh graph once the last node is gone;
// hnsw cannot add to a graph emptied by deletes. Callers hold x.mu.
func (x *TitleIndex) delete(id core.ID) bool {
	ok := x.graph.Delete(id)
	if ok && x.graph.Len() == 0 {
		x.graph = x.newGraph()
	}
	return ok
}

// Build creates an index holding the title vector of every stored song.
// Songs without a title vector are skipped.
func Build(ctx context.Context, repo storage.SongRepository, opts ...Option) (*TitleIndex, error) {
	x, err := NewTitleIndex(repo, opts...)
	if err != nil {
		return nil, err
	}

	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := repo.GetSongsAfter(ctx, after, buildPageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, record := range page {
			if len(record.TitleVector) == 0 {
				continue
			}
			if err := x.Add(record.Id, record.TitleVector); err != nil {
				return nil, fmt.Errorf("song %s: %w", record.Path, err)
			}
		}
		after = page[len(page)-1].Id
	}

	x.logger.Info("title index built", "size", x.Len())
	return x, nil
}

// Add inserts or replaces the vector for id.
func (x *TitleIndex) Add(id core.ID, vector []float32) error {
	if len(vector) == 0 {
		return ErrEmptyVector
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dims == 0 {
		x.dims = len(vector)
	} else if len(vector) != x.dims {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.dims)
	}

	if _, ok := x.graph.Lookup(id); ok {
		x.delete(id)
	}
	// The graph keeps the slice, so it gets its own copy.
	x.graph.Add(hnsw.MakeNode(id, append([]float32(nil), vector...)))
	return nil
}

// Remove deletes id from the index, reporting whether it was present.
func (x *TitleIndex) Remove(id core.ID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.delete(id)
}

// Len returns the number of indexed vectors.
func (x *TitleIndex) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.graph.Len()
}

// Hit is one approximate neighbour.
type Hit struct {
	ID    core.ID
	Score float32 // cosine similarity
}

// Nearest returns up to k approximate neighbours of vector, most similar
// first.
func (x *TitleIndex) Nearest(vector []float32, k int) ([]Hit, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyVector
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.graph.Len() == 0 || k <= 0 {
		return []Hit{}, nil
	}
	if len(vector) != x.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.dims)
	}

	nodes := x.graph.Search(vector, k)
	hits := make([]Hit, 0, len(nodes))
	for _, node := range nodes {
		hits = append(hits, Hit{
			ID:    node.Key,
			Score: storage.CosineSimilarity(vector, node.Value),
		})
	}
	return hits, nil
}

// FindSimilar resolves the nearest neighbours of vector to song records.
// Hits below minSimilarity and songs no longer stored are dropped.
func (x *TitleIndex) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	hits, err := x.Nearest(vector, limit)
	if err != nil {
		return nil, err
	}

	scores := make(map[core.ID]float32, len(hits))
	ids := make([]core.ID, 0, len(hits))
	for _, h := range hits {
		if h.Score < minSimilarity {
			continue
		}
		scores[h.ID] = h.Score
		ids = append(ids, h.ID)
	}
	if len(ids) == 0 {
		return []*core.SearchResult{}, nil
	}

	records, err := x.repo.GetSongs(ctx, ids...)
	if err != nil {
		return nil, err
	}
	results := make([]*core.SearchResult, 0, len(records))
	for _, r := range records {
		results = append(results, &core.SearchResult{Record: r, Score: scores[r.Id]})
	}
	storage.SortByScore(results)
	return results, nil
}

package search

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/motif/ai"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/storage"
)

const (
	// DefaultMaxResults is used when FindTitles is called with maxResults <= 0.
	DefaultMaxResults = 10

	// MinQueryLength is the shortest trimmed query, in characters, that is
	// searched. Shorter queries return no results.
	MinQueryLength = 2

	// verbatimBoost is added to the score of titles containing every
	// significant query word.
	verbatimBoost = 0.3

	// candidateFactor widens the candidate pool so the verbatim boost can
	// promote titles ranked just outside maxResults.
	candidateFactor = 3
)

// VectorIndex finds song records by title vector similarity.
// storage.SongRepository and index.TitleIndex both implement it.
type VectorIndex interface {
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// Searcher answers title searches and similar-song queries.
type Searcher struct {
	songs         storage.SongRepository
	index         VectorIndex
	similar       storage.SimilarityFinder
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// WithIndex replaces the repository scan with index.
func WithIndex(index VectorIndex) Option {
	return func(s *Searcher) error {
		if index == nil {
			return ErrIndexRequired
		}
		s.index = index
		return nil
	}
}

// WithSimilarityFinder sets the store used by FindSimilarSongs.
// Default is the song repository.
func WithSimilarityFinder(finder storage.SimilarityFinder) Option {
	return func(s *Searcher) error {
		if finder != nil {
			s.similar = finder
		}
		return nil
	}
}

// WithMinSimilarity drops candidates whose title similarity is below min.
// Default is -1, which keeps every candidate.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(songs storage.SongRepository, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if songs == nil {
		return nil, ErrSongRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		songs:         songs,
		index:         songs,
		similar:       songs,
		embedder:      provider.Embedder(),
		minSimilarity: -1,
		logger:        slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindTitles returns up to maxResults song titles matching query, best first.
func (s *Searcher) FindTitles(ctx context.Context, query string, maxResults int) ([]string, error) {
	results, err := s.FindSongs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(results))
	for i, r := range results {
		titles[i] = r.Record.Title
	}
	return titles, nil
}

// FindSongs searches song titles for query.
// Returns up to maxResults results, ranked by relevance score.
func (s *Searcher) FindSongs(ctx context.Context, query string, maxResults int) ([]*core.SearchResult, error) {
	return s.FindSongsWithMonitor(ctx, query, maxResults, nil)
}

// FindSongsWithMonitor searches song titles with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindSongsWithMonitor(ctx context.Context, query string, maxResults int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	monitor.Start(query)

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(len(embedding))

	candidates, err := s.index.FindSimilar(ctx, embedding, s.minSimilarity, maxResults*candidateFactor)
	if err != nil {
		s.logger.Error("error querying for similar titles", "err", err)
		return nil, err
	}
	monitor.AfterCandidateSearch(candidates)

	results := make([]*core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c.Record == nil {
			continue
		}
		score := c.Score
		if containsAllQueryWords(c.Record.Title, query) {
			score += verbatimBoost
			monitor.VerbatimHit(c.Record)
		}
		results = append(results, &core.SearchResult{Record: c.Record, Score: score})
	}

	storage.SortByScore(results)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	monitor.Finish(results)

	return results, nil
}

// FindSimilarSongs returns songs musically similar to the songs titled
// titles. See storage.SimilarityFinder.
func (s *Searcher) FindSimilarSongs(ctx context.Context, titles []string, topN int) ([]*core.SearchResult, error) {
	results, err := s.similar.FindSimilarSongs(ctx, titles, topN)
	if err != nil {
		s.logger.Debug("similar song lookup failed", "titles", titles, "err", err)
		return nil, err
	}
	return results, nil
}

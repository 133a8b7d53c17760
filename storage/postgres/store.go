package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/features"
	"github.com/poiesic/motif/storage"
)

// DefaultSimilarSongs is the result count used when FindSimilarSongs is
// called with topN <= 0.
const DefaultSimilarSongs = 5

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FeatureStore keeps song features in PostgreSQL.
type FeatureStore struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

var (
	_ storage.FeatureSink      = (*FeatureStore)(nil)
	_ storage.SimilarityFinder = (*FeatureStore)(nil)
)

// Option configures a FeatureStore.
type Option func(*FeatureStore) error

// WithTable overrides the table name.
func WithTable(name string) Option {
	return func(s *FeatureStore) error {
		if !tableName.MatchString(name) {
			return errors.Wrapf(storage.ErrInvalidQuery, "bad table name %q", name)
		}
		s.table = name
		return nil
	}
}

// WithLogger sets the logger. If nil, uses slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *FeatureStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "postgres-features")
		return nil
	}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*FeatureStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	store, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database handle. The store takes ownership of db.
func New(db *sql.DB, opts ...Option) (*FeatureStore, error) {
	s := &FeatureStore{
		db:     db,
		table:  DefaultTable,
		logger: slog.Default().With("component", "postgres-features"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes the database handle.
func (s *FeatureStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the vector extension, table and title index when
// missing.
func (s *FeatureStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.table, features.VectorSize) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create schema")
		}
	}
	return nil
}

// StoreFeatures upserts records in a single transaction.
func (s *FeatureStore) StoreFeatures(ctx context.Context, records ...*core.SongRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertStatement(s.table))
	if err != nil {
		return errors.Wrap(err, "failed to prepare upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range records {
		var vector any
		if len(r.FeatureVector) > 0 {
			vector = pgvector.NewVector(r.FeatureVector)
		}
		_, err := stmt.ExecContext(ctx,
			int64(r.Id),
			r.Path,
			r.Title,
			pq.Array(nonNil(r.Creators)),
			r.Summary.Key,
			r.Summary.Mode,
			r.Summary.Tempo,
			r.Summary.AverageDuration,
			r.Summary.Measures,
			pq.Array(nonNil(r.Summary.TimeSignatures)),
			pq.Array(nonNil(r.Summary.ChordProgressions)),
			vector,
			now,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to upsert song %s", r.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit features")
	}
	s.logger.Debug("stored features", "count", len(records))
	return nil
}

// FindSimilarSongs averages the feature vectors of the songs titled titles
// and ranks every other song by cosine distance to the average.
func (s *FeatureStore) FindSimilarSongs(ctx context.Context, titles []string, topN int) ([]*core.SearchResult, error) {
	if topN <= 0 {
		topN = DefaultSimilarSongs
	}
	folded := foldTitles(titles)
	if len(folded) == 0 {
		return nil, storage.ErrNoSimilarSongs
	}

	rows, err := s.db.QueryContext(ctx, inputVectorsQuery(s.table), pq.Array(folded))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query input songs")
	}
	var ids []int64
	var vectors [][]float32
	for rows.Next() {
		var id int64
		var vector pgvector.Vector
		if err := rows.Scan(&id, &vector); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan input song")
		}
		ids = append(ids, id)
		vectors = append(vectors, vector.Slice())
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read input songs")
	}
	if len(vectors) == 0 {
		return nil, storage.ErrNoSimilarSongs
	}

	target := pgvector.NewVector(storage.MeanVector(vectors))
	rows, err = s.db.QueryContext(ctx, rankQuery(s.table), target, pq.Array(ids), topN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to rank songs")
	}
	defer rows.Close()

	var results []*core.SearchResult
	for rows.Next() {
		var (
			id     int64
			record core.SongRecord
			vector pgvector.Vector
			score  float64
		)
		err := rows.Scan(
			&id,
			&record.Path,
			&record.Title,
			pq.Array(&record.Creators),
			&record.Summary.Key,
			&record.Summary.Mode,
			&record.Summary.Tempo,
			&record.Summary.AverageDuration,
			&record.Summary.Measures,
			pq.Array(&record.Summary.TimeSignatures),
			pq.Array(&record.Summary.ChordProgressions),
			&vector,
			&score,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan ranked song")
		}
		record.Id = core.ID(id)
		record.FeatureVector = vector.Slice()
		results = append(results, &core.SearchResult{Record: &record, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read ranked songs")
	}
	if len(results) == 0 {
		return nil, storage.ErrNoSimilarSongs
	}
	return results, nil
}

// foldTitles lower-cases and trims titles, dropping blanks and duplicates.
func foldTitles(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		f := strings.ToLower(strings.TrimSpace(t))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

package storage

import (
	"context"

	"github.com/poiesic/motif/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds song records whose title vector is similar to vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SimilarityFinder ranks songs by musical similarity to a set of songs
// named by title.
type SimilarityFinder interface {
	// FindSimilarSongs averages the feature vectors of every song whose title
	// matches one of titles (case-insensitive) and returns the topN other
	// songs closest to that average by cosine similarity. Returns
	// ErrNoSimilarSongs when no title matches or nothing can be ranked.
	FindSimilarSongs(ctx context.Context, titles []string, topN int) ([]*core.SearchResult, error)
}

// SongRepository provides operations for managing indexed songs.
type SongRepository interface {
	Repository
	SimilarityFinder

	// UpsertSongs stores records keyed by their content ID. New records get
	// InsertedAt set; existing ones keep it and get UpdatedAt refreshed.
	UpsertSongs(ctx context.Context, records ...*core.SongRecord) ([]*core.SongRecord, error)

	// UpdateSongs updates existing song records.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateSongs(ctx context.Context, records ...*core.SongRecord) ([]*core.SongRecord, error)

	// DeleteSongs removes songs and their title index entries.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteSongs(ctx context.Context, ids ...core.ID) error

	// GetSong retrieves a single song by ID.
	// Returns ErrNotFound if the song doesn't exist.
	GetSong(ctx context.Context, id core.ID) (*core.SongRecord, error)

	// GetSongs retrieves multiple songs by ID, skipping missing ones.
	GetSongs(ctx context.Context, ids ...core.ID) ([]*core.SongRecord, error)

	// FindSongsByTitle returns every song whose title equals title,
	// ignoring case.
	FindSongsByTitle(ctx context.Context, title string) ([]*core.SongRecord, error)

	// GetSongsAfter returns up to limit songs with ID greater than after,
	// ordered by ID. Pass 0 to start from the beginning.
	GetSongsAfter(ctx context.Context, after core.ID, limit int) ([]*core.SongRecord, error)

	// CountSongs returns the number of stored songs.
	CountSongs(ctx context.Context) (int, error)
}

// CheckpointRepository persists progress of resumable batch jobs.
type CheckpointRepository interface {
	// SaveCheckpoint persists checkpoint, replacing any previous one for
	// the same processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for processorType, or nil if
	// none exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for processorType.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}

// FeatureSink receives copies of indexed songs, e.g. a remote feature store.
type FeatureSink interface {
	StoreFeatures(ctx context.Context, records ...*core.SongRecord) error
}

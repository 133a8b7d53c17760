package badger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/storage"
)

// DefaultSimilarSongs is the result count used when FindSimilarSongs is
// called with topN <= 0.
const DefaultSimilarSongs = 5

// SongRepository implements storage.SongRepository for BadgerDB.
type SongRepository struct {
	backend *Backend
}

var _ storage.SongRepository = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository.
func NewSongRepository(backend *Backend) *SongRepository {
	return &SongRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *SongRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *SongRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *SongRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertSongs stores records. Records without an ID get one derived from
// their path.
func (r *SongRepository) UpsertSongs(ctx context.Context, records ...*core.SongRecord) ([]*core.SongRecord, error) {
	for _, record := range records {
		if err := core.ValidateSongRecord(record); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, record := range records {
			if record.Id == 0 {
				record.Id = core.IDFromContent(record.Path)
			}
			key := makeSongKey(record.Id)

			old, err := readSong(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				record.InsertedAt = old.InsertedAt
				if err := tx.Delete(makeTitleKey(old.Title, old.Id)); err != nil {
					return err
				}
			} else if record.InsertedAt.IsZero() {
				record.InsertedAt = now
			}
			record.UpdatedAt = now

			if err := r.writeSong(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateSongs updates existing song records.
func (r *SongRepository) UpdateSongs(ctx context.Context, records ...*core.SongRecord) ([]*core.SongRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeSongKey(record.Id)
			old, err := readSong(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: song %d", storage.ErrNotFound, record.Id)
			}

			record.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
			if old.Title != record.Title {
				if err := tx.Delete(makeTitleKey(old.Title, old.Id)); err != nil {
					return err
				}
			}
			if err := r.writeSong(tx, record); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteSongs removes songs by their IDs.
func (r *SongRepository) DeleteSongs(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSongKey(id)
			record, err := readSong(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("%w: song %d", storage.ErrNotFound, id)
			}
			if err := tx.Delete(makeTitleKey(record.Title, id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSong retrieves a single song by ID.
func (r *SongRepository) GetSong(ctx context.Context, id core.ID) (*core.SongRecord, error) {
	var result *core.SongRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSong(tx, makeSongKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSongs retrieves multiple songs by their IDs.
func (r *SongRepository) GetSongs(ctx context.Context, ids ...core.ID) ([]*core.SongRecord, error) {
	var result []*core.SongRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := readSong(tx, makeSongKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindSongsByTitle scans the title index for title.
func (r *SongRepository) FindSongsByTitle(ctx context.Context, title string) ([]*core.SongRecord, error) {
	var results []*core.SongRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = r.findByTitle(tx, title)
		return err
	}, false)
	return results, err
}

// GetSongsAfter pages through songs in ID order.
func (r *SongRepository) GetSongsAfter(ctx context.Context, after core.ID, limit int) ([]*core.SongRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SongRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(songRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeSongKey(after)); iter.Valid() && len(results) < limit; iter.Next() {
			item := iter.Item()
			if id, ok := songIDFromKey(item.Key()); !ok || id <= after {
				continue
			}
			var record *core.SongRecord
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalSongRecord(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}

// CountSongs counts song keys without reading values.
func (r *SongRepository) CountSongs(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(songRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// FindSimilarSongs ranks every other song against the mean feature vector
// of the songs titled titles.
func (r *SongRepository) FindSimilarSongs(ctx context.Context, titles []string, topN int) ([]*core.SearchResult, error) {
	if topN <= 0 {
		topN = DefaultSimilarSongs
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		inputs := make(map[core.ID]bool)
		var vectors [][]float32
		for _, title := range titles {
			if strings.TrimSpace(title) == "" {
				continue
			}
			matches, err := r.findByTitle(tx, title)
			if err != nil {
				return err
			}
			for _, m := range matches {
				if inputs[m.Id] || len(m.FeatureVector) == 0 {
					continue
				}
				inputs[m.Id] = true
				vectors = append(vectors, m.FeatureVector)
			}
		}
		if len(vectors) == 0 {
			return storage.ErrNoSimilarSongs
		}
		target := storage.MeanVector(vectors)

		return r.backend.forEachSong(tx, func(record *core.SongRecord) error {
			if inputs[record.Id] || len(record.FeatureVector) == 0 {
				return nil
			}
			results = append(results, &core.SearchResult{
				Record: record,
				Score:  storage.CosineSimilarity(target, record.FeatureVector),
			})
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, storage.ErrNoSimilarSongs
	}

	storage.SortByScore(results)
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// Helper methods

func (r *SongRepository) writeSong(tx *badger.Txn, record *core.SongRecord) error {
	if err := tx.Set(makeSongKey(record.Id), storage.MarshalSongRecord(record)); err != nil {
		return err
	}
	return tx.Set(makeTitleKey(record.Title, record.Id), storage.MarshalID(record.Id))
}

func (r *SongRepository) findByTitle(tx *badger.Txn, title string) ([]*core.SongRecord, error) {
	prefix := makePartialTitleKey(title)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var results []*core.SongRecord
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		// The prefix ends in a separator, so longer titles never match.
		if len(key) != len(prefix)+8 || !bytes.HasPrefix(key, prefix) {
			continue
		}
		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		record, err := readSong(tx, makeSongKey(id))
		if err != nil {
			return nil, err
		}
		if record != nil {
			results = append(results, record)
		}
	}
	return results, nil
}

// readSong reads a song record from the transaction.
// Returns nil, nil when the key is missing.
func readSong(tx *badger.Txn, key []byte) (*core.SongRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.SongRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalSongRecord(val)
		return unmarshalErr
	})
	return record, err
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package motif wires the motif components over a badger database: song
// storage, title search, indexing and re-embedding.
package motif

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/motif/ai"
	"github.com/poiesic/motif/ai/openai"
	"github.com/poiesic/motif/corpus"
	"github.com/poiesic/motif/index"
	"github.com/poiesic/motif/ingestion"
	"github.com/poiesic/motif/reembed"
	"github.com/poiesic/motif/search"
	"github.com/poiesic/motif/storage"
	"github.com/poiesic/motif/storage/badger"
)

// Database owns the song store and the embedding provider.
type Database struct {
	backend        *badger.Backend
	songRepo       storage.SongRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider uses provider instead of creating one from the AI config.
// The Database takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// InMemory keeps the database in memory. The file path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the song database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		songs       storage.SongRepository
		checkpoints storage.CheckpointRepository
		backend     *badger.Backend
		err         error
	)
	if options.inMemory {
		songs, checkpoints, backend, err = badger.NewMemoryRepositories()
	} else {
		songs, checkpoints, backend, err = badger.NewRepositories(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:        backend,
		songRepo:       songs,
		checkpointRepo: checkpoints,
		provider:       provider,
		logger:         slog.Default().With("component", "database"),
	}, nil
}

// Close releases the provider and the database.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.songRepo.Close(); err != nil {
		db.logger.Error("error closing song repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) SongRepository() storage.SongRepository {
	return db.songRepo
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewSearcher creates a title searcher over the stored songs.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.songRepo, db.provider, opts...)
}

// BuildTitleIndex loads every stored title vector into an in-memory HNSW
// index, suitable for search.WithIndex.
func (db *Database) BuildTitleIndex(ctx context.Context, opts ...index.Option) (*index.TitleIndex, error) {
	return index.Build(ctx, db.songRepo, opts...)
}

// NewIngestionPipeline creates a resumable pipeline indexing songs read
// through loader.
func (db *Database) NewIngestionPipeline(loader *corpus.Loader, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithCheckpoints(db.checkpointRepo)}, opts...)
	return ingestion.NewPipeline(db.songRepo, loader, db.provider, opts...)
}

// NewReembedder creates a reembedder for every stored title.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.songRepo, db.checkpointRepo, db.provider.Embedder(), config, progress)
}

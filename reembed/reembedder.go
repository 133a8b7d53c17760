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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/motif/ai"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/progress"
	"github.com/poiesic/motif/storage"
)

// CheckpointName identifies reembedding progress in the checkpoint store.
const CheckpointName = "reembed"

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// RequestsPerSecond limits embedding requests. Zero means unlimited.
	RequestsPerSecond float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder recomputes the title embedding of every song in a database.
// With a checkpoint store an interrupted run resumes after the last
// completed batch.
type Reembedder struct {
	repo        storage.SongRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *RecordIterator
	logger      *slog.Logger
}

// NewReembedder creates a new reembedder. checkpoints may be nil.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.SongRepository, checkpoints storage.CheckpointRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if config == nil {
		config = DefaultConfig()
	}

	titles, err := NewTitleEmbedder(embedder, NewLimiter(config.RequestsPerSecond), config.MaxRetries, config.RetryDelay)
	if err != nil {
		return nil, err
	}

	return &Reembedder{
		repo:        repo,
		checkpoints: checkpoints,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(repo, titles),
		iterator:    NewRecordIterator(repo, config.BatchSize),
		logger:      slog.Default().With("component", "reembedder"),
	}, nil
}

// Run re-embeds all song titles in the database, reporting progress to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	totalRecords, err := r.repo.CountSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}
	if totalRecords == 0 {
		fmt.Fprintf(r.progress, "No songs found in database (0 records)\n")
		return nil
	}

	var after core.ID
	processed := 0
	if r.checkpoints != nil {
		cp, err := r.checkpoints.LoadCheckpoint(ctx, CheckpointName)
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			after = cp.LastID
			processed = cp.Processed
			r.logger.Info("resuming from checkpoint", "lastID", after, "processed", processed)
		}
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d songs (batch size: %d)\n",
		totalRecords, r.config.BatchSize)

	tracker := progress.NewTracker(r.progress, "songs", totalRecords, r.config.ReportInterval)
	tracker.Start()
	tracker.Update(processed)

	err = r.iterator.ForEachAfter(ctx, after, func(records []*core.SongRecord) error {
		if err := r.processor.Process(ctx, records); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(records)
		tracker.Update(processed)

		if r.checkpoints != nil {
			cp := &core.Checkpoint{
				ProcessorType: CheckpointName,
				LastID:        records[len(records)-1].Id,
				Processed:     processed,
				UpdatedAt:     time.Now(),
			}
			if err := r.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
				return fmt.Errorf("failed to save checkpoint: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()
	if r.checkpoints != nil {
		if err := r.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
			r.logger.Warn("failed to delete checkpoint", "err", err)
		}
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d songs in %v (%.1f songs/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return nil
}

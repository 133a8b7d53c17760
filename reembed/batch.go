package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/storage"
)

// BatchProcessor re-embeds the titles of a batch of songs and stores the
// new vectors.
type BatchProcessor struct {
	repo   storage.SongRepository
	titles *TitleEmbedder
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.SongRepository, titles *TitleEmbedder) *BatchProcessor {
	return &BatchProcessor{
		repo:   repo,
		titles: titles,
	}
}

// Process embeds the titles of records and updates them in the database.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.SongRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Title
	}

	embeddings, err := bp.titles.Embed(ctx, texts)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].TitleVector = embeddings[i]
	}

	if _, err := bp.repo.UpdateSongs(ctx, records...); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}
	return nil
}

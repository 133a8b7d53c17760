package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/motif/ai"
	"golang.org/x/time/rate"
)

// TitleEmbedder embeds batches of song titles with retry and an optional
// request rate limit. Vectors are normalized to unit length.
type TitleEmbedder struct {
	embedder       ai.Embedder
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewTitleEmbedder creates a TitleEmbedder. A nil limiter disables rate
// limiting.
func NewTitleEmbedder(embedder ai.Embedder, limiter *rate.Limiter, maxRetries int, retryBaseDelay time.Duration) (*TitleEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if maxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	return &TitleEmbedder{
		embedder:       embedder,
		limiter:        limiter,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}, nil
}

// NewLimiter returns a limiter allowing perSecond embedding requests, or
// nil when perSecond is not positive.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Embed returns one unit vector per title, in order.
func (e *TitleEmbedder) Embed(ctx context.Context, titles []string) ([][]float32, error) {
	if len(titles) == 0 {
		return [][]float32{}, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return Permanent(err)
			}
		}
		var err error
		embeddings, err = e.embedder.EmbedTexts(ctx, titles)
		return err
	}, e.maxRetries, e.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries, err)
	}

	if len(embeddings) != len(titles) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(titles), len(embeddings))
	}
	for i := range embeddings {
		embeddings[i] = NormalizeVector(embeddings[i])
	}
	return embeddings, nil
}

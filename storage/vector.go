package storage

import (
	"math"
	"slices"

	"github.com/poiesic/motif/core"
)

// CosineSimilarity compares the common prefix of a and b. Zero vectors have
// similarity 0.
func CosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// MeanVector averages vectors component-wise over the longest length.
// Returns nil for no vectors.
func MeanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	size := 0
	for _, v := range vectors {
		size = max(size, len(v))
	}
	mean := make([]float32, size)
	for _, v := range vectors {
		for i, x := range v {
			mean[i] += x
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}
	return mean
}

// SortByScore orders results by descending score, keeping the input order
// of ties.
func SortByScore(results []*core.SearchResult) {
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
}

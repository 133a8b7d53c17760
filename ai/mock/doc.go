// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder and MockProvider let tests run without an embedding service
// while keeping vectors deterministic.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "Clair de Lune")
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
// # Default Behavior
//
// MockEmbedder returns unit vectors of length Dimension derived from an FNV
// hash of the input text.
package mock

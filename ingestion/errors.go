package ingestion

import "errors"

var (
	// ErrSongRepositoryRequired is returned when a song repository is not provided.
	ErrSongRepositoryRequired = errors.New("song repository required")

	// ErrLoaderRequired is returned when a corpus loader is not provided.
	ErrLoaderRequired = errors.New("corpus loader required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidBatchSize is returned when a batch size below 1 is configured.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)

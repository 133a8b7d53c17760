package index

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// dimension of the vectors already indexed.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector is returned when adding or searching with no vector.
	ErrEmptyVector = errors.New("empty vector")

	// ErrRepositoryRequired is returned when no song repository is given.
	ErrRepositoryRequired = errors.New("song repository is required")
)

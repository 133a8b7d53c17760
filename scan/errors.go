package scan

import "errors"

var (
	// ErrLoaderRequired is returned when a song loader is not provided.
	ErrLoaderRequired = errors.New("song loader required")

	// ErrEmptyPattern is returned when a scan is requested with no events.
	// An empty pattern would match every song that has a track.
	ErrEmptyPattern = errors.New("pattern has no events")

	// ErrMatcherRequired is returned when WithMatcher is given nil.
	ErrMatcherRequired = errors.New("matcher required")
)

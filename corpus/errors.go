package corpus

import "errors"

var (
	// ErrReadSong indicates a corpus file could not be read.
	ErrReadSong = errors.New("failed to read song")

	// ErrMalformedSong indicates a corpus file is not a valid song document.
	ErrMalformedSong = errors.New("malformed song")

	// ErrMissingPathColumn is returned for manifests without a "path" header.
	ErrMissingPathColumn = errors.New("manifest has no path column")

	// ErrMalformedPattern indicates a pattern file could not be decoded.
	ErrMalformedPattern = errors.New("malformed pattern")

	// ErrPathOutsideRoot is returned for manifest paths that escape the data root.
	ErrPathOutsideRoot = errors.New("path outside data root")

	// ErrDataRootRequired is returned when a loader is created without a data root.
	ErrDataRootRequired = errors.New("data root required")
)

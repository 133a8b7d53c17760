package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/motif/core"
)

// Loader reads songs addressed by manifest paths from a data root.
// A Loader is safe for concurrent use.
type Loader struct {
	root     string
	validate bool
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader) error

// WithValidation toggles load-boundary validation of songs. Enabled by default.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) error {
		l.validate = enabled
		return nil
	}
}

// WithLogger sets the logger used by the loader.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger.With("component", "corpus-loader")
		return nil
	}
}

// NewLoader creates a Loader rooted at root.
func NewLoader(root string, opts ...LoaderOption) (*Loader, error) {
	if root == "" {
		return nil, ErrDataRootRequired
	}
	l := &Loader{
		root:     root,
		validate: true,
		logger:   slog.Default().With("component", "corpus-loader"),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Root returns the data root.
func (l *Loader) Root() string {
	return l.root
}

// LoadSong reads and decodes the song at a manifest path.
func (l *Loader) LoadSong(ctx context.Context, path string) (*core.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := ResolvePath(l.root, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSong, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	song, err := decodeSong(data)
	if err != nil {
		return nil, err
	}
	if l.validate {
		if err := core.ValidateSong(song); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedSong, err)
		}
	}
	l.logger.Debug("loaded song", "path", path, "tracks", len(song.Tracks))
	return song, nil
}

// DecodeSong decodes one song document from r.
func DecodeSong(r io.Reader) (*core.Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSong, err)
	}
	return decodeSong(data)
}

func decodeSong(data []byte) (*core.Song, error) {
	var song core.Song
	if err := json.Unmarshal(data, &song); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSong, err)
	}
	return &song, nil
}

package scan

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/pattern"
)

// SongLoader loads a song addressed by a manifest path.
type SongLoader interface {
	LoadSong(ctx context.Context, path string) (*core.Song, error)
}

// Scanner searches corpus files for a pattern.
// A Scanner is safe for concurrent use; concurrent scans share its pool.
type Scanner struct {
	loader      SongLoader
	matcher     *pattern.Matcher
	pool        *ants.Pool
	fileTimeout time.Duration
	monitor     ScanMonitor
	logger      *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner) error

// WithPoolSize sets the number of files scanned concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Scanner) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithMatcher sets the matcher used for every track.
// Default is a pitch-only matcher.
func WithMatcher(m *pattern.Matcher) Option {
	return func(s *Scanner) error {
		if m == nil {
			return ErrMatcherRequired
		}
		s.matcher = m
		return nil
	}
}

// WithFileTimeout bounds the time spent loading a single file.
// Zero disables the deadline.
func WithFileTimeout(d time.Duration) Option {
	return func(s *Scanner) error {
		if d < 0 {
			d = 0
		}
		s.fileTimeout = d
		return nil
	}
}

// WithMonitor installs a default monitor for every scan.
func WithMonitor(m ScanMonitor) Option {
	return func(s *Scanner) error {
		if m == nil {
			m = &noopMonitor{}
		}
		s.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "scanner")
		return nil
	}
}

// NewScanner creates a Scanner reading songs through loader.
func NewScanner(loader SongLoader, opts ...Option) (*Scanner, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}

	matcher, err := pattern.NewMatcher()
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		loader:  loader,
		matcher: matcher,
		monitor: &noopMonitor{},
		logger:  slog.Default().With("component", "scanner"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	if s.pool == nil {
		poolSize := runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}

	return s, nil
}

// Release releases the worker pool.
// The scanner should not be used after calling Release.
func (s *Scanner) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// outcome is the result of scanning one file.
type outcome struct {
	matched bool
	title   string
	err     error
}

// Scan tests pattern against every song in paths.
func (s *Scanner) Scan(ctx context.Context, paths []string, query []core.Event) (*core.MatchResult, error) {
	return s.ScanWithMonitor(ctx, paths, query, s.monitor)
}

// ScanWithMonitor performs a scan reporting to monitor instead of the
// scanner's default monitor.
func (s *Scanner) ScanWithMonitor(ctx context.Context, paths []string, query []core.Event, monitor ScanMonitor) (*core.MatchResult, error) {
	if len(query) == 0 {
		return nil, ErrEmptyPattern
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	runID := uuid.NewString()
	logger := s.logger.With("run", runID)
	started := time.Now()
	monitor.Start(runID, len(paths))
	logger.Info("scan started", "files", len(paths), "pattern_events", len(query))

	outcomes := make([]outcome, len(paths))
	var wg sync.WaitGroup
	var submitErr error
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = s.scanFile(ctx, path, query, logger, monitor)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("scan cancelled", "err", err)
		return nil, err
	}
	if submitErr != nil {
		return nil, submitErr
	}

	result := &core.MatchResult{
		RunID:   runID,
		Matches: make([]core.Match, 0),
		Skipped: make([]core.SkippedFile, 0),
	}
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			result.Skipped = append(result.Skipped, core.SkippedFile{Path: paths[i], Reason: o.err.Error()})
		case o.matched:
			result.Matches = append(result.Matches, core.Match{Path: paths[i], Title: o.title})
		}
	}

	elapsed := time.Since(started)
	monitor.Finish(result, elapsed)
	logger.Info("scan finished",
		"files", len(paths),
		"matches", len(result.Matches),
		"skipped", len(result.Skipped),
		"elapsed", elapsed)
	return result, nil
}

func (s *Scanner) scanFile(ctx context.Context, path string, query []core.Event, logger *slog.Logger, monitor ScanMonitor) outcome {
	if ctx.Err() != nil {
		return outcome{}
	}
	started := time.Now()

	fctx := ctx
	if s.fileTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.fileTimeout)
		defer cancel()
	}

	song, err := s.loader.LoadSong(fctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("file deadline exceeded, skipping", "path", path, "timeout", s.fileTimeout)
		} else {
			logger.Warn("error loading song, skipping", "path", path, "err", err)
		}
		monitor.FileSkipped(path, err)
		return outcome{err: err}
	}

	_, matched := s.MatchSong(song, query)
	monitor.FileScanned(path, matched, time.Since(started))
	if matched {
		logger.Debug("pattern found", "path", path, "title", song.Title())
	}
	return outcome{matched: matched, title: song.Title()}
}

// MatchSong reports the index of the first track of song that contains
// query.
func (s *Scanner) MatchSong(song *core.Song, query []core.Event) (track int, ok bool) {
	for i, t := range song.Tracks {
		if s.matcher.Occurs(pattern.BuildEvents(t.Notes), query) {
			return i, true
		}
	}
	return -1, false
}

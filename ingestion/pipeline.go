package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/motif/ai"
	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/corpus"
	"github.com/poiesic/motif/progress"
	"github.com/poiesic/motif/reembed"
	"github.com/poiesic/motif/storage"
)

const (
	// CheckpointName identifies ingestion progress in the checkpoint store.
	CheckpointName = "ingest"

	// DefaultBatchSize is the number of manifest entries handled per batch.
	DefaultBatchSize = 64
)

// Pipeline indexes songs: it encodes their features, embeds their titles
// and persists the resulting records.
type Pipeline struct {
	songs          storage.SongRepository
	checkpoints    storage.CheckpointRepository
	sink           storage.FeatureSink
	loader         *corpus.Loader
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryDelay     time.Duration
	requestsPerSec float64
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent loading.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion")
		return nil
	}
}

// WithBatchSize sets how many manifest entries are loaded, embedded and
// stored together.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithCheckpoints enables resumable ingestion.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = checkpoints
		return nil
	}
}

// WithFeatureSink mirrors every stored batch to sink.
func WithFeatureSink(sink storage.FeatureSink) Option {
	return func(p *Pipeline) error {
		p.sink = sink
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for title embedding.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithRateLimit caps embedding requests per second. Zero disables the limit.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(p *Pipeline) error {
		p.requestsPerSec = requestsPerSecond
		return nil
	}
}

// WithProgress reports progress to w every interval manifest entries.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.reportInterval = interval
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(songs storage.SongRepository, loader *corpus.Loader, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if songs == nil {
		return nil, ErrSongRepositoryRequired
	}
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		songs:          songs,
		loader:         loader,
		embedder:       provider.Embedder(),
		pool:           pool,
		batchSize:      DefaultBatchSize,
		maxRetries:     3,
		retryDelay:     time.Second,
		progress:       io.Discard,
		reportInterval: 100,
		logger:         slog.Default().With("component", "ingestion"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Report summarizes an ingestion run.
type Report struct {
	RunID   string
	Indexed int
	// Resumed is the number of manifest entries skipped because a previous
	// run had already processed them.
	Resumed int
	Skipped []core.SkippedFile
	Elapsed time.Duration
}

// Ingest indexes the songs at paths. Files that cannot be loaded are
// recorded in the report and skipped. Embedding or storage failures abort
// the run; with checkpoints enabled the next run resumes after the last
// stored batch.
func (p *Pipeline) Ingest(ctx context.Context, paths []string) (*Report, error) {
	titles, err := reembed.NewTitleEmbedder(p.embedder, reembed.NewLimiter(p.requestsPerSec), p.maxRetries, p.retryDelay)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), Skipped: make([]core.SkippedFile, 0)}
	logger := p.logger.With("run", report.RunID)
	started := time.Now()

	offset, err := p.resumeOffset(ctx, len(paths))
	if err != nil {
		return nil, err
	}
	report.Resumed = offset
	if offset > 0 {
		logger.Info("resuming from checkpoint", "processed", offset)
	}
	logger.Info("ingestion started", "files", len(paths), "batch_size", p.batchSize)

	tracker := progress.NewTracker(p.progress, "songs", len(paths), p.reportInterval)
	tracker.Start()
	tracker.Update(offset)

	for start := offset; start < len(paths); start += p.batchSize {
		end := min(start+p.batchSize, len(paths))
		records, skipped, err := p.loadBatch(ctx, paths[start:end])
		if err != nil {
			return nil, err
		}
		report.Skipped = append(report.Skipped, skipped...)

		stored, err := p.storeBatch(ctx, titles, records)
		if err != nil {
			return nil, fmt.Errorf("failed to store batch at entry %d: %w", start, err)
		}
		report.Indexed += stored

		if err := p.saveCheckpoint(ctx, records, end); err != nil {
			return nil, err
		}
		tracker.Update(end)
		logger.Debug("batch stored", "entries", end-start, "indexed", stored)
	}
	tracker.Finish()

	if p.checkpoints != nil {
		if err := p.checkpoints.DeleteCheckpoint(ctx, CheckpointName); err != nil {
			logger.Warn("failed to delete checkpoint", "err", err)
		}
	}

	report.Elapsed = time.Since(started)
	logger.Info("ingestion finished",
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
		"resumed", report.Resumed,
		"elapsed", report.Elapsed)
	return report, nil
}

// resumeOffset returns the number of manifest entries a previous run
// completed, or 0.
func (p *Pipeline) resumeOffset(ctx context.Context, total int) (int, error) {
	if p.checkpoints == nil {
		return 0, nil
	}
	cp, err := p.checkpoints.LoadCheckpoint(ctx, CheckpointName)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp == nil || cp.Processed > total {
		return 0, nil
	}
	return cp.Processed, nil
}

func (p *Pipeline) saveCheckpoint(ctx context.Context, records []*core.SongRecord, processed int) error {
	if p.checkpoints == nil {
		return nil
	}
	cp := &core.Checkpoint{
		ProcessorType: CheckpointName,
		Processed:     processed,
		UpdatedAt:     time.Now(),
	}
	if len(records) > 0 {
		cp.LastID = records[len(records)-1].Id
	}
	if err := p.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// loadBatch loads and encodes paths concurrently. Records keep the order of
// paths; files that fail are returned as skipped.
func (p *Pipeline) loadBatch(ctx context.Context, paths []string) ([]*core.SongRecord, []core.SkippedFile, error) {
	records := make([]*core.SongRecord, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	var submitErr error
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			records[i], errs[i] = buildRecord(ctx, p.loader, path)
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if submitErr != nil {
		return nil, nil, submitErr
	}

	loaded := make([]*core.SongRecord, 0, len(paths))
	var skipped []core.SkippedFile
	for i, err := range errs {
		if err != nil {
			p.logger.Warn("skipping song", "path", paths[i], "err", err)
			skipped = append(skipped, core.SkippedFile{Path: paths[i], Reason: err.Error()})
			continue
		}
		loaded = append(loaded, records[i])
	}
	return loaded, skipped, nil
}

// storeBatch embeds titles and upserts records, then mirrors them to the
// feature sink.
func (p *Pipeline) storeBatch(ctx context.Context, titles *reembed.TitleEmbedder, records []*core.SongRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Title
	}
	vectors, err := titles.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	for i := range records {
		records[i].TitleVector = vectors[i]
	}

	stored, err := p.songs.UpsertSongs(ctx, records...)
	if err != nil {
		return 0, err
	}
	if p.sink != nil {
		if err := p.sink.StoreFeatures(ctx, stored...); err != nil {
			return 0, fmt.Errorf("failed to mirror features: %w", err)
		}
	}
	return len(stored), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

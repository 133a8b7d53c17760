package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/motif"
	"github.com/poiesic/motif/config"
	"github.com/poiesic/motif/corpus"
	"github.com/poiesic/motif/ingestion"
	"github.com/poiesic/motif/metrics"
	"github.com/poiesic/motif/midi"
	"github.com/poiesic/motif/pattern"
	"github.com/poiesic/motif/reembed"
	"github.com/poiesic/motif/scan"
	"github.com/poiesic/motif/search"
	"github.com/poiesic/motif/server"
	"github.com/poiesic/motif/storage"
	"github.com/poiesic/motif/storage/postgres"
	"github.com/urfave/cli/v2"
)

// loadConfig merges the configuration file, environment and command flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, err
	}

	strFlags := map[string]*string{
		"db":              &cfg.Database,
		"data-root":       &cfg.DataRoot,
		"manifest":        &cfg.Manifest,
		"postgres-dsn":    &cfg.Postgres.DSN,
		"embedding-host":  &cfg.Embedding.Host,
		"embedding-model": &cfg.Embedding.Model,
		"addr":            &cfg.Server.Addr,
	}
	for name, dst := range strFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("workers") {
		cfg.Scan.Workers = c.Int("workers")
	}
	if c.IsSet("file-timeout") {
		cfg.Scan.FileTimeout = c.Duration("file-timeout")
	}
	if c.IsSet("rps") {
		cfg.Embedding.RequestsPerSecond = c.Float64("rps")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*motif.Database, error) {
	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	db, err := motif.NewDatabase(cfg.Database, motif.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func openFeatureStore(ctx context.Context, cfg *config.Config) (*postgres.FeatureStore, error) {
	store, err := postgres.Open(ctx, cfg.Postgres.DSN, postgres.WithTable(cfg.Postgres.Table))
	if err != nil {
		return nil, fmt.Errorf("failed to open feature store: %w", err)
	}
	return store, nil
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

// buildPolicy turns attribute names into a comparison policy. A positive
// tolerance relaxes integer attributes.
func buildPolicy(names []string, tolerance int) (pattern.Policy, error) {
	if tolerance < 0 {
		return nil, pattern.ErrNegativeTolerance
	}
	policy := make(pattern.Policy, 0, len(names))
	for _, name := range names {
		attr, err := pattern.ParseAttribute(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if tolerance > 0 {
			policy = append(policy, pattern.Within(attr, tolerance))
		} else {
			policy = append(policy, pattern.Exact(attr))
		}
	}
	return policy, nil
}

func findCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one pattern file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	query, err := corpus.LoadPattern(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to load pattern: %w", err)
	}
	paths, err := corpus.ReadManifestFile(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	loader, err := corpus.NewLoader(cfg.DataRoot)
	if err != nil {
		return err
	}

	policy, err := buildPolicy(c.StringSlice("attr"), c.Int("tolerance"))
	if err != nil {
		return err
	}
	matcher, err := pattern.NewMatcher(pattern.WithPolicy(policy))
	if err != nil {
		return err
	}
	opts := []scan.Option{scan.WithMatcher(matcher)}
	if cfg.Scan.Workers > 0 {
		opts = append(opts, scan.WithPoolSize(cfg.Scan.Workers))
	}
	if cfg.Scan.FileTimeout > 0 {
		opts = append(opts, scan.WithFileTimeout(cfg.Scan.FileTimeout))
	}
	scanner, err := scan.NewScanner(loader, opts...)
	if err != nil {
		return err
	}
	defer scanner.Release()

	ctx, stop := signalContext(c)
	defer stop()
	result, err := scanner.Scan(ctx, paths, query)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	for _, m := range result.Matches {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", m.Path, m.Title)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d of %d songs matched, %d skipped\n",
		len(result.Matches), len(paths), len(result.Skipped))
	return nil
}

func manifestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	paths, err := corpus.Walk(cfg.DataRoot, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", cfg.DataRoot, err)
	}

	var w io.Writer = c.App.Writer
	if out := c.String("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := corpus.WriteManifest(w, paths); err != nil {
		return err
	}
	slog.Info("manifest written", "paths", len(paths))
	return nil
}

func indexCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(c)
	defer stop()

	paths, err := corpus.ReadManifestFile(cfg.Manifest)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	loader, err := corpus.NewLoader(cfg.DataRoot)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithRateLimit(cfg.Embedding.RequestsPerSecond),
		ingestion.WithProgress(c.App.ErrWriter, 100),
	}
	if cfg.Scan.Workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(cfg.Scan.Workers))
	}
	if cfg.Postgres.DSN != "" {
		store, err := openFeatureStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		opts = append(opts, ingestion.WithFeatureSink(store))
	}

	pipeline, err := db.NewIngestionPipeline(loader, opts...)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	report, err := pipeline.Ingest(ctx, paths)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(c.App.ErrWriter, "skipped %s: %s\n", s.Path, s.Reason)
	}
	fmt.Fprintf(c.App.ErrWriter, "Indexed %d songs (%d skipped, %d already done) in %v\n",
		report.Indexed, len(report.Skipped), report.Resumed, report.Elapsed.Round(time.Millisecond))
	return nil
}

func newSearcher(ctx context.Context, c *cli.Context, db *motif.Database, opts ...search.Option) (*search.Searcher, error) {
	if c.Bool("hnsw") {
		idx, err := db.BuildTitleIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to build title index: %w", err)
		}
		opts = append(opts, search.WithIndex(idx))
	}
	return db.NewSearcher(opts...)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return errors.New("a search query is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signalContext(c)
	defer stop()
	searcher, err := newSearcher(ctx, c, db)
	if err != nil {
		return err
	}

	titles, err := searcher.FindTitles(ctx, query, c.Int("max-results"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	for _, title := range titles {
		fmt.Fprintln(c.App.Writer, title)
	}
	return nil
}

func similarCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one title is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(c)
	defer stop()

	var finder storage.SimilarityFinder
	if cfg.Postgres.DSN != "" {
		store, err := openFeatureStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		finder = store
	} else {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		finder = db.SongRepository()
	}

	results, err := finder.FindSimilarSongs(ctx, c.Args().Slice(), c.Int("top-n"))
	if errors.Is(err, storage.ErrNoSimilarSongs) {
		fmt.Fprintln(c.App.ErrWriter, "No similar songs found.")
		return nil
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(c.App.Writer, "%.4f\t%s\t%s\n", r.Score, r.Record.Title, r.Record.Path)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	reembedConfig := &reembed.Config{
		BatchSize:         c.Int("batch-size"),
		ReportInterval:    c.Int("report-interval"),
		MaxRetries:        c.Int("max-retries"),
		RetryDelay:        c.Duration("retry-delay"),
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	ctx, stop := signalContext(c)
	defer stop()
	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one song path is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	loader, err := corpus.NewLoader(cfg.DataRoot)
	if err != nil {
		return err
	}
	song, err := loader.LoadSong(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	f, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	if err := midi.WriteSong(f, song); err != nil {
		f.Close()
		return fmt.Errorf("failed to write MIDI: %w", err)
	}
	return f.Close()
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(c)
	defer stop()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var searchOpts []search.Option
	if cfg.Postgres.DSN != "" {
		store, err := openFeatureStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		searchOpts = append(searchOpts, search.WithSimilarityFinder(store))
	}
	searcher, err := newSearcher(ctx, c, db, searchOpts...)
	if err != nil {
		return err
	}

	loader, err := corpus.NewLoader(cfg.DataRoot)
	if err != nil {
		return err
	}
	var scanOpts []scan.Option
	if cfg.Scan.Workers > 0 {
		scanOpts = append(scanOpts, scan.WithPoolSize(cfg.Scan.Workers))
	}
	if cfg.Scan.FileTimeout > 0 {
		scanOpts = append(scanOpts, scan.WithFileTimeout(cfg.Scan.FileTimeout))
	}
	scanner, err := scan.NewScanner(loader, scanOpts...)
	if err != nil {
		return err
	}
	defer scanner.Release()

	manifest, err := corpus.ReadManifestFile(cfg.Manifest)
	if err != nil {
		slog.Warn("no manifest loaded; match requests must name paths", "manifest", cfg.Manifest, "err", err)
	}

	srv, err := server.New(searcher, scanner,
		server.WithManifest(manifest),
		server.WithMetrics(metrics.NewCollector(metrics.DefaultConfig())),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
	)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

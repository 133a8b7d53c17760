package metrics

import (
	"net/http"
	"time"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/scan"
	"github.com/poiesic/motif/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "motif"

// Scan file outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeUnmatched = "unmatched"
	OutcomeSkipped   = "skipped"
)

// Config configures a Collector.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}
}

// Collector holds the motif metrics.
type Collector struct {
	registry *prometheus.Registry

	scanRuns        prometheus.Counter
	scanFiles       *prometheus.CounterVec
	scanFileLatency prometheus.Histogram
	scanDuration    prometheus.Histogram

	searches      *prometheus.CounterVec
	searchLatency *prometheus.HistogramVec
	searchResults prometheus.Histogram
	verbatimHits  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(cfg Config) *Collector {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}

	c.scanRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "runs_total",
		Help:      "Total number of pattern scans",
	})
	c.scanFiles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "files_total",
		Help:      "Songs examined by pattern scans, by outcome",
	}, []string{"outcome"})
	c.scanFileLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "file_seconds",
		Help:      "Time to load and match one song",
		Buckets:   cfg.LatencyBuckets,
	})
	c.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scan",
		Name:      "duration_seconds",
		Help:      "Pattern scan duration in seconds",
		Buckets:   cfg.LatencyBuckets,
	})

	c.searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Total number of searches, by kind and status",
	}, []string{"kind", "status"})
	c.searchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "latency_seconds",
		Help:      "Search latency in seconds",
		Buckets:   cfg.LatencyBuckets,
	}, []string{"kind"})
	c.searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "results",
		Help:      "Number of results returned by title searches",
		Buckets:   prometheus.LinearBuckets(0, 5, 6),
	})
	c.verbatimHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "search",
		Name:      "verbatim_hits_total",
		Help:      "Results boosted because the title contains every query word",
	})

	registry.MustRegister(
		c.scanRuns, c.scanFiles, c.scanFileLatency, c.scanDuration,
		c.searches, c.searchLatency, c.searchResults, c.verbatimHits,
	)
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveSearch records a search of kind that took elapsed and failed when
// err is non-nil.
func (c *Collector) ObserveSearch(kind string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.searches.WithLabelValues(kind, status).Inc()
	c.searchLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ScanMonitor returns a scan.ScanMonitor feeding this collector. It is safe
// to share between concurrent scans.
func (c *Collector) ScanMonitor() scan.ScanMonitor {
	return &scanMonitor{c: c}
}

// SearchMonitor returns a search.SearchMonitor for a single title search.
func (c *Collector) SearchMonitor() search.SearchMonitor {
	return &searchMonitor{c: c}
}

type scanMonitor struct {
	c *Collector
}

var _ scan.ScanMonitor = (*scanMonitor)(nil)

func (m *scanMonitor) Start(_ string, _ int) {
	m.c.scanRuns.Inc()
}

func (m *scanMonitor) FileSkipped(_ string, _ error) {
	m.c.scanFiles.WithLabelValues(OutcomeSkipped).Inc()
}

func (m *scanMonitor) FileScanned(_ string, matched bool, elapsed time.Duration) {
	outcome := OutcomeUnmatched
	if matched {
		outcome = OutcomeMatched
	}
	m.c.scanFiles.WithLabelValues(outcome).Inc()
	m.c.scanFileLatency.Observe(elapsed.Seconds())
}

func (m *scanMonitor) Finish(_ *core.MatchResult, elapsed time.Duration) {
	m.c.scanDuration.Observe(elapsed.Seconds())
}

// searchMonitor times one search from Start to Finish.
type searchMonitor struct {
	c       *Collector
	started time.Time
}

var _ search.SearchMonitor = (*searchMonitor)(nil)

func (m *searchMonitor) Start(_ string) {
	m.started = time.Now()
}

func (m *searchMonitor) AfterEmbedding(_ int) {}

func (m *searchMonitor) AfterCandidateSearch(_ []*core.SearchResult) {}

func (m *searchMonitor) VerbatimHit(_ *core.SongRecord) {
	m.c.verbatimHits.Inc()
}

func (m *searchMonitor) Finish(results []*core.SearchResult) {
	m.c.searchResults.Observe(float64(len(results)))
	m.c.ObserveSearch("title", time.Since(m.started), nil)
}

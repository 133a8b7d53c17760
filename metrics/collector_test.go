package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/motif/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMonitor(t *testing.T) {
	c := NewCollector(DefaultConfig())
	m := c.ScanMonitor()

	m.Start("run-1", 3)
	m.FileScanned("./a.json", true, 2*time.Millisecond)
	m.FileScanned("./b.json", false, time.Millisecond)
	m.FileSkipped("./c.json", errors.New("malformed"))
	m.Finish(&core.MatchResult{}, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.scanRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scanFiles.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scanFiles.WithLabelValues(OutcomeUnmatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scanFiles.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.scanDuration))
}

func TestSearchMonitor(t *testing.T) {
	c := NewCollector(Config{})
	m := c.SearchMonitor()

	m.Start("nocturne")
	m.AfterEmbedding(384)
	m.VerbatimHit(&core.SongRecord{Title: "Nocturne"})
	m.Finish([]*core.SearchResult{{}, {}})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.verbatimHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("title", "ok")))
}

func TestObserveSearch(t *testing.T) {
	c := NewCollector(DefaultConfig())
	c.ObserveSearch("similar", time.Millisecond, nil)
	c.ObserveSearch("similar", time.Millisecond, errors.New("no match"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("similar", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("similar", "error")))
}

func TestHandler(t *testing.T) {
	c := NewCollector(DefaultConfig())
	c.ScanMonitor().Start("run", 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "motif_scan_runs_total 1")
}

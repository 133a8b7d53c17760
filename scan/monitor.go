package scan

import (
	"time"

	"github.com/poiesic/motif/core"
)

// ScanMonitor provides hooks to observe a corpus scan. Per-file hooks are
// called from worker goroutines, so implementations must be safe for
// concurrent use.
type ScanMonitor interface {
	Start(runID string, total int)
	FileSkipped(path string, err error)
	FileScanned(path string, matched bool, elapsed time.Duration)
	Finish(result *core.MatchResult, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of ScanMonitor
type noopMonitor struct{}

var _ ScanMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int) {}
func (n *noopMonitor) FileSkipped(_ string, _ error) {}
func (n *noopMonitor) FileScanned(_ string, _ bool, _ time.Duration) {}
func (n *noopMonitor) Finish(_ *core.MatchResult, _ time.Duration) {}

type multiMonitor []ScanMonitor

// MultiMonitor fans every hook out to monitors in order.
func MultiMonitor(monitors ...ScanMonitor) ScanMonitor {
	return multiMonitor(monitors)
}

func (m multiMonitor) Start(runID string, total int) {
	for _, mon := range m {
		mon.Start(runID, total)
	}
}

func (m multiMonitor) FileSkipped(path string, err error) {
	for _, mon := range m {
		mon.FileSkipped(path, err)
	}
}

func (m multiMonitor) FileScanned(path string, matched bool, elapsed time.Duration) {
	for _, mon := range m {
		mon.FileScanned(path, matched, elapsed)
	}
}

func (m multiMonitor) Finish(result *core.MatchResult, elapsed time.Duration) {
	for _, mon := range m {
		mon.Finish(result, elapsed)
	}
}

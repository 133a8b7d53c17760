package search

import "github.com/poiesic/motif/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(dims int)
	AfterCandidateSearch(candidates []*core.SearchResult)
	VerbatimHit(record *core.SongRecord)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterEmbedding(_ int)                       {}
func (n *noopMonitor) AfterCandidateSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) VerbatimHit(_ *core.SongRecord)             {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)              {}

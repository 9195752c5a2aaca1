package search

import (
	"github.com/poiesic/coursematch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	// Start receives the query text, or the course code of a similarity lookup.
	Start(query string)
	// AfterEncode receives the vocabulary terms present in the query vector.
	AfterEncode(terms []string)
	// AfterRank receives the ranked corpus positions before they are resolved to courses.
	AfterRank(scored []Scored)
	Hit(result *core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                {}
func (n *noopMonitor) AfterEncode(_ []string)        {}
func (n *noopMonitor) AfterRank(_ []Scored)          {}
func (n *noopMonitor) Hit(_ *core.SearchResult)      {}
func (n *noopMonitor) Finish(_ []*core.SearchResult) {}

package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/coursematch/cache"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/vectorspace"
)

// SpaceProvider supplies the current vector space.
type SpaceProvider interface {
	Get(ctx context.Context) (*cache.Space, error)
}

// Searcher answers text and similarity queries over a course catalog.
type Searcher struct {
	spaces SpaceProvider
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(spaces SpaceProvider, opts ...Option) (*Searcher, error) {
	if spaces == nil {
		return nil, ErrSpaceProviderRequired
	}

	s := &Searcher{
		spaces: spaces,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "search")

	return s, nil
}

// FindSimilar returns up to maxHits courses ranked by similarity to query.
// A query without any vocabulary term returns no results.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor is FindSimilar with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	space, err := s.spaces.Get(ctx)
	if err != nil {
		s.logger.Error("error loading vector space", "err", err)
		return nil, err
	}

	q := space.Model.Encode(query)
	monitor.AfterEncode(matchedTerms(space.Model, q))

	scored := Rank(q, space.Matrix, maxHits, NoExclusion)
	monitor.AfterRank(scored)

	results := resolve(space, scored, monitor)
	monitor.Finish(results)

	s.logger.Debug("search complete", "query", query, "maxHits", maxHits, "results", len(results))
	return results, nil
}

// SimilarTo returns up to maxHits courses ranked by similarity to the course
// with the given code, which is itself never part of the result.
// Returns core.ErrUnknownCourse if no course has that code.
func (s *Searcher) SimilarTo(ctx context.Context, code string, maxHits int) ([]*core.SearchResult, error) {
	return s.SimilarToWithMonitor(ctx, code, maxHits, nil)
}

// SimilarToWithMonitor is SimilarTo with monitoring.
func (s *Searcher) SimilarToWithMonitor(ctx context.Context, code string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(code)

	space, err := s.spaces.Get(ctx)
	if err != nil {
		s.logger.Error("error loading vector space", "err", err)
		return nil, err
	}

	_, index, ok := space.Course(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCourse, code)
	}

	q := space.Matrix[index]
	monitor.AfterEncode(matchedTerms(space.Model, q))

	scored := Rank(q, space.Matrix, maxHits, index)
	monitor.AfterRank(scored)

	results := resolve(space, scored, monitor)
	monitor.Finish(results)

	s.logger.Debug("similarity lookup complete", "code", code, "maxHits", maxHits, "results", len(results))
	return results, nil
}

// Course returns the record of the course with the given code.
// Returns core.ErrUnknownCourse if no course has that code.
func (s *Searcher) Course(ctx context.Context, code string) (*core.CourseRecord, error) {
	space, err := s.spaces.Get(ctx)
	if err != nil {
		return nil, err
	}
	record, _, ok := space.Course(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownCourse, code)
	}
	return &record, nil
}

// resolve turns ranked positions into numbered results.
func resolve(space *cache.Space, scored []Scored, monitor SearchMonitor) []*core.SearchResult {
	results := make([]*core.SearchResult, 0, len(scored))
	for i, hit := range scored {
		result := &core.SearchResult{
			Course: space.Corpus.Records[hit.Index],
			Score:  hit.Score,
			Rank:   i + 1,
		}
		monitor.Hit(result)
		results = append(results, result)
	}
	return results
}

func matchedTerms(model *vectorspace.Model, v vectorspace.Vector) []string {
	indices, _ := v.Sparse()
	terms := make([]string, len(indices))
	for i, idx := range indices {
		terms[i] = model.Term(idx)
	}
	return terms
}

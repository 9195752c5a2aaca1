// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package coursematch recommends university courses by matching free-text
// queries against a catalog of course descriptions in a TF-IDF vector space.
//
// A Recommender ties the pieces together: a corpus.Source supplies the
// catalog, the cache package fits and persists the vector space, and the
// search package ranks courses against queries or against each other.
//
//	rec, err := coursematch.NewRecommender(corpus.NewCSVSource("courses.csv"),
//	    coursematch.WithDatabasePath("/var/lib/coursematch"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Close()
//
//	results, err := rec.Search(ctx, "neural networks and regression", 5)
package coursematch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/coursematch/cache"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/corpus"
	"github.com/poiesic/coursematch/embedding"
	"github.com/poiesic/coursematch/metrics"
	"github.com/poiesic/coursematch/search"
	"github.com/poiesic/coursematch/storage"
	"github.com/poiesic/coursematch/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrSourceRequired is returned when a Recommender is created without a corpus source.
var ErrSourceRequired = errors.New("corpus source required")

// Recommender is the query surface of a course catalog: it owns the vector
// space cache, its persistence and the searchers built on top of it.
// Several independent instances may live in one process.
type Recommender struct {
	repo         storage.SpaceRepository
	closeBackend func() error
	cache        *cache.Cache
	searcher     *search.Searcher
	embedder     *embedding.Embedder
	metrics      *metrics.Metrics
	logger       *slog.Logger
	closeOnce    sync.Once
}

// Option configures a Recommender.
type Option func(*options)

type options struct {
	dbPath        string
	repo          storage.SpaceRepository
	noPersistence bool
	cacheOpts     []cache.Option
	registerer    prometheus.Registerer
	logger        *slog.Logger
}

// WithDatabasePath persists the vector space in a badger database at path.
// Without it the space is kept in an in-memory badger database.
func WithDatabasePath(path string) Option {
	return func(o *options) {
		o.dbPath = path
	}
}

// WithRepository persists the vector space in repo. The caller keeps
// ownership of repo; Close does not close it.
func WithRepository(repo storage.SpaceRepository) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithoutPersistence keeps the vector space in process memory only.
func WithoutPersistence() Option {
	return func(o *options) {
		o.noPersistence = true
	}
}

// WithBuildConfig sets the vector space build configuration.
func WithBuildConfig(config core.BuildConfig) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, cache.WithBuildConfig(config))
	}
}

// WithWorkers encodes the corpus on n workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, cache.WithWorkers(n))
	}
}

// WithProgress reports each build phase to w, redrawing the encode line
// every interval courses.
func WithProgress(w io.Writer, interval int) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, cache.WithProgress(w, interval))
	}
}

// WithMetrics registers Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewRecommender creates a Recommender over source. The vector space is built
// lazily on the first query, or eagerly by Rebuild.
func NewRecommender(source corpus.Source, opts ...Option) (*Recommender, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recommender{logger: logger}

	switch {
	case options.noPersistence:
	case options.repo != nil:
		r.repo = options.repo
	default:
		backend, err := badger.OpenBackend(options.dbPath, options.dbPath == "", badger.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		r.repo = badger.NewSpaceRepository(backend)
		r.closeBackend = backend.Close
	}

	cacheOpts := append([]cache.Option{cache.WithLogger(logger)}, options.cacheOpts...)
	c, err := cache.New(source, r.repo, cacheOpts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.cache = c

	r.searcher, err = search.NewSearcher(c, search.WithLogger(logger))
	if err != nil {
		r.Close()
		return nil, err
	}
	r.embedder, err = embedding.NewEmbedder(c, embedding.WithLogger(logger))
	if err != nil {
		r.Close()
		return nil, err
	}

	if options.registerer != nil {
		r.metrics = metrics.New(options.registerer)
	}

	return r, nil
}

// Search returns up to topK courses ranked by similarity to query.
// An empty query, a query without known terms or topK <= 0 yields no results.
func (r *Recommender) Search(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	started := time.Now()
	results, err := r.searcher.FindSimilar(ctx, query, topK)
	r.metrics.ObserveQuery(metrics.KindSearch, time.Since(started), len(results), err)
	return results, err
}

// Similar returns up to topK courses most similar to the course with code,
// excluding that course. Returns core.ErrUnknownCourse for an unknown code.
func (r *Recommender) Similar(ctx context.Context, code string, topK int) ([]*core.SearchResult, error) {
	started := time.Now()
	results, err := r.searcher.SimilarTo(ctx, code, topK)
	r.metrics.ObserveQuery(metrics.KindSimilar, time.Since(started), len(results), err)
	return results, err
}

// Course returns the catalog record of the course with code.
func (r *Recommender) Course(ctx context.Context, code string) (*core.CourseRecord, error) {
	return r.searcher.Course(ctx, code)
}

// Status reports on the vector space, building it first if necessary.
func (r *Recommender) Status(ctx context.Context) (core.Status, error) {
	if _, err := r.cache.Get(ctx); err != nil {
		return core.Status{}, err
	}
	status := r.cache.Status()
	r.metrics.SetStatus(status)
	return status, nil
}

// Rebuild reloads the catalog and refreshes the vector space. With force the
// space is always refitted, even when the catalog has not changed.
func (r *Recommender) Rebuild(ctx context.Context, force bool) error {
	started := time.Now()
	err := r.cache.Rebuild(ctx, force)
	r.metrics.ObserveRebuild(time.Since(started), r.cache.Status(), err)
	return err
}

// Invalidate deletes the persisted vector space.
func (r *Recommender) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx)
}

// Searcher returns the searcher used by the recommender.
func (r *Recommender) Searcher() *search.Searcher {
	return r.searcher
}

// Embedder returns a langchaingo-compatible embedder over the vector space.
func (r *Recommender) Embedder() *embedding.Embedder {
	return r.embedder
}

// Close releases the storage owned by the recommender. It is safe to call
// more than once.
func (r *Recommender) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.closeBackend == nil {
			return
		}
		if err = r.closeBackend(); err != nil {
			r.logger.Error("error closing backend storage", "err", err)
		}
	})
	return err
}

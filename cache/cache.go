package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/corpus"
	"github.com/poiesic/coursematch/storage"
	"github.com/poiesic/coursematch/vectorspace"
)

// Cache builds, persists and publishes the vector space of a corpus.
type Cache struct {
	source corpus.Source
	repo   storage.SpaceRepository
	config core.BuildConfig
	logger *slog.Logger

	workers          int
	pool             *ants.Pool
	progress         io.Writer
	progressInterval int
	policy           PersistPolicy
	now              func() time.Time

	current atomic.Pointer[Space]
	mu      sync.Mutex
}

// New creates a Cache over source. repo may be nil, in which case spaces live
// in memory only and are refitted by every new Cache.
func New(source corpus.Source, repo storage.SpaceRepository, opts ...Option) (*Cache, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	c := &Cache{
		source:           source,
		repo:             repo,
		config:           core.DefaultBuildConfig(),
		logger:           slog.Default(),
		progressInterval: defaultProgressInterval,
		policy:           DefaultPersistPolicy(),
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if err := c.policy.Validate(); err != nil {
		return nil, err
	}
	c.logger = c.logger.With("component", "cache")

	return c, nil
}

// Config returns the build configuration of the cache.
func (c *Cache) Config() core.BuildConfig {
	return c.config
}

// Current returns the published space, or nil if nothing has been built yet.
// It never blocks.
func (c *Cache) Current() *Space {
	return c.current.Load()
}

// Get returns the published space, building it first if necessary.
func (c *Cache) Get(ctx context.Context) (*Space, error) {
	if space := c.current.Load(); space != nil {
		return space, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if space := c.current.Load(); space != nil {
		return space, nil
	}
	if err := c.rebuild(ctx, false); err != nil {
		return nil, err
	}
	return c.current.Load(), nil
}

// Status reports on the published space. Before the first build it returns
// the zero Status.
func (c *Cache) Status() core.Status {
	space := c.current.Load()
	if space == nil {
		return core.Status{}
	}
	return space.Status()
}

// Rebuild reloads the corpus and brings the published space up to date.
//
// Without force, a published space that still matches the corpus is kept and
// a matching persisted space is restored instead of refitting. With force the
// space is always fitted again. On error the previously published space, if
// any, stays in place.
func (c *Cache) Rebuild(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuild(ctx, force)
}

// Invalidate deletes the persisted space. The published space is unaffected
// but is no longer reported as fresh.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repo == nil {
		return nil
	}
	if err := c.repo.DeleteSpace(ctx); err != nil {
		return fmt.Errorf("delete persisted space: %w", err)
	}
	if space := c.current.Load(); space != nil && space.Persisted {
		clone := *space
		clone.Persisted = false
		c.current.Store(&clone)
	}
	return nil
}

// rebuild must be called with c.mu held.
func (c *Cache) rebuild(ctx context.Context, force bool) error {
	records, err := c.source.Records(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	corp, err := corpus.Load(records)
	if err != nil {
		return err
	}
	fingerprint := corp.Fingerprint()

	if !force {
		if cur := c.current.Load(); cur != nil && cur.Fingerprint == fingerprint && cur.Model.Config() == c.config {
			if !cur.Persisted && c.repo != nil && c.persist(ctx, cur, nil) {
				c.current.Store(cur.withPersisted())
			}
			c.logger.Debug("vector space up to date", "courses", corp.Len())
			return nil
		}

		space, err := c.restore(ctx, corp)
		switch {
		case err == nil && space != nil:
			c.current.Store(space)
			c.logger.Info("restored vector space",
				"courses", space.Len(),
				"terms", space.Model.Size(),
				"builtAt", space.BuiltAt)
			return nil
		case errors.Is(err, core.ErrCacheMismatch):
			c.logger.Debug("persisted vector space is stale", "error", err)
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.logger.Warn("failed to load persisted vector space", "error", err)
		}
	}

	return c.refit(ctx, corp, fingerprint)
}

// refit fits, persists and publishes a new space for corp.
func (c *Cache) refit(ctx context.Context, corp *corpus.Corpus, fingerprint core.Fingerprint) (err error) {
	report := newBuildReport(c.progress, corp.Len(), c.progressInterval)
	defer func() { report.finish(err) }()

	space, err := c.build(ctx, corp, fingerprint, report)
	if err != nil {
		return err
	}
	if c.repo != nil && c.persist(ctx, space, report) {
		space.Persisted = true
	}
	c.current.Store(space)
	c.logger.Info("built vector space",
		"courses", space.Len(),
		"terms", space.Model.Size(),
		"persisted", space.Persisted)
	return nil
}

// restore loads the persisted space if it matches corp.
// Returns nil, nil when nothing is persisted.
func (c *Cache) restore(ctx context.Context, corp *corpus.Corpus) (*Space, error) {
	if c.repo == nil {
		return nil, nil
	}
	ps, err := c.repo.LoadSpace(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSerializationFailed) || errors.Is(err, storage.ErrTruncatedData) {
			return nil, fmt.Errorf("%w: %w", core.ErrCacheMismatch, err)
		}
		return nil, err
	}
	if ps == nil {
		return nil, nil
	}
	return fromPersisted(ps, corp, c.config)
}

// build fits a new space on corp and encodes every course.
func (c *Cache) build(ctx context.Context, corp *corpus.Corpus, fingerprint core.Fingerprint, report *buildReport) (*Space, error) {
	started := time.Now()
	texts := corp.Texts()

	model, err := vectorspace.Fit(texts, c.config)
	if err != nil {
		return nil, err
	}
	report.fitted(model.Size())

	opts := []vectorspace.EncodeOption{vectorspace.WithWorkers(c.workers)}
	if c.pool != nil {
		opts = append(opts, vectorspace.WithPool(c.pool))
	}
	if report != nil {
		opts = append(opts, vectorspace.WithProgress(report.encoded))
	}

	matrix, err := model.EncodeAll(ctx, texts, opts...)
	if err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}

	c.logger.Debug("fitted vector space",
		"courses", corp.Len(),
		"terms", model.Size(),
		"duration", time.Since(started))

	return &Space{
		Model:       model,
		Corpus:      corp,
		Matrix:      matrix,
		Fingerprint: fingerprint,
		BuiltAt:     c.now(),
		Origin:      OriginFit,
	}, nil
}

// persist saves space under the persist policy. Failures are logged and
// reported as false; the space remains usable in memory.
func (c *Cache) persist(ctx context.Context, space *Space, report *buildReport) bool {
	ps := space.toPersisted()
	attempts, err := c.policy.save(ctx, func() error {
		return c.repo.SaveSpace(ctx, ps)
	})
	report.persisted(attempts, err)
	if err != nil {
		c.logger.Warn("failed to persist vector space",
			"reason", ClassifySaveError(err),
			"attempts", attempts,
			"error", err)
		return false
	}
	if attempts > 1 {
		c.logger.Debug("persisted vector space after conflicts", "attempts", attempts)
	}
	return true
}

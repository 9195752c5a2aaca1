package cache

import (
	"io"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/coursematch/core"
)

const defaultProgressInterval = 100

// Option configures a Cache.
type Option func(*Cache)

// WithBuildConfig sets the configuration used to fit the vector space.
func WithBuildConfig(config core.BuildConfig) Option {
	return func(c *Cache) {
		c.config = config
	}
}

// WithLogger sets the logger for cache operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers encodes the corpus on a temporary pool of n workers per build.
func WithWorkers(n int) Option {
	return func(c *Cache) {
		c.workers = n
	}
}

// WithPool encodes the corpus on a shared worker pool owned by the caller.
func WithPool(pool *ants.Pool) Option {
	return func(c *Cache) {
		c.pool = pool
	}
}

// WithProgress reports each build phase to w. The encode line is redrawn
// every interval courses.
func WithProgress(w io.Writer, interval int) Option {
	return func(c *Cache) {
		c.progress = w
		c.progressInterval = interval
	}
}

// WithPersistPolicy sets how fitted spaces are saved.
func WithPersistPolicy(policy PersistPolicy) Option {
	return func(c *Cache) {
		c.policy = policy
	}
}

// WithClock overrides the time source used to stamp fitted spaces.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

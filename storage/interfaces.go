package storage

import (
	"context"

	"github.com/poiesic/coursematch/core"
)

// SpaceRepository persists the current fitted vector space.
// Implementations must be thread-safe and support concurrent access.
type SpaceRepository interface {
	// SaveSpace replaces the stored vector space with space.
	// The replacement is atomic: concurrent loads see the old or the new space.
	SaveSpace(ctx context.Context, space *core.PersistedSpace) error

	// LoadSpace returns the stored vector space.
	// Returns nil, nil if nothing has been saved.
	LoadSpace(ctx context.Context) (*core.PersistedSpace, error)

	// DeleteSpace removes the stored vector space, if any.
	DeleteSpace(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

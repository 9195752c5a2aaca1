package cache

import "errors"

var (
	// ErrSourceRequired is returned when a Cache is created without a corpus source.
	ErrSourceRequired = errors.New("corpus source is required")

	// ErrInvalidPersistPolicy is returned when a PersistPolicy fails validation.
	ErrInvalidPersistPolicy = errors.New("invalid persist policy")
)

package corpus

import "errors"

var (
	// ErrMissingColumn is returned when a CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
)

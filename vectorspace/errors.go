package vectorspace

import "errors"

var (
	// ErrInvalidModel is returned when restoring a model from inconsistent parts.
	ErrInvalidModel = errors.New("invalid vector space model")

	// ErrDimensionMismatch is returned when a vector does not fit the model's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

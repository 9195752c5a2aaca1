package corpus

import (
	"context"

	"github.com/poiesic/coursematch/core"
)

// Source supplies the ordered course records a vector space is built from.
// Implementations must return records in a stable order; the order defines
// corpus indices and therefore tie-breaking in search results.
type Source interface {
	Records(ctx context.Context) ([]core.CourseRecord, error)
}

// StaticSource serves a fixed slice of records.
type StaticSource []core.CourseRecord

var _ Source = StaticSource(nil)

// Records returns a copy of the slice.
func (s StaticSource) Records(ctx context.Context) ([]core.CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]core.CourseRecord, len(s))
	copy(out, s)
	return out, nil
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]core.CourseRecord, error)

// Records calls f.
func (f SourceFunc) Records(ctx context.Context) ([]core.CourseRecord, error) {
	return f(ctx)
}

package vectorspace

import (
	"fmt"
	"math"
)

// Vector is a dense point in a model's vector space.
type Vector []float64

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IsZero reports whether every component of v is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Dot returns the dot product of v and o over their common dimensions.
func (v Vector) Dot(o Vector) float64 {
	n := min(len(v), len(o))
	var sum float64
	for i := 0; i < n; i++ {
		sum += v[i] * o[i]
	}
	return sum
}

// Sparse returns the indices and values of the non-zero components, in index order.
func (v Vector) Sparse() ([]int, []float64) {
	var indices []int
	var values []float64
	for i, x := range v {
		if x != 0 {
			indices = append(indices, i)
			values = append(values, x)
		}
	}
	return indices, values
}

// Float32 converts v for APIs that work in single precision.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// FromSparse rebuilds a dense vector of the given dimension.
func FromSparse(dim int, indices []int, values []float64) (Vector, error) {
	if len(indices) != len(values) {
		return nil, fmt.Errorf("%w: %d indices but %d values", ErrDimensionMismatch, len(indices), len(values))
	}
	v := make(Vector, dim)
	for i, idx := range indices {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("%w: index %d outside dimension %d", ErrDimensionMismatch, idx, dim)
		}
		v[idx] = values[i]
	}
	return v, nil
}

// Normalize returns v scaled to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v Vector) Vector {
	result := make(Vector, len(v))
	norm := v.Norm()
	if norm == 0 {
		return result
	}
	for i, x := range v {
		result[i] = x / norm
	}
	return result
}

// Cosine returns the cosine similarity of a and b.
// It is 0 when either vector has zero norm.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

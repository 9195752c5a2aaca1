package vectorspace

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Vector
		expected Vector
	}{
		{
			name:     "unit vector remains unchanged",
			input:    Vector{1, 0, 0},
			expected: Vector{1, 0, 0},
		},
		{
			name:     "scale non-unit vector",
			input:    Vector{3, 4},
			expected: Vector{0.6, 0.8},
		},
		{
			name:     "small values",
			input:    Vector{0.001, 0.002, 0.002},
			expected: Vector{1.0 / 3, 2.0 / 3, 2.0 / 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			require.Equal(t, len(tt.expected), len(result), "vector length mismatch")
			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-12, "element %d", i)
			}
			assert.InDelta(t, 1.0, result.Norm(), 1e-12, "magnitude should be 1.0")
		})
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	input := Vector{0, 0, 0}
	result := Normalize(input)
	assert.Equal(t, Vector{0, 0, 0}, result)
	assert.True(t, result.IsZero())
}

func TestNormalize_EmptyVector(t *testing.T) {
	assert.Empty(t, Normalize(Vector{}))
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"scaled", Vector{1, 2, 3}, Vector{2, 4, 6}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"partial overlap", Vector{1, 1}, Vector{1, 0}, 1 / math.Sqrt2},
		{"zero left", Vector{0, 0}, Vector{1, 0}, 0},
		{"zero right", Vector{1, 0}, Vector{0, 0}, 0},
		{"both zero", Vector{0, 0}, Vector{0, 0}, 0},
		{"empty", Vector{}, Vector{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-12)
		})
	}
}

func TestSparseRoundTrip(t *testing.T) {
	v := Vector{0, 0.5, 0, 0, 0.25, 0}
	indices, values := v.Sparse()
	assert.Equal(t, []int{1, 4}, indices)
	assert.Equal(t, []float64{0.5, 0.25}, values)

	back, err := FromSparse(len(v), indices, values)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	t.Run("zero vector", func(t *testing.T) {
		indices, values := Vector{0, 0}.Sparse()
		assert.Empty(t, indices)
		back, err := FromSparse(2, indices, values)
		require.NoError(t, err)
		assert.Equal(t, Vector{0, 0}, back)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := FromSparse(2, []int{2}, []float64{1})
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := FromSparse(2, []int{0, 1}, []float64{1})
		assert.True(t, errors.Is(err, ErrDimensionMismatch))
	})
}

func TestFloat32(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0, 1}, Vector{0.5, 0, 1}.Float32())
}

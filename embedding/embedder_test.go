package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/coursematch/cache"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(corpus.StaticSource([]core.CourseRecord{
		{Code: "CSE214", Title: "Data Structures", Description: "Arrays, linked lists, trees, sorting."},
		{Code: "CSE353", Title: "Machine Learning", Description: "Neural networks, regression, classification."},
		{Code: "CSE373", Title: "Analysis of Algorithms", Description: "Sorting, graphs and dynamic programming."},
	}), nil)
	require.NoError(t, err)
	return c
}

type failingProvider struct{ err error }

func (p failingProvider) Get(ctx context.Context) (*cache.Space, error) { return nil, p.err }

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNewEmbedder(t *testing.T) {
	_, err := NewEmbedder(nil)
	assert.ErrorIs(t, err, ErrSpaceProviderRequired)

	e, err := NewEmbedder(testCache(t), WithBatchSize(0), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, e.batchSize)
}

func TestEmbedQuery(t *testing.T) {
	c := testCache(t)
	e, err := NewEmbedder(c)
	require.NoError(t, err)
	ctx := context.Background()

	vec, err := e.EmbedQuery(ctx, "neural networks")
	require.NoError(t, err)

	dim, err := e.Dimension(ctx)
	require.NoError(t, err)
	assert.Len(t, vec, dim)
	assert.InDelta(t, 1.0, norm(vec), 1e-6)

	space, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, space.Model.Encode("neural networks").Float32(), vec)
}

func TestEmbedQuery_StripsNewLines(t *testing.T) {
	e, err := NewEmbedder(testCache(t))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := e.EmbedQuery(ctx, "neural\nnetworks")
	require.NoError(t, err)
	b, err := e.EmbedQuery(ctx, "neural networks")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestEmbedDocuments(t *testing.T) {
	e, err := NewEmbedder(testCache(t), WithBatchSize(2))
	require.NoError(t, err)
	ctx := context.Background()

	texts := []string{"sorting\ntrees", "regression", "unknown words only", "dynamic programming"}
	vectors, err := e.EmbedDocuments(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	assert.Equal(t, "sorting\ntrees", texts[0], "input must not be modified")
	assert.InDelta(t, 1.0, norm(vectors[0]), 1e-6)
	assert.InDelta(t, 0.0, norm(vectors[2]), 1e-12, "out-of-vocabulary text embeds to zero")

	single, err := e.EmbedQuery(ctx, "regression")
	require.NoError(t, err)
	assert.Equal(t, single, vectors[1])
}

func TestEmbedder_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	e, err := NewEmbedder(failingProvider{err: boom})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.EmbedQuery(ctx, "x")
	assert.ErrorIs(t, err, boom)
	_, err = e.EmbedDocuments(ctx, []string{"x"})
	assert.ErrorIs(t, err, boom)
	_, err = e.Dimension(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestClient_CanceledContext(t *testing.T) {
	space, err := testCache(t).Get(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewClient(space.Model).CreateEmbedding(ctx, []string{"trees"})
	assert.ErrorIs(t, err, context.Canceled)
}

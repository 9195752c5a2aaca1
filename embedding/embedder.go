package embedding

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/poiesic/coursematch/cache"
	"github.com/poiesic/coursematch/vectorspace"
	"github.com/tmc/langchaingo/embeddings"
)

const defaultBatchSize = 512

// ErrSpaceProviderRequired is returned when an Embedder is created without a space provider.
var ErrSpaceProviderRequired = errors.New("space provider required")

// SpaceProvider supplies the current vector space.
type SpaceProvider interface {
	Get(ctx context.Context) (*cache.Space, error)
}

// Client implements embeddings.EmbedderClient for one fitted model.
type Client struct {
	model *vectorspace.Model
}

var _ embeddings.EmbedderClient = (*Client)(nil)

// NewClient creates an embeddings client backed by model.
func NewClient(model *vectorspace.Model) *Client {
	return &Client{model: model}
}

// CreateEmbedding encodes every text with the model.
func (c *Client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = c.model.Encode(text).Float32()
	}
	return vectors, nil
}

// Embedder implements embeddings.Embedder on top of the current vector space.
type Embedder struct {
	spaces    SpaceProvider
	batchSize int
	logger    *slog.Logger
}

var _ embeddings.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder)

// WithBatchSize sets how many texts are encoded per client call.
func WithBatchSize(n int) Option {
	return func(e *Embedder) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmbedder creates an embedder over spaces.
func NewEmbedder(spaces SpaceProvider, opts ...Option) (*Embedder, error) {
	if spaces == nil {
		return nil, ErrSpaceProviderRequired
	}
	e := &Embedder{
		spaces:    spaces,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "embedder")
	return e, nil
}

// EmbedDocuments returns one vector per text. All vectors of a call come from
// the same vector space.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	impl, err := e.pinned(ctx)
	if err != nil {
		return nil, err
	}
	vectors, err := impl.EmbedDocuments(ctx, slices.Clone(texts))
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery returns the vector of a single text.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	impl, err := e.pinned(ctx)
	if err != nil {
		return nil, err
	}
	return impl.EmbedQuery(ctx, text)
}

// Dimension returns the vector length of the current space.
func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	space, err := e.spaces.Get(ctx)
	if err != nil {
		return 0, err
	}
	return space.Model.Size(), nil
}

// pinned returns a langchaingo embedder bound to the current space.
func (e *Embedder) pinned(ctx context.Context) (*embeddings.EmbedderImpl, error) {
	space, err := e.spaces.Get(ctx)
	if err != nil {
		return nil, err
	}
	return embeddings.NewEmbedder(NewClient(space.Model),
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(e.batchSize))
}

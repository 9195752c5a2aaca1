package vectorspace

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Encode projects text into the model's space: term counts for every
// vocabulary n-gram, multiplied by the term's IDF weight, then L2-normalized.
// Terms outside the vocabulary are ignored. Text with no vocabulary terms
// yields the zero vector.
func (m *Model) Encode(text string) Vector {
	v := make(Vector, len(m.terms))
	if len(m.terms) == 0 {
		return v
	}

	for _, term := range m.Analyze(text) {
		if i, ok := m.index[term]; ok {
			v[i]++
		}
	}
	for i, count := range v {
		if count != 0 {
			v[i] = count * m.weights[i]
		}
	}
	return Normalize(v)
}

// EncodeOption configures EncodeAll.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	pool     *ants.Pool
	workers  int
	progress func(done int)
}

// WithPool encodes on an existing worker pool. The caller owns the pool.
func WithPool(pool *ants.Pool) EncodeOption {
	return func(o *encodeOptions) {
		o.pool = pool
	}
}

// WithWorkers encodes on a temporary pool of n workers.
// Values below 2 encode sequentially, which is the default.
func WithWorkers(n int) EncodeOption {
	return func(o *encodeOptions) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked after each document is encoded
// with the number of documents finished so far. It may be called concurrently.
func WithProgress(fn func(done int)) EncodeOption {
	return func(o *encodeOptions) {
		o.progress = fn
	}
}

// EncodeAll encodes every text with Encode. Result i always belongs to texts[i],
// however the work is scheduled.
func (m *Model) EncodeAll(ctx context.Context, texts []string, opts ...EncodeOption) ([]Vector, error) {
	options := &encodeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	vectors := make([]Vector, len(texts))
	var done atomic.Int64
	encodeOne := func(i int) {
		vectors[i] = m.Encode(texts[i])
		finished := done.Add(1)
		if options.progress != nil {
			options.progress(int(finished))
		}
	}

	pool := options.pool
	if pool == nil && options.workers > 1 && len(texts) > 1 {
		p, err := ants.NewPool(options.workers)
		if err != nil {
			return nil, err
		}
		defer p.Release()
		pool = p
	}

	if pool == nil {
		for i := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			encodeOne(i)
		}
		return vectors, nil
	}

	var wg sync.WaitGroup
	for i := range texts {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			encodeOne(i)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

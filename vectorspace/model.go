package vectorspace

import (
	"fmt"
	"math"

	"github.com/poiesic/coursematch/core"
)

// Model is a fitted, frozen vector space: an ordered vocabulary with one IDF
// weight per term. Dimension i of every vector corresponds to Terms()[i].
// A Model is never mutated after construction.
type Model struct {
	config    core.BuildConfig
	terms     []string
	weights   []float64
	index     map[string]int
	documents int
}

// NewModel restores a model from previously fitted parts, e.g. a persisted cache.
// terms must be unique and weights positive and index-aligned with terms.
func NewModel(config core.BuildConfig, terms []string, weights []float64, documents int) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(terms) != len(weights) {
		return nil, fmt.Errorf("%w: %d terms but %d weights", ErrInvalidModel, len(terms), len(weights))
	}
	if documents < 0 {
		return nil, fmt.Errorf("%w: negative document count %d", ErrInvalidModel, documents)
	}

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		if term == "" {
			return nil, fmt.Errorf("%w: empty term at %d", ErrInvalidModel, i)
		}
		if _, dup := index[term]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q", ErrInvalidModel, term)
		}
		if w := weights[i]; !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %g for term %q", ErrInvalidModel, w, term)
		}
		index[term] = i
	}

	return &Model{
		config:    config,
		terms:     append([]string(nil), terms...),
		weights:   append([]float64(nil), weights...),
		index:     index,
		documents: documents,
	}, nil
}

// Config returns the configuration the model was fitted with.
func (m *Model) Config() core.BuildConfig {
	return m.config
}

// Size returns the vocabulary size, which is also the vector dimension.
func (m *Model) Size() int {
	return len(m.terms)
}

// DocumentCount returns the number of documents the model was fitted on.
func (m *Model) DocumentCount() int {
	return m.documents
}

// Terms returns a copy of the vocabulary in dimension order.
func (m *Model) Terms() []string {
	return append([]string(nil), m.terms...)
}

// Weights returns a copy of the IDF weights in dimension order.
func (m *Model) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

// Term returns the term of dimension i.
func (m *Model) Term(i int) string {
	return m.terms[i]
}

// Index returns the dimension of term.
func (m *Model) Index(term string) (int, bool) {
	i, ok := m.index[term]
	return i, ok
}

// Weight returns the IDF weight of term, or 0 if it is not in the vocabulary.
func (m *Model) Weight(term string) float64 {
	if i, ok := m.index[term]; ok {
		return m.weights[i]
	}
	return 0
}

// Analyze tokenizes text and expands it into the model's n-gram terms,
// exactly as Fit did for the training documents.
func (m *Model) Analyze(text string) []string {
	return analyze(text, m.config)
}

func analyze(text string, config core.BuildConfig) []string {
	tokens := Tokenize(text, config.StopWords)
	return NGrams(tokens, config.NgramMin, config.NgramMax)
}

package vectorspace

import (
	"math"
	"slices"
	"strings"

	"github.com/poiesic/coursematch/core"
)

// Fit learns a vocabulary and IDF weights from texts in a single pass.
//
// A term is kept when it occurs in at least config.MinDF documents and in at
// most config.MaxDF * len(texts) documents. If more than config.MaxFeatures
// terms survive, the ones with the highest document frequency are kept, ties
// going to the lexicographically smaller term. Kept terms are assigned
// dimensions in lexicographic order.
//
// Each kept term t gets weight ln((1 + N) / (1 + df(t))) + 1, which is always
// positive. An empty corpus, or filters that reject every term, yield an empty
// vocabulary rather than an error.
func Fit(texts []string, config core.BuildConfig) (*Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range analyze(text, config) {
			if !seen[term] {
				df[term]++
				seen[term] = true
			}
		}
	}

	n := len(texts)
	maxCount := config.MaxDF * float64(n)

	type candidate struct {
		term string
		df   int
	}
	candidates := make([]candidate, 0, len(df))
	for term, count := range df {
		if count < config.MinDF || float64(count) > maxCount {
			continue
		}
		candidates = append(candidates, candidate{term: term, df: count})
	}

	if len(candidates) > config.MaxFeatures {
		slices.SortFunc(candidates, func(a, b candidate) int {
			if a.df != b.df {
				return b.df - a.df
			}
			return strings.Compare(a.term, b.term)
		})
		candidates = candidates[:config.MaxFeatures]
	}
	slices.SortFunc(candidates, func(a, b candidate) int {
		return strings.Compare(a.term, b.term)
	})

	terms := make([]string, len(candidates))
	weights := make([]float64, len(candidates))
	index := make(map[string]int, len(candidates))
	for i, c := range candidates {
		terms[i] = c.term
		weights[i] = idf(n, c.df)
		index[c.term] = i
	}

	return &Model{
		config:    config,
		terms:     terms,
		weights:   weights,
		index:     index,
		documents: n,
	}, nil
}

// idf is the smoothed inverse document frequency of a term found in df of n documents.
func idf(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}

package search

import (
	"cmp"
	"math"
	"slices"

	"github.com/poiesic/coursematch/vectorspace"
)

// Scored is the similarity of one corpus position to a query.
type Scored struct {
	Index int
	Score float64
}

// NoExclusion is passed to Rank when every corpus position may be returned.
const NoExclusion = -1

// Rank scores every row of matrix against query by cosine similarity and
// returns the best k, highest score first. Equal scores keep corpus order.
//
// Scores are clamped to [0, 1]. A zero query or k <= 0 yields an empty result;
// otherwise rows scoring 0 are still eligible. The row at exclude, if any,
// is dropped before truncation.
func Rank(query vectorspace.Vector, matrix []vectorspace.Vector, k int, exclude int) []Scored {
	if k <= 0 || query.IsZero() {
		return []Scored{}
	}

	scored := make([]Scored, 0, len(matrix))
	for i, row := range matrix {
		if i == exclude {
			continue
		}
		scored = append(scored, Scored{Index: i, Score: clamp(vectorspace.Cosine(query, row))})
	}

	slices.SortFunc(scored, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

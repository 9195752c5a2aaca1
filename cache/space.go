package cache

import (
	"fmt"
	"time"

	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/corpus"
	"github.com/poiesic/coursematch/vectorspace"
)

// Origin records where a published space came from.
type Origin string

const (
	// OriginFit marks a space fitted from the corpus in this process.
	OriginFit Origin = "fit"
	// OriginStorage marks a space restored from the repository.
	OriginStorage Origin = "storage"
)

// Space is one immutable snapshot of the vector space: the fitted model, the
// corpus it was fitted on and one vector per course.
// Matrix[i] is the vector of Corpus.Records[i].
type Space struct {
	Model       *vectorspace.Model
	Corpus      *corpus.Corpus
	Matrix      []vectorspace.Vector
	Fingerprint core.Fingerprint
	BuiltAt     time.Time
	Origin      Origin
	// Persisted is true when the repository holds exactly this space.
	Persisted bool
}

// Len returns the number of courses in the space.
func (s *Space) Len() int {
	return s.Corpus.Len()
}

// Course returns the record and corpus position of the course with code.
func (s *Space) Course(code string) (core.CourseRecord, int, bool) {
	i, ok := s.Corpus.IndexOf(code)
	if !ok {
		return core.CourseRecord{}, -1, false
	}
	return s.Corpus.Records[i], i, true
}

// Status summarizes the space.
func (s *Space) Status() core.Status {
	return core.Status{
		CorpusSize:     s.Len(),
		VocabularySize: s.Model.Size(),
		CacheFresh:     s.Persisted,
		BuiltAt:        s.BuiltAt,
		Origin:         string(s.Origin),
	}
}

// withPersisted returns a copy of s with the Persisted flag set.
func (s *Space) withPersisted() *Space {
	clone := *s
	clone.Persisted = true
	return &clone
}

// toPersisted converts s into its storage form, rows in sparse encoding.
func (s *Space) toPersisted() *core.PersistedSpace {
	codes := make([]string, s.Len())
	rows := make([]core.SparseRow, s.Len())
	for i, record := range s.Corpus.Records {
		codes[i] = record.Code
		indices, values := s.Matrix[i].Sparse()
		rows[i] = core.SparseRow{Indices: indices, Values: values}
	}
	return &core.PersistedSpace{
		Fingerprint: s.Fingerprint,
		Config:      s.Model.Config(),
		Documents:   s.Model.DocumentCount(),
		Terms:       s.Model.Terms(),
		Weights:     s.Model.Weights(),
		Codes:       codes,
		Rows:        rows,
		BuiltAt:     s.BuiltAt,
	}
}

// fromPersisted restores a space for corp from its storage form. Any
// disagreement with corp or config is reported as core.ErrCacheMismatch.
func fromPersisted(ps *core.PersistedSpace, corp *corpus.Corpus, config core.BuildConfig) (*Space, error) {
	fingerprint := corp.Fingerprint()
	switch {
	case ps.Fingerprint != fingerprint:
		return nil, fmt.Errorf("%w: fingerprint %s/%d, corpus %s/%d", core.ErrCacheMismatch,
			short(ps.Fingerprint.Hash), ps.Fingerprint.Count, short(fingerprint.Hash), fingerprint.Count)
	case ps.Config != config:
		return nil, fmt.Errorf("%w: built with %+v, want %+v", core.ErrCacheMismatch, ps.Config, config)
	case ps.Documents != corp.Len():
		return nil, fmt.Errorf("%w: built on %d documents, corpus has %d", core.ErrCacheMismatch, ps.Documents, corp.Len())
	case len(ps.Codes) != corp.Len() || len(ps.Rows) != corp.Len():
		return nil, fmt.Errorf("%w: %d codes and %d rows for %d courses", core.ErrCacheMismatch,
			len(ps.Codes), len(ps.Rows), corp.Len())
	}
	for i, code := range ps.Codes {
		if code != corp.Records[i].Code {
			return nil, fmt.Errorf("%w: position %d holds %q, corpus has %q", core.ErrCacheMismatch, i, code, corp.Records[i].Code)
		}
	}

	model, err := vectorspace.NewModel(ps.Config, ps.Terms, ps.Weights, ps.Documents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCacheMismatch, err)
	}
	matrix := make([]vectorspace.Vector, len(ps.Rows))
	for i, row := range ps.Rows {
		v, err := vectorspace.FromSparse(model.Size(), row.Indices, row.Values)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", core.ErrCacheMismatch, i, err)
		}
		matrix[i] = v
	}

	return &Space{
		Model:       model,
		Corpus:      corp,
		Matrix:      matrix,
		Fingerprint: fingerprint,
		BuiltAt:     ps.BuiltAt,
		Origin:      OriginStorage,
		Persisted:   true,
	}, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

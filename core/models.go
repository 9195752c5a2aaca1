package core

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// CourseRecord is a single catalog entry as supplied by a corpus source.
// Code uniquely identifies the course within a corpus.
type CourseRecord struct {
	Code        string
	Title       string
	Credits     float64
	Description string
}

// Document is the normalized text of one course, used as the unit of vectorization.
type Document struct {
	Index int    // Position of the source record in corpus order
	Code  string // Code of the source record
	Text  string // Lowercased, whitespace-collapsed code + title + description
}

// BuildConfig controls how a vector space is fitted.
type BuildConfig struct {
	NgramMin    int     // Smallest n-gram length (>= 1)
	NgramMax    int     // Largest n-gram length (>= NgramMin)
	MaxFeatures int     // Vocabulary cap
	MinDF       int     // Minimum number of documents a term must occur in
	MaxDF       float64 // Maximum fraction of documents a term may occur in, in (0, 1]
	StopWords   bool    // Drop English stop words before building n-grams
}

// DefaultBuildConfig returns the configuration used when none is supplied.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		NgramMin:    1,
		NgramMax:    2,
		MaxFeatures: 1000,
		MinDF:       1,
		MaxDF:       0.95,
		StopWords:   true,
	}
}

// Fingerprint summarizes a corpus so a persisted vector space can be checked for staleness.
type Fingerprint struct {
	Count int
	Hash  string
}

// FingerprintRecords hashes every field of every record, in order, with BLAKE2b-256.
// Reordering, editing, adding or removing a record changes the fingerprint.
func FingerprintRecords(records []CourseRecord) Fingerprint {
	h, _ := blake2b.New(32, nil)
	var num [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(num[:], uint64(len(s)))
		h.Write(num[:])
		h.Write([]byte(s))
	}
	for _, r := range records {
		writeString(r.Code)
		writeString(r.Title)
		binary.LittleEndian.PutUint64(num[:], math.Float64bits(r.Credits))
		h.Write(num[:])
		writeString(r.Description)
	}
	return Fingerprint{
		Count: len(records),
		Hash:  hex.EncodeToString(h.Sum(nil)),
	}
}

// SearchResult is a ranked course with its similarity score.
type SearchResult struct {
	Course CourseRecord
	Score  float64 // Cosine similarity in [0, 1]
	Rank   int     // 1-based position in the result list
}

// Status describes the vector space currently serving queries.
type Status struct {
	CorpusSize     int
	VocabularySize int
	CacheFresh     bool      // Published space matches the corpus and is persisted
	BuiltAt        time.Time // When the published space was fitted
	Origin         string    // "fit" or "storage"; empty before the first build
}

// SparseRow holds the non-zero components of one course vector.
// Indices are strictly increasing.
type SparseRow struct {
	Indices []int
	Values  []float64
}

// PersistedSpace is the storable form of a built vector space: everything needed
// to serve queries again without refitting, plus what is needed to tell whether
// it still matches the corpus. Rows[i] is the vector of the course Codes[i].
type PersistedSpace struct {
	Fingerprint Fingerprint
	Config      BuildConfig
	Documents   int       // Number of documents the vocabulary was fitted on
	Terms       []string  // Vocabulary in dimension order
	Weights     []float64 // IDF weight per term
	Codes       []string  // Course code per row
	Rows        []SparseRow
	BuiltAt     time.Time
}

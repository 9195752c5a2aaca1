package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintRecords(t *testing.T) {
	base := []CourseRecord{
		{Code: "CSE214", Title: "Data Structures", Credits: 3, Description: "arrays and trees"},
		{Code: "CSE353", Title: "Machine Learning", Credits: 3, Description: "neural networks"},
	}

	t.Run("same records produce same fingerprint", func(t *testing.T) {
		assert.Equal(t, FingerprintRecords(base), FingerprintRecords(append([]CourseRecord(nil), base...)))
	})

	t.Run("count matches record count", func(t *testing.T) {
		assert.Equal(t, 2, FingerprintRecords(base).Count)
		assert.Equal(t, 0, FingerprintRecords(nil).Count)
	})

	t.Run("hash is hex encoded 256 bits", func(t *testing.T) {
		assert.Len(t, FingerprintRecords(base).Hash, 64)
	})

	t.Run("order matters", func(t *testing.T) {
		swapped := []CourseRecord{base[1], base[0]}
		assert.NotEqual(t, FingerprintRecords(base).Hash, FingerprintRecords(swapped).Hash)
	})

	t.Run("editing any field changes the hash", func(t *testing.T) {
		edits := []func(r *CourseRecord){
			func(r *CourseRecord) { r.Code = "CSE215" },
			func(r *CourseRecord) { r.Title = "Data Structures II" },
			func(r *CourseRecord) { r.Credits = 4 },
			func(r *CourseRecord) { r.Description = "arrays, trees and graphs" },
		}
		for _, edit := range edits {
			changed := append([]CourseRecord(nil), base...)
			edit(&changed[0])
			assert.NotEqual(t, FingerprintRecords(base).Hash, FingerprintRecords(changed).Hash)
		}
	})

	t.Run("field boundaries are unambiguous", func(t *testing.T) {
		a := []CourseRecord{{Code: "AB", Title: "C"}}
		b := []CourseRecord{{Code: "A", Title: "BC"}}
		assert.NotEqual(t, FingerprintRecords(a).Hash, FingerprintRecords(b).Hash)
	})
}

func TestDefaultBuildConfig(t *testing.T) {
	cfg := DefaultBuildConfig()
	assert.Equal(t, 1, cfg.NgramMin)
	assert.Equal(t, 2, cfg.NgramMax)
	assert.Equal(t, 1000, cfg.MaxFeatures)
	assert.Equal(t, 1, cfg.MinDF)
	assert.InDelta(t, 0.95, cfg.MaxDF, 1e-12)
	assert.True(t, cfg.StopWords)
	assert.NoError(t, cfg.Validate())
}

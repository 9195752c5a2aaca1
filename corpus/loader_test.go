package corpus

import (
	"errors"
	"testing"

	"github.com/poiesic/coursematch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	records := []core.CourseRecord{
		{Code: "CSE214", Title: "Data Structures", Credits: 3, Description: "Arrays,  linked lists\n and TREES."},
		{Code: "CSE353", Title: "Machine Learning", Credits: 3},
		{Code: " CSE101 ", Title: "Intro", Credits: 4, Description: `The "basics" of it's design`},
	}

	c, err := Load(records)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	t.Run("preserves order and index", func(t *testing.T) {
		for i, doc := range c.Documents {
			assert.Equal(t, i, doc.Index)
			assert.Equal(t, c.Records[i].Code, doc.Code)
		}
	})

	t.Run("normalizes text", func(t *testing.T) {
		assert.Equal(t, "cse214 data structures arrays, linked lists and trees.", c.Documents[0].Text)
	})

	t.Run("missing description becomes empty", func(t *testing.T) {
		assert.Equal(t, "cse353 machine learning", c.Documents[1].Text)
	})

	t.Run("removes quotes", func(t *testing.T) {
		assert.Equal(t, "cse101 intro the basics of its design", c.Documents[2].Text)
	})

	t.Run("trims codes", func(t *testing.T) {
		idx, ok := c.IndexOf("CSE101")
		require.True(t, ok)
		assert.Equal(t, 2, idx)
		assert.Equal(t, "CSE101", c.Records[2].Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, ok := c.IndexOf("MAT101")
		assert.False(t, ok)
	})

	t.Run("texts in order", func(t *testing.T) {
		texts := c.Texts()
		require.Len(t, texts, 3)
		assert.Equal(t, c.Documents[1].Text, texts[1])
	})
}

func TestLoad_Empty(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Fingerprint().Count)
}

func TestLoad_MissingCode(t *testing.T) {
	records := []core.CourseRecord{
		{Code: "CSE214", Title: "Data Structures"},
		{Title: "No code"},
	}

	c, err := Load(records)
	assert.Nil(t, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedRecord))
	assert.True(t, errors.Is(err, core.ErrEmptyCode))
	assert.Contains(t, err.Error(), "record 1")
}

func TestLoad_DuplicateCode(t *testing.T) {
	records := []core.CourseRecord{
		{Code: "CSE214", Title: "Data Structures"},
		{Code: "CSE214", Title: "Data Structures Again"},
	}

	_, err := Load(records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrMalformedRecord))
	assert.True(t, errors.Is(err, core.ErrDuplicateCode))
}

func TestLoad_DoesNotAliasInput(t *testing.T) {
	records := []core.CourseRecord{{Code: "CSE214", Title: "Data Structures"}}
	c, err := Load(records)
	require.NoError(t, err)

	records[0].Title = "Changed"
	assert.Equal(t, "Data Structures", c.Records[0].Title)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Hello   WORLD", "hello world"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{`"quoted" 'single'`, "quoted single"},
		{"curly ‘quotes’ “too”", "curly quotes too"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), "input %q", tt.in)
	}
}

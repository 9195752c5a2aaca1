package corpus

import (
	"fmt"
	"strings"

	"github.com/poiesic/coursematch/core"
)

// Corpus is a validated, ordered set of courses and their documents.
// Records[i] and Documents[i] always describe the same course.
type Corpus struct {
	Records   []core.CourseRecord
	Documents []core.Document
	byCode    map[string]int
}

// Load validates records and derives one document per record, preserving order.
// It fails fast: the first record without a code, or with a code already seen,
// aborts the load with core.ErrMalformedRecord and no corpus is returned.
func Load(records []core.CourseRecord) (*Corpus, error) {
	c := &Corpus{
		Records:   make([]core.CourseRecord, len(records)),
		Documents: make([]core.Document, len(records)),
		byCode:    make(map[string]int, len(records)),
	}

	for i := range records {
		record := records[i]
		if err := core.ValidateCourseRecord(&record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		record.Code = strings.TrimSpace(record.Code)
		if prev, ok := c.byCode[record.Code]; ok {
			return nil, fmt.Errorf("record %d: %w: %w: %q also at record %d",
				i, core.ErrMalformedRecord, core.ErrDuplicateCode, record.Code, prev)
		}
		c.byCode[record.Code] = i
		c.Records[i] = record
		c.Documents[i] = core.Document{
			Index: i,
			Code:  record.Code,
			Text:  DocumentText(record),
		}
	}

	return c, nil
}

// Len returns the number of courses in the corpus.
func (c *Corpus) Len() int {
	return len(c.Records)
}

// IndexOf returns the corpus position of the course with the given code.
func (c *Corpus) IndexOf(code string) (int, bool) {
	i, ok := c.byCode[strings.TrimSpace(code)]
	return i, ok
}

// Texts returns the document texts in corpus order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.Documents))
	for i, doc := range c.Documents {
		texts[i] = doc.Text
	}
	return texts
}

// Fingerprint summarizes the corpus records.
func (c *Corpus) Fingerprint() core.Fingerprint {
	return core.FingerprintRecords(c.Records)
}

// DocumentText builds the normalized document text for a record:
// code, title and description joined by spaces, then normalized.
func DocumentText(record core.CourseRecord) string {
	return NormalizeText(record.Code + " " + record.Title + " " + record.Description)
}

// NormalizeText lowercases text, removes quote characters and collapses whitespace.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = quoteReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

var quoteReplacer = strings.NewReplacer(`"`, "", "'", "", "‘", "", "’", "", "“", "", "”", "")

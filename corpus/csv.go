package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/coursematch/core"
)

// csvColumns are the header names written by the catalog scraper.
var csvColumns = []string{"code", "title", "credits", "description"}

// CSVSource reads course records from a CSV file with a header row containing
// code, title, credits and description columns, in any order. Extra columns are ignored.
type CSVSource struct {
	Path string
}

var _ Source = (*CSVSource)(nil)

// NewCSVSource creates a source reading from path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Records reads the whole file on every call so edits are picked up by rebuilds.
func (s *CSVSource) Records(ctx context.Context) ([]core.CourseRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(ctx, f)
}

// ReadCSV parses course records from r.
// Credits are read from the leading number of the cell, so "3 credits" is 3;
// empty or unreadable cells become 0. Missing description cells become "".
func ReadCSV(ctx context.Context, r io.Reader) ([]core.CourseRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []core.CourseRecord{}, nil
		}
		return nil, err
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		positions[name] = i
	}
	// Only code is strictly required; the others default to empty.
	if _, ok := positions["code"]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, "code")
	}

	cell := func(row []string, column string) string {
		i, ok := positions[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []core.CourseRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		raw := cell(row, csvColumns[2])
		credits, ok := parseCredits(raw)
		if !ok {
			slog.Warn("unreadable credits, using 0", "component", "corpus", "line", line, "value", raw)
		}
		records = append(records, core.CourseRecord{
			Code:        cell(row, csvColumns[0]),
			Title:       cell(row, csvColumns[1]),
			Credits:     credits,
			Description: cell(row, csvColumns[3]),
		})
	}

	if records == nil {
		records = []core.CourseRecord{}
	}
	return records, nil
}

// WriteCSV writes records with the standard header.
func WriteCSV(w io.Writer, records []core.CourseRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Code, r.Title, strconv.FormatFloat(r.Credits, 'f', -1, 64), r.Description}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// parseCredits reads the leading number of s. ok is false when s is not
// empty and does not start with a number.
func parseCredits(s string) (credits float64, ok bool) {
	if s == "" {
		return 0, true
	}
	if credits, err := strconv.ParseFloat(s, 64); err == nil {
		return credits, true
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if end <= 0 {
		return 0, false
	}
	credits, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return credits, true
}

// internal/dataset/dataset.go
//
// Builds the category model from a parsed table.
//
// Row 0 is the header (one title per category column); rows 1.. are data.
// Columns may be ragged: each column keeps only its non-empty words, in
// source order, so one sparse column does not affect another.

package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxColumns is the number of letter-addressable columns (a–z).
const MaxColumns = 26

// FormatError reports a table that cannot be turned into a game.
type FormatError struct {
	Location string // where the table came from, if known
	Columns  int    // offending header width (0 for an empty table)
	Limit    int
	Reason   string
}

func (e *FormatError) Error() string {
	prefix := "dataset"
	if e.Location != "" {
		prefix = "dataset " + e.Location
	}
	if e.Limit > 0 {
		return fmt.Sprintf("%s: %d columns exceeds limit of %d", prefix, e.Columns, e.Limit)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

// Word is one non-empty data cell.
type Word struct {
	Text    string
	Row     int // 0-based data row in the source table
	Ordinal int // 1-based position within its column
}

// Dataset is the immutable category model for one session.
type Dataset struct {
	Header  []string
	Columns [][]Word // Columns[c] = words of category c
	rows    int      // data rows after the header
}

// Build validates rows and constructs a Dataset.
// Empty input and headers wider than MaxColumns are *FormatError.
func Build(rows [][]string) (*Dataset, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &FormatError{Reason: "dataset is empty"}
	}
	header := rows[0]
	n := len(header)
	if n > MaxColumns {
		return nil, &FormatError{Columns: n, Limit: MaxColumns}
	}

	ds := &Dataset{
		Header:  append([]string(nil), header...),
		Columns: make([][]Word, n),
		rows:    len(rows) - 1,
	}
	for r, raw := range rows[1:] {
		cells := normalizeRow(raw, n)
		for c, cell := range cells {
			text := strings.TrimSpace(cell)
			if text == "" {
				continue
			}
			ds.Columns[c] = append(ds.Columns[c], Word{
				Text:    text,
				Row:     r,
				Ordinal: len(ds.Columns[c]) + 1,
			})
		}
	}
	return ds, nil
}

// normalizeRow pads or truncates raw to exactly n cells.
func normalizeRow(raw []string, n int) []string {
	out := make([]string, n)
	copy(out, raw)
	return out
}

// NumColumns is the number of categories.
func (d *Dataset) NumColumns() int { return len(d.Header) }

// DataRows is the number of data rows in the source table.
func (d *Dataset) DataRows() int { return d.rows }

// MaxDepth is the largest number of words in any single column.
func (d *Dataset) MaxDepth() int {
	m := 0
	for _, col := range d.Columns {
		if len(col) > m {
			m = len(col)
		}
	}
	return m
}

// WordCount is the total number of words across all columns.
func (d *Dataset) WordCount() int {
	n := 0
	for _, col := range d.Columns {
		n += len(col)
	}
	return n
}

// Title returns the header text for column c, or "Title <c+1>" when blank.
func (d *Dataset) Title(c int) string {
	if c >= 0 && c < len(d.Header) && d.Header[c] != "" {
		return d.Header[c]
	}
	return "Title " + strconv.Itoa(c+1)
}

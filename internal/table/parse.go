// internal/table/parse.go
//
// Delimiter-auto-detecting parser for CSV-like dataset text.
// Responsibilities:
//   - Normalize raw text (BOM, line endings, blank lines).
//   - Pick the field delimiter by highest median column count.
//   - Split lines honoring a simple double-quote rule.
//   - Trim cells and drop blank trailing cells / empty rows.

package table

import (
	"sort"
	"strings"
)

// Delimiters lists the candidate field separators in tie-break order.
var Delimiters = []rune{',', ';', '\t', '|'}

// ParseText converts raw dataset text into rows of trimmed cells.
// Empty content yields a nil result (not an error); callers treat it as an
// unusable dataset.
func ParseText(raw string) [][]string {
	lines := normalizeLines(raw)
	if len(lines) == 0 {
		return nil
	}
	delim := DetectDelimiter(lines)
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, splitLine(l, delim))
	}
	return Clean(rows)
}

// normalizeLines strips a leading BOM, normalizes newlines, and drops blank lines.
func normalizeLines(raw string) []string {
	text := strings.TrimPrefix(raw, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// DetectDelimiter returns the candidate with the highest median width over
// lines. Ties go to the earliest candidate; ',' when lines is empty.
func DetectDelimiter(lines []string) rune {
	best, bestScore := ',', 0
	for _, d := range Delimiters {
		widths := make([]int, len(lines))
		for i, l := range lines {
			widths[i] = len(splitLine(l, d))
		}
		if m := median(widths); m > bestScore {
			best, bestScore = d, m
		}
	}
	return best
}

// median returns the upper median (sorted[n/2]) of widths, 0 when empty.
func median(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	sorted := append([]int(nil), widths...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// splitLine splits a single line on delim.
//
// Quote rule:
//   - `"` toggles the quoted span.
//   - `""` inside a quoted span is a literal quote.
//   - delim inside a quoted span is part of the cell.
func splitLine(line string, delim rune) []string {
	var (
		out []string
		cur strings.Builder
		inQ bool
	)
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		ch := rs[i]
		switch {
		case ch == '"':
			if inQ && i+1 < len(rs) && rs[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQ = !inQ
			}
		case ch == delim && !inQ:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(out, cur.String())
}

// Clean trims every cell, drops blank trailing cells, and drops rows that end
// up empty. Interior blank cells are kept so column positions stay aligned.
func Clean(rows [][]string) [][]string {
	var out [][]string
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = strings.TrimSpace(c)
		}
		n := len(cells)
		for n > 0 && cells[n-1] == "" {
			n--
		}
		if n == 0 {
			continue
		}
		out = append(out, cells[:n])
	}
	return out
}

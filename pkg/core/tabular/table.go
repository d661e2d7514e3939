// Package tabular loads spreadsheet-like files into a uniform row/column
// representation. It is the pipeline's tabular-reader collaborator: every
// failure is returned to the caller as a plain error so the run can record a
// warning and move on, never abort.
package tabular

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Table is the row/column content of one source file. Headers keep their
// native spelling; renaming to the canonical vocabulary happens later.
type Table struct {
	SourcePath string
	Headers    []string
	Rows       [][]string
}

// Load reads a file into a Table, dispatching on extension.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	case ".xls":
		return nil, fmt.Errorf("legacy xls workbook not supported: %s", filepath.Base(path))
	case ".html", ".htm":
		return ReadHTML(path)
	default:
		return nil, fmt.Errorf("no tabular reader for %s", filepath.Ext(path))
	}
}

// ColumnIndex returns the position of an exact header match, or -1.
func (t *Table) ColumnIndex(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell under the given header for row i, or "" when
// the column is absent or the position is out of range.
func (t *Table) Cell(i int, header string) string {
	idx := t.ColumnIndex(header)
	if idx < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	row := t.Rows[i]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Preview renders the header plus the first n data rows as pipe-delimited
// text. Used as the bounded classifier preview for tabular formats.
func (t *Table) Preview(n int) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Headers, " | "))
	sb.WriteString("\n")
	for i, row := range t.Rows {
		if i >= n {
			break
		}
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// normalizeRows trims cells, drops fully empty rows, and pads short rows out
// to the header width so positional lookups stay in range.
func normalizeRows(headers []string, raw [][]string) [][]string {
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		empty := true
		row := make([]string, 0, len(headers))
		for _, c := range r {
			c = strings.TrimSpace(c)
			if c != "" {
				empty = false
			}
			row = append(row, c)
		}
		if empty {
			continue
		}
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	return rows
}

// findHeaderRow picks the first row with at least two non-empty cells,
// skipping title and banner rows that precede the real header.
func findHeaderRow(raw [][]string) int {
	for i, r := range raw {
		filled := 0
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				filled++
			}
		}
		if filled >= 2 {
			return i
		}
	}
	return -1
}

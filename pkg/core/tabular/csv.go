package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadCSV loads a delimited text file. The reader is deliberately lenient:
// ragged record lengths are accepted and the delimiter is sniffed from the
// first line, since exported bond lists arrive with either "," or ";".
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim, err := sniffDelimiter(f)
	if err != nil {
		return nil, fmt.Errorf("sniff delimiter: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	raw, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	headerIdx := findHeaderRow(raw)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found in %s", path)
	}

	headers := make([]string, len(raw[headerIdx]))
	for i, h := range raw[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Table{
		SourcePath: path,
		Headers:    headers,
		Rows:       normalizeRows(headers, raw[headerIdx+1:]),
	}, nil
}

// sniffDelimiter counts candidate separators on the first line and picks the
// most frequent, defaulting to comma.
func sniffDelimiter(f *os.File) (rune, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return ',', err
		}
		return ',', nil
	}
	line := scanner.Text()

	best, bestCount := ',', strings.Count(line, ",")
	for _, cand := range []rune{';', '\t'} {
		if c := strings.Count(line, string(cand)); c > bestCount {
			best, bestCount = cand, c
		}
	}
	return best, nil
}

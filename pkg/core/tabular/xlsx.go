package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads the first sheet of a workbook. Only the first sheet is
// consulted: the bond lists this pipeline sees put data there and keep any
// further sheets for disclaimers.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
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

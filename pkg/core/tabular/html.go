package tabular

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadHTML extracts the largest <table> from a saved web page. Pages carry
// navigation and disclaimer tables around the data; cell count is a reliable
// proxy for which one holds the instrument list.
func ReadHTML(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var best [][]string
	bestCells := 0

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var rows [][]string
		cells := 0
		tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var row []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
				cells++
			})
			if len(row) > 0 {
				rows = append(rows, row)
			}
		})
		if cells > bestCells {
			best, bestCells = rows, cells
		}
	})

	if len(best) == 0 {
		return nil, fmt.Errorf("no table found in %s", path)
	}

	headerIdx := findHeaderRow(best)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found in %s", path)
	}

	headers := make([]string, len(best[headerIdx]))
	for i, h := range best[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{
		SourcePath: path,
		Headers:    headers,
		Rows:       normalizeRows(headers, best[headerIdx+1:]),
	}
	log.Printf("[Tabular] %s: selected table with %d columns x %d rows", path, len(t.Headers), len(t.Rows))
	return t, nil
}

package classify

import (
	"regexp"
	"sort"
	"strings"

	"bond_radar/pkg/core/tabular"
)

// ============================================================================
// COMPANY DETECTOR
// ============================================================================
//
// Runs over tabular documents classified with instrument-bearing types and
// collects plausible entity names two ways: a corporate-suffix pattern over
// free text, and direct lookup in issuer/company/name-like columns. Both are
// heuristics; downstream scoring tolerates noise better than it tolerates a
// missing issuer.

// entitySuffixRe matches capitalized word runs ending in a corporate suffix,
// e.g. "Apple Inc.", "Siemens AG", "JPMorgan Chase & Co".
var entitySuffixRe = regexp.MustCompile(
	`\b([A-Z][A-Za-z0-9&'.\-]*(?: (?:[A-Z][A-Za-z0-9&'.\-]*|&)){0,3} ` +
		`(?:Inc|Incorporated|Corp|Corporation|Ltd|Limited|PLC|AG|SA|SE|NV|ASA|Group|Holdings?|Co))\.?`)

// isinLikeRe guards the column lookup against identifier columns that were
// mislabeled "name".
var isinLikeRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{10}$`)

// entityColumnHints marks headers worth a direct lookup. Matching is a
// lowercase substring test, so "Issuer Name" and "Company" both qualify.
var entityColumnHints = []string{"issuer", "company", "entity", "borrower", "name"}

// DetectEntities scans one loaded table and returns the unique entity names
// found, sorted. Case-insensitive duplicates collapse onto the first spelling
// seen.
func DetectEntities(tbl *tabular.Table) []string {
	seen := make(map[string]string) // lowercase -> display

	record := func(name string) {
		name = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "."))
		if !plausibleEntity(name) {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; !ok {
			seen[key] = name
		}
	}

	// (a) Corporate-suffix matches anywhere in the table's text.
	for _, row := range tbl.Rows {
		for _, cell := range row {
			for _, m := range entitySuffixRe.FindAllStringSubmatch(cell, -1) {
				record(m[1])
			}
		}
	}

	// (b) Direct column lookup.
	for col, header := range tbl.Headers {
		if !entityColumn(header) {
			continue
		}
		for _, row := range tbl.Rows {
			if col < len(row) {
				record(row[col])
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}

func entityColumn(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, hint := range entityColumnHints {
		if strings.Contains(h, hint) {
			return true
		}
	}
	return false
}

func plausibleEntity(name string) bool {
	if len(name) < 3 {
		return false
	}
	if isinLikeRe.MatchString(strings.ToUpper(strings.ReplaceAll(name, " ", ""))) {
		return false
	}
	hasLetter := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	return hasLetter
}

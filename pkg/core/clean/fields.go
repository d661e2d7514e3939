// Package clean turns raw table cells into typed instrument fields.
// Every parser follows the same contract: a value that fits the field's
// grammar comes back typed, anything else comes back null. Parsers never
// return errors and never panic; a bad cell costs one field, not the row.
package clean

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// BLANK DETECTION
// =============================================================================

// isBlank reports whether a cell carries no value at all. Blank cells are not
// parse failures and never produce warnings.
func isBlank(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "-", "—", "–", "n/a", "na", "null", "none":
		return true
	}
	return false
}

// =============================================================================
// IDENTIFIER - ISIN-like codes
// =============================================================================

var isinRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{10}$`)

// ParseISIN validates an ISIN-like identifier: two letters, ten alphanumerics.
// Examples:
//
//	"us037833en61 " → "US037833EN61"
//	"INVALID123"    → ""
func ParseISIN(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if isinRe.MatchString(s) {
		return s
	}
	return ""
}

// =============================================================================
// RATE - coupons and yields, in percent
// =============================================================================

// ParseRate parses a percentage rate. Values up to 20 are taken as-is; values
// in (20, 2000] are assumed to be basis points and divided by 100; anything
// else is rejected.
// Examples:
//
//	"3.25%" → 3.25
//	"3,25"  → 3.25
//	"325"   → 3.25
//	"-1.0"  → nil
func ParseRate(raw string) *float64 {
	if isBlank(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	switch {
	case v >= 0 && v <= 20:
		return &v
	case v > 20 && v <= 2000:
		v = v / 100
		return &v
	}
	return nil
}

// =============================================================================
// PRICE - percent of par
// =============================================================================

// ParsePrice parses a clean price quoted as percent of par. Thousands
// separators are stripped before parsing; anything outside [30, 200] is not a
// plausible bond price and comes back nil.
// Examples:
//
//	"98.36"  → 98.36
//	" 101 "  → 101
//	"12.5"   → nil
func ParsePrice(raw string) *float64 {
	if isBlank(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if v < 30 || v > 200 {
		return nil
	}
	return &v
}

// =============================================================================
// DATE - maturity dates
// =============================================================================

// dateLayouts are tried in order. Day-first layouts sit before month-first so
// an ambiguous "05/06/2029" always resolves the same way.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
	"01/02/2006",
	"2 January 2006",
	"Jan 2, 2006",
}

// genericLayouts is the fallback tier for spellings outside the explicit set.
// The single-digit variants matter: time.Parse treats "02/01/2006" as strictly
// zero-padded, so "8/8/2029" reaches this tier.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"20060102",
	"2/1/2006",
	"1/2/2006",
	"2 Jan 2006",
	"January 2, 2006",
	"January 2006",
	"Jan 2006",
}

// ParseDate parses a calendar date against the explicit layouts first, then
// the generic tier. Unparseable input comes back nil.
func ParseDate(raw string) *time.Time {
	if isBlank(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// =============================================================================
// RATING - letter-grade credit ratings
// =============================================================================

var (
	ratingParenRe = regexp.MustCompile(`\([^)]*\)`)
	ratingRe      = regexp.MustCompile(`^[ABC]{1,3}[+-]?$`)
)

// ParseRating normalizes a letter rating: uppercase, parenthesized qualifiers
// stripped, then one to three letters from {A, B, C} with an optional + or -,
// or the single letter D.
// Examples:
//
//	"bbb+"     → "BBB+"
//	"AA (sf)"  → "AA"
//	"Aa2"      → ""
func ParseRating(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSpace(ratingParenRe.ReplaceAllString(s, ""))
	if s == "D" || ratingRe.MatchString(s) {
		return s
	}
	return ""
}

// =============================================================================
// ENUM FIELDS - coupon type, frequency, seniority, currency
// =============================================================================

// normalizeCouponType folds provider spellings onto the closed coupon-type
// set. Unknown spellings fold to empty, silently.
func normalizeCouponType(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "fixed" || s == "fix":
		return "fixed"
	case s == "floating" || s == "float" || s == "frn" || s == "variable":
		return "floating"
	case strings.Contains(s, "zero"):
		return "zero"
	}
	return ""
}

func normalizeFrequency(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "1" || s == "annual" || s == "yearly":
		return "annual"
	case s == "2" || s == "semi" || s == "semi-annual" || s == "semiannual" || s == "semi annual":
		return "semi-annual"
	case s == "4" || s == "quarterly":
		return "quarterly"
	case s == "12" || s == "monthly":
		return "monthly"
	}
	return ""
}

func normalizeSeniority(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "subordinat") || s == "sub" || s == "junior":
		return "subordinated"
	case strings.Contains(s, "senior"):
		return "senior"
	case strings.Contains(s, "secured"):
		return "secured"
	}
	return ""
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// normalizeCurrency keeps only well-formed ISO 4217 codes. Everything else is
// left empty for the enricher to fill from the identifier prefix.
func normalizeCurrency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if currencyRe.MatchString(s) {
		return s
	}
	return ""
}

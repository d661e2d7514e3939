package schema

import (
	"testing"

	"bond_radar/pkg/core/tabular"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"ISIN", FieldISIN, true},
		{"Isin", FieldISIN, true},
		{"Security ID", FieldISIN, true},
		{"Coupon (%)", FieldCoupon, true},
		{"Moody's", FieldRating1, true},
		{"S&P Rating", FieldRating2, true},
		{"Fitch", FieldRating3, true},
		{"Minimum Denomination", FieldMinimumPiece, true},
		// Exact-match only: unseen casings and spellings stay unmapped.
		{"ISIN CODE", "", false},
		{"isin code", "", false},
		{"MOODY'S", "", false},
		{"Spread", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			got, ok := Canonical(tc.header)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Canonical(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestNormalizeRenamesKnownHeaders(t *testing.T) {
	tbl := &tabular.Table{
		SourcePath: "universe.csv",
		Headers:    []string{"ISIN", "Issuer Name", "Coupon Rate", "Maturity Date", "Spread"},
		Rows: [][]string{
			{"US037833EN61", "Apple Inc", "3.25%", "08/08/2029", "85"},
		},
	}

	out := Normalize(tbl)

	want := []string{"isin", "issuer", "coupon", "maturity", "Spread"}
	for i, h := range want {
		if out.Headers[i] != h {
			t.Fatalf("header %d = %q, want %q", i, out.Headers[i], h)
		}
	}
	if out.SourcePath != "universe.csv" {
		t.Fatalf("source path not carried over: %q", out.SourcePath)
	}
	if out.Cell(0, FieldISIN) != "US037833EN61" {
		t.Fatalf("canonical lookup after rename failed")
	}
	// Unmapped column is preserved, just never read by name downstream.
	if out.Headers[4] != "Spread" {
		t.Fatalf("unmapped header was altered: %q", out.Headers[4])
	}
}

func TestNormalizeLeavesInputUntouched(t *testing.T) {
	tbl := &tabular.Table{
		Headers: []string{"ISIN", "Price"},
		Rows:    [][]string{{"XS1234567890", "99.5"}},
	}

	_ = Normalize(tbl)

	if tbl.Headers[0] != "ISIN" || tbl.Headers[1] != "Price" {
		t.Fatalf("Normalize mutated its input headers: %v", tbl.Headers)
	}
}

func TestNormalizeDuplicateCanonicalTargets(t *testing.T) {
	// Two native headers mapping onto the same field both get renamed; the
	// first column wins on lookup, matching Table.ColumnIndex semantics.
	tbl := &tabular.Table{
		Headers: []string{"ISIN", "Identifier", "Issuer"},
		Rows:    [][]string{{"DE000A1EWWW0", "ignored", "Adidas AG"}},
	}

	out := Normalize(tbl)

	if out.Headers[0] != FieldISIN || out.Headers[1] != FieldISIN {
		t.Fatalf("both aliases should rename to %q, got %v", FieldISIN, out.Headers)
	}
	if got := out.Cell(0, FieldISIN); got != "DE000A1EWWW0" {
		t.Fatalf("Cell(isin) = %q, want first column value", got)
	}
}

// Package schema renames a table's native column headers onto the canonical
// field vocabulary via a static alias table. Matching is exact-string and
// case-sensitive as authored: a spelling the table misses stays unmapped and
// is simply ignored downstream. That is a deliberate simplification; widening
// to fuzzy matching would change which columns are considered canonical.
package schema

import (
	"bond_radar/pkg/core/tabular"
)

// AliasTableVersion identifies the alias vocabulary revision carried in this
// build. Bump when aliases are added so output provenance stays reproducible.
const AliasTableVersion = "v3"

// Canonical field names. These are the only headers the cleaner reads.
const (
	FieldISIN            = "isin"
	FieldIssuer          = "issuer"
	FieldCoupon          = "coupon"
	FieldMaturity        = "maturity"
	FieldCurrency        = "currency"
	FieldPrice           = "price"
	FieldYield           = "yield"
	FieldRating1         = "rating_1"
	FieldRating2         = "rating_2"
	FieldRating3         = "rating_3"
	FieldCouponType      = "coupon_type"
	FieldCouponFrequency = "coupon_frequency"
	FieldSeniority       = "seniority"
	FieldOutlook         = "outlook"
	FieldRisk            = "risk"
	FieldMinimumPiece    = "minimum_piece"
)

// canonicalFields fixes the order the reverse lookup is built in, so a
// mistakenly duplicated alias resolves the same way on every run.
var canonicalFields = []string{
	FieldISIN, FieldIssuer, FieldCoupon, FieldMaturity, FieldCurrency,
	FieldPrice, FieldYield, FieldRating1, FieldRating2, FieldRating3,
	FieldCouponType, FieldCouponFrequency, FieldSeniority,
	FieldOutlook, FieldRisk, FieldMinimumPiece,
}

// aliasTable maps each canonical field to the exact header spellings observed
// across provider exports. Grown by inspection of real files, not generated.
var aliasTable = map[string][]string{
	FieldISIN: {"ISIN", "isin", "Isin", "ISIN Code", "ISIN code", "Identifier",
		"Security ID", "SecurityID", "Bond ID", "Instrument ID"},
	FieldIssuer: {"Issuer", "issuer", "ISSUER", "Issuer Name", "Company",
		"Company Name", "company", "Name", "Entity", "Borrower", "Obligor"},
	FieldCoupon: {"Coupon", "coupon", "COUPON", "Coupon Rate", "Coupon (%)",
		"Coupon %", "CPN", "Cpn", "Interest Rate", "Rate"},
	FieldMaturity: {"Maturity", "maturity", "Maturity Date", "MaturityDate",
		"Mat Date", "Mat.", "Redemption", "Redemption Date", "Due", "Due Date"},
	FieldCurrency: {"Currency", "currency", "CCY", "Ccy", "ccy", "CUR", "Crncy"},
	FieldPrice: {"Price", "price", "PRICE", "Clean Price", "Ask Price",
		"Mid Price", "PX", "Px Last", "Last Price"},
	FieldYield: {"Yield", "yield", "YTM", "Yield to Maturity", "YTW",
		"Yield (%)", "Yld"},
	FieldRating1: {"Rating", "rating", "Moody's", "Moodys", "Moody's Rating",
		"Moody Rating", "Rating 1"},
	FieldRating2: {"S&P", "S&P Rating", "SP Rating", "Standard & Poor's",
		"Rating 2"},
	FieldRating3: {"Fitch", "Fitch Rating", "Rating 3"},
	FieldCouponType: {"Coupon Type", "coupon type", "Type", "Fixed/Float",
		"Fix/Float"},
	FieldCouponFrequency: {"Frequency", "Coupon Frequency", "Freq",
		"Payment Frequency", "Pay Freq"},
	FieldSeniority: {"Seniority", "seniority", "Rank", "Ranking", "Payment Rank"},
	FieldOutlook:   {"Outlook", "outlook", "View", "Analyst View"},
	FieldRisk:      {"Risk", "risk", "Risk Level", "Risk Tag", "Risk Category"},
	FieldMinimumPiece: {"Min Size", "Minimum Size", "Min Piece", "Minimum Piece",
		"Min Investment", "Minimum Investment", "Minimum Denomination", "Min Denom"},
}

var aliasLookup = buildLookup()

func buildLookup() map[string]string {
	lookup := make(map[string]string)
	for _, field := range canonicalFields {
		for _, alias := range aliasTable[field] {
			if _, exists := lookup[alias]; !exists {
				lookup[alias] = field
			}
		}
	}
	return lookup
}

// Canonical resolves one native header. The second return is false for
// headers outside the alias table.
func Canonical(header string) (string, bool) {
	field, ok := aliasLookup[header]
	return field, ok
}

// Normalize returns a new table with recognized headers renamed to canonical
// fields. Row data is shared, not copied: rows are never mutated downstream.
// Unmapped headers pass through untouched and no error is ever raised for
// them.
func Normalize(tbl *tabular.Table) *tabular.Table {
	headers := make([]string, len(tbl.Headers))
	for i, h := range tbl.Headers {
		if field, ok := aliasLookup[h]; ok {
			headers[i] = field
		} else {
			headers[i] = h
		}
	}
	return &tabular.Table{
		SourcePath: tbl.SourcePath,
		Headers:    headers,
		Rows:       tbl.Rows,
	}
}

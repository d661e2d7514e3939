package clean

import (
	"fmt"
	"strings"
	"time"

	"bond_radar/pkg/core/schema"
	"bond_radar/pkg/core/tabular"
	"bond_radar/pkg/models"
)

// Batch is the output of cleaning one document: the instrument rows extracted
// from it plus the normalized table they came from. Later stages that need
// row-level detail the instrument model does not carry (outlook tags on an
// inclusion list, for example) read it from the table.
type Batch struct {
	Doc     models.DocumentRecord
	Table   *tabular.Table
	Records []models.InstrumentRecord
}

// Extract builds one instrument record per table row. Field parsers decide
// typed-or-null independently; a non-blank cell its parser rejects produces a
// FieldParseFailure warning and a null field, never an error. Rows whose
// identifier does not validate are still emitted (with an empty ISIN) so the
// deduplicate stage can count and drop them in one place.
func Extract(tbl *tabular.Table, doc models.DocumentRecord) (Batch, []models.Warning) {
	var warnings []models.Warning
	parsedAt := time.Now().UTC()

	warn := func(row int, field, raw string) {
		warnings = append(warnings, models.Warning{
			Category: models.WarnFieldParse,
			Document: doc.Path,
			Message:  fmt.Sprintf("row %d: %s %q unparseable", row+1, field, raw),
		})
	}

	records := make([]models.InstrumentRecord, 0, len(tbl.Rows))
	for i := range tbl.Rows {
		rec := models.InstrumentRecord{
			Issuer:   strings.TrimSpace(tbl.Cell(i, schema.FieldIssuer)),
			Currency: normalizeCurrency(tbl.Cell(i, schema.FieldCurrency)),

			CouponType:      normalizeCouponType(tbl.Cell(i, schema.FieldCouponType)),
			CouponFrequency: normalizeFrequency(tbl.Cell(i, schema.FieldCouponFrequency)),
			Seniority:       normalizeSeniority(tbl.Cell(i, schema.FieldSeniority)),

			Provenance: models.Provenance{
				SourceDocument: doc.Path,
				SourceType:     doc.Type,
				ParsedAt:       parsedAt,
			},
			ContributingDocs: []string{doc.Path},
		}

		if raw := tbl.Cell(i, schema.FieldISIN); !isBlank(raw) {
			if rec.ISIN = ParseISIN(raw); rec.ISIN == "" {
				warn(i, "identifier", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldCoupon); !isBlank(raw) {
			if rec.Coupon = ParseRate(raw); rec.Coupon == nil {
				warn(i, "coupon", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldMaturity); !isBlank(raw) {
			if rec.Maturity = ParseDate(raw); rec.Maturity == nil {
				warn(i, "maturity", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldPrice); !isBlank(raw) {
			if rec.Price = ParsePrice(raw); rec.Price == nil {
				warn(i, "price", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldYield); !isBlank(raw) {
			if rec.Yield = ParseRate(raw); rec.Yield == nil {
				warn(i, "yield", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldRating1); !isBlank(raw) {
			if rec.Rating1 = ParseRating(raw); rec.Rating1 == "" {
				warn(i, "rating_1", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldRating2); !isBlank(raw) {
			if rec.Rating2 = ParseRating(raw); rec.Rating2 == "" {
				warn(i, "rating_2", raw)
			}
		}
		if raw := tbl.Cell(i, schema.FieldRating3); !isBlank(raw) {
			if rec.Rating3 = ParseRating(raw); rec.Rating3 == "" {
				warn(i, "rating_3", raw)
			}
		}

		records = append(records, rec)
	}

	return Batch{Doc: doc, Table: tbl, Records: records}, warnings
}

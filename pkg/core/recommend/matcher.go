// Package recommend cross-references the final instrument set against the
// inclusion and removal list documents and infers a rationale for removals.
// The rationale comes from a deterministic rule cascade, not a classifier:
// rules are evaluated in a fixed order and every rule that fires contributes
// to the rationale string.
package recommend

import (
	"strings"

	"bond_radar/pkg/core/clean"
	"bond_radar/pkg/core/schema"
	"bond_radar/pkg/models"
)

// Rationale fragments. RationaleDeepDiscount and RationaleDefault are fixed
// phrases downstream consumers grep for; changing them is a breaking change.
const (
	RationaleDeepDiscount   = "low coupon trading at deep discount"
	RationaleCouponMismatch = "coupon below included-list preference"
	RationalePriceMismatch  = "price below included-list preference"
	RationaleDuration       = "maturity outside preferred duration range"
	RationaleDefault        = "portfolio rebalancing, no specific concern identified"
)

// Cascade thresholds.
const (
	deepDiscountCoupon = 2.0  // rule (a): coupon below this and
	deepDiscountPrice  = 95.0 // price below this
	couponMismatchGap  = 1.0  // rule (b): percentage points below the included mean
	priceMismatchGap   = 5.0  // rule (c): points below the included mean
	durationMinYears   = 2.0  // rule (d): acceptable years-to-maturity window
	durationMaxYears   = 15.0
)

// =============================================================================
// MEMBERSHIP INDEX
// =============================================================================

// listEntry is what an inclusion or removal row knows about an identifier.
type listEntry struct {
	outlook      string
	risk         string
	minimumPiece string
}

// indexLists walks the normalized list tables and records, per identifier,
// the first non-empty metadata seen. Rows whose identifier does not validate
// are skipped; the cleaner already warned about them.
func indexLists(batches []clean.Batch, docType models.DocType) map[string]listEntry {
	index := make(map[string]listEntry)
	for _, batch := range batches {
		if batch.Doc.Type != docType || batch.Table == nil {
			continue
		}
		for i := range batch.Table.Rows {
			isin := clean.ParseISIN(batch.Table.Cell(i, schema.FieldISIN))
			if isin == "" {
				continue
			}
			entry := index[isin]
			fillIfEmpty(&entry.outlook, batch.Table.Cell(i, schema.FieldOutlook))
			fillIfEmpty(&entry.risk, batch.Table.Cell(i, schema.FieldRisk))
			fillIfEmpty(&entry.minimumPiece, batch.Table.Cell(i, schema.FieldMinimumPiece))
			index[isin] = entry
		}
	}
	return index
}

func fillIfEmpty(dst *string, raw string) {
	if *dst == "" {
		*dst = strings.TrimSpace(raw)
	}
}

// =============================================================================
// MATCHER
// =============================================================================

// Match produces one recommendation per instrument. An identifier present on
// both list types counts as included; the inclusion signal is the stronger
// one. Instruments on neither list come back with status "unclassified".
func Match(instruments []models.InstrumentRecord, batches []clean.Batch) []models.RecommendationRecord {
	included := indexLists(batches, models.DocInclusionList)
	removed := indexLists(batches, models.DocRemovalList)

	meanCoupon, hasMeanCoupon := includedMean(instruments, included, func(r models.InstrumentRecord) *float64 { return r.Coupon })
	meanPrice, hasMeanPrice := includedMean(instruments, included, func(r models.InstrumentRecord) *float64 { return r.Price })

	out := make([]models.RecommendationRecord, 0, len(instruments))
	for _, inst := range instruments {
		rec := models.RecommendationRecord{
			ISIN:   inst.ISIN,
			Status: models.StatusUnclassified,
		}
		if entry, ok := included[inst.ISIN]; ok {
			rec.Status = models.StatusIncluded
			rec.SourceList = models.DocInclusionList
			rec.Outlook = entry.outlook
			rec.Risk = entry.risk
			rec.MinimumPiece = entry.minimumPiece
		} else if _, ok := removed[inst.ISIN]; ok {
			rec.Status = models.StatusRemoved
			rec.SourceList = models.DocRemovalList
			rec.Rationale = removalRationale(inst, meanCoupon, hasMeanCoupon, meanPrice, hasMeanPrice)
		}
		out = append(out, rec)
	}
	return out
}

// =============================================================================
// RATIONALE CASCADE
// =============================================================================

// removalRationale runs the rule cascade in order and concatenates every
// firing rule. Null fields simply keep a rule from firing.
func removalRationale(inst models.InstrumentRecord, meanCoupon float64, hasMeanCoupon bool, meanPrice float64, hasMeanPrice bool) string {
	var reasons []string

	// (a) low coupon and trading well below par
	if inst.Coupon != nil && *inst.Coupon < deepDiscountCoupon &&
		inst.Price != nil && *inst.Price < deepDiscountPrice {
		reasons = append(reasons, RationaleDeepDiscount)
	}
	// (b) coupon well under what the included set pays
	if hasMeanCoupon && inst.Coupon != nil && *inst.Coupon < meanCoupon-couponMismatchGap {
		reasons = append(reasons, RationaleCouponMismatch)
	}
	// (c) price well under where the included set trades
	if hasMeanPrice && inst.Price != nil && *inst.Price < meanPrice-priceMismatchGap {
		reasons = append(reasons, RationalePriceMismatch)
	}
	// (d) outside the preferred duration window
	if inst.YearsToMaturity != nil &&
		(*inst.YearsToMaturity < durationMinYears || *inst.YearsToMaturity > durationMaxYears) {
		reasons = append(reasons, RationaleDuration)
	}

	if len(reasons) == 0 {
		return RationaleDefault
	}
	return strings.Join(reasons, "; ")
}

// includedMean averages one field over the included instruments that carry
// it. The second return is false when no included instrument does.
func includedMean(instruments []models.InstrumentRecord, included map[string]listEntry, field func(models.InstrumentRecord) *float64) (float64, bool) {
	sum, n := 0.0, 0
	for _, inst := range instruments {
		if _, ok := included[inst.ISIN]; !ok {
			continue
		}
		if v := field(inst); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Package universe builds the deduplicated instrument set for one entity out
// of the per-document row batches.
//
// Core rules, in order:
//  1. Entity Filter: case-insensitive substring match of the target name
//     against the issuer field. Substring matching intentionally casts a wide
//     net ("Apple Bank" matches a target of "Apple"); rows it admits are
//     kept, not second-guessed.
//  2. Recency Bias: when the same identifier appears in several documents,
//     the row from the most recently modified document wins.
//  3. Null Backfill: fields the winning row left null are filled from the
//     next-most-recent non-null source. A non-null winner value is never
//     overwritten; the losing value is logged as a conflict instead.
package universe

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bond_radar/pkg/core/clean"
	"bond_radar/pkg/models"
)

// =============================================================================
// CANDIDATE COLLECTION
// =============================================================================

// MatchesEntity reports whether an issuer cell belongs to the target entity.
func MatchesEntity(issuer, target string) bool {
	if issuer == "" || target == "" {
		return false
	}
	return strings.Contains(strings.ToLower(issuer), strings.ToLower(target))
}

// candidate is one extracted row plus the modification time of the document
// it came from, which drives the recency ordering.
type candidate struct {
	rec        models.InstrumentRecord
	modifiedAt time.Time
}

// collect flattens the batches into per-identifier candidate lists. Rows from
// non-instrument-bearing documents, rows for other issuers, and rows without
// a valid identifier are dropped here.
func collect(batches []clean.Batch, target string) map[string][]candidate {
	groups := make(map[string][]candidate)
	for _, batch := range batches {
		if !batch.Doc.Type.InstrumentBearing() {
			continue
		}
		for _, rec := range batch.Records {
			if rec.ISIN == "" || !MatchesEntity(rec.Issuer, target) {
				continue
			}
			groups[rec.ISIN] = append(groups[rec.ISIN], candidate{
				rec:        rec,
				modifiedAt: batch.Doc.ModifiedAt,
			})
		}
	}
	return groups
}

// =============================================================================
// MERGE ENGINE
// =============================================================================

// Dedupe reduces each identifier's candidates to a single record and reports
// the conflicts it resolved along the way. Output order is fixed: maturity
// ascending with unknown maturities last, then identifier.
func Dedupe(batches []clean.Batch, target string) ([]models.InstrumentRecord, []models.Warning) {
	groups := collect(batches, target)

	var warnings []models.Warning
	merged := make([]models.InstrumentRecord, 0, len(groups))
	for _, cands := range groups {
		rec, w := mergeGroup(cands)
		merged = append(merged, rec)
		warnings = append(warnings, w...)
	}

	SortInstruments(merged)
	return merged, warnings
}

// mergeGroup applies recency bias and null backfill to one identifier's
// candidates.
func mergeGroup(cands []candidate) (models.InstrumentRecord, []models.Warning) {
	// Most recent first; stable so equal timestamps keep input order.
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].modifiedAt.After(cands[j].modifiedAt)
	})

	winner := cands[0].rec
	winner.ContributingDocs = []string{winner.Provenance.SourceDocument}

	var warnings []models.Warning
	for _, older := range cands[1:] {
		warnings = append(warnings, backfill(&winner, older.rec)...)
		winner.ContributingDocs = appendUnique(winner.ContributingDocs, older.rec.Provenance.SourceDocument)
	}
	return winner, warnings
}

// backfill copies non-null fields from an older record into the winner's null
// slots. Conflicting non-null values are surfaced as warnings; the winner's
// value stands.
func backfill(winner *models.InstrumentRecord, older models.InstrumentRecord) []models.Warning {
	var warnings []models.Warning

	conflict := func(field string, kept, dropped interface{}) {
		warnings = append(warnings, models.Warning{
			Category: models.WarnDuplicateConflict,
			Document: older.Provenance.SourceDocument,
			Message: fmt.Sprintf("%s: %s %v from %s conflicts with %v from %s, newer value kept",
				winner.ISIN, field, dropped, older.Provenance.SourceDocument,
				kept, winner.Provenance.SourceDocument),
		})
	}

	mergeFloat := func(field string, dst **float64, src *float64) {
		switch {
		case src == nil:
		case *dst == nil:
			v := *src
			*dst = &v
		case **dst != *src:
			conflict(field, **dst, *src)
		}
	}
	mergeString := func(field string, dst *string, src string) {
		switch {
		case src == "":
		case *dst == "":
			*dst = src
		case *dst != src:
			conflict(field, *dst, src)
		}
	}

	mergeFloat("coupon", &winner.Coupon, older.Coupon)
	mergeFloat("price", &winner.Price, older.Price)
	mergeFloat("yield", &winner.Yield, older.Yield)

	switch {
	case older.Maturity == nil:
	case winner.Maturity == nil:
		t := *older.Maturity
		winner.Maturity = &t
	case !winner.Maturity.Equal(*older.Maturity):
		conflict("maturity", winner.Maturity.Format("2006-01-02"), older.Maturity.Format("2006-01-02"))
	}

	mergeString("issuer", &winner.Issuer, older.Issuer)
	mergeString("currency", &winner.Currency, older.Currency)
	mergeString("rating_1", &winner.Rating1, older.Rating1)
	mergeString("rating_2", &winner.Rating2, older.Rating2)
	mergeString("rating_3", &winner.Rating3, older.Rating3)
	mergeString("coupon_type", &winner.CouponType, older.CouponType)
	mergeString("coupon_frequency", &winner.CouponFrequency, older.CouponFrequency)
	mergeString("seniority", &winner.Seniority, older.Seniority)

	return warnings
}

// =============================================================================
// BUILD - filter, merge, enrich, sort in one call
// =============================================================================

// Build is the full path from cleaned batches to the final instrument set for
// one entity. Derived fields are computed relative to the caller's now, so
// results are reproducible in tests.
func Build(batches []clean.Batch, target string, now time.Time) ([]models.InstrumentRecord, []models.Warning) {
	merged, warnings := Dedupe(batches, target)
	for i := range merged {
		Enrich(&merged[i], now)
	}
	return merged, warnings
}

// SortInstruments orders records by maturity ascending, unknown maturities
// last, ties broken by identifier. Running it twice changes nothing.
func SortInstruments(recs []models.InstrumentRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		mi, mj := recs[i].Maturity, recs[j].Maturity
		switch {
		case mi == nil && mj == nil:
			return recs[i].ISIN < recs[j].ISIN
		case mi == nil:
			return false
		case mj == nil:
			return true
		case !mi.Equal(*mj):
			return mi.Before(*mj)
		}
		return recs[i].ISIN < recs[j].ISIN
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

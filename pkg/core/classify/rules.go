package classify

import (
	"path/filepath"
	"strings"

	"bond_radar/pkg/models"
)

// ============================================================================
// STAGE 1: FILENAME PATTERN RULES
// ============================================================================
//
// The table is ordered. Rules are evaluated top to bottom and patterns left to
// right; the first hit wins, so ties resolve by declaration order. Keep new
// entries where they belong in the priority order, not alphabetically.

const (
	// ruleConfidence is assigned to any filename match. Longer patterns are
	// more specific, so they earn a small bonus.
	ruleConfidence      = 0.90
	ruleConfidenceBonus = 0.05
	longPatternLen      = 8
)

type patternRule struct {
	docType  models.DocType
	patterns []string // lowercase substrings tested against the filename
}

var filenameRules = []patternRule{
	{models.DocUniverseList, []string{"universe", "bond_list", "bondlist", "all_bonds", "masterlist", "master_list"}},
	{models.DocInclusionList, []string{"inclusion", "recommended", "buy_list", "buylist", "additions", "focus_list"}},
	{models.DocRemovalList, []string{"removal", "removed", "exclusion", "dropped", "sell_list", "deletions"}},
	{models.DocTacticalList, []string{"tactical", "opportunistic", "trade_idea"}},
	{models.DocSectorReport, []string{"sector", "industry"}},
	{models.DocEntityProfile, []string{"profile", "issuer_report", "company_report", "credit_opinion"}},
	{models.DocSustainability, []string{"sustainability", "esg", "green_bond", "sfdr"}},
	{models.DocMarketNote, []string{"market", "weekly", "monthly", "quarterly", "outlook", "commentary"}},
}

// MatchFilename runs the Stage 1 rules against a path's base name. The third
// return is false when no pattern matched.
func MatchFilename(path string) (models.DocType, float64, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, rule := range filenameRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(name, pattern) {
				conf := ruleConfidence
				if len(pattern) >= longPatternLen {
					conf += ruleConfidenceBonus
				}
				return rule.docType, conf, true
			}
		}
	}
	return models.DocUnknown, 0, false
}

// validLabel reports whether a fallback-classifier answer belongs to the
// closed vocabulary.
func validLabel(label string) (models.DocType, bool) {
	cleaned := models.DocType(strings.ToLower(strings.TrimSpace(label)))
	for _, t := range models.AllDocTypes {
		if cleaned == t {
			return t, true
		}
	}
	if cleaned == models.DocUnclassified || cleaned == models.DocUnknown {
		return models.DocUnclassified, true
	}
	return models.DocUnclassified, false
}

package peers

import "strings"

// Static classification tables. Both are versioned so a run can state which
// vocabulary produced it; edits here change peer scores, nothing else.
const (
	SectorTableVersion = "v2"
	RatingTierVersion  = "v1"
)

// SectorOther is the fallback sector. It never contributes to similarity.
const SectorOther = "Other"

// sectorKeywords maps name fragments to sectors, checked in declaration
// order, first hit wins. Matching is case-insensitive substring over the
// entity name; entity-specific names are deliberately absent.
var sectorKeywords = []struct {
	sector   string
	keywords []string
}{
	{"Financials", []string{"bank", "financial", "insurance", "assurance", "capital", "credit", "asset management", "invest"}},
	{"Technology", []string{"software", "semiconductor", "technolog", "electronic", "comput", "digital", "internet", "cloud"}},
	{"Healthcare", []string{"pharma", "health", "bio", "medic", "therapeutic", "labs"}},
	{"Energy", []string{"energy", "oil", "gas", "petro", "drilling", "solar", "wind"}},
	{"Utilities", []string{"utilit", "power", "electric", "water", "grid"}},
	{"Telecom", []string{"telecom", "telefon", "communication", "mobile", "wireless"}},
	{"Automotive", []string{"motor", "automotive", "auto"}},
	{"Consumer", []string{"retail", "consumer", "food", "beverage", "brewing", "tobacco", "luxury", "fashion"}},
	{"Industrials", []string{"industri", "engineering", "machine", "aerospace", "defense", "construction", "cement"}},
	{"Materials", []string{"chemical", "steel", "mining", "metal", "paper"}},
	{"Real Estate", []string{"real estate", "properties", "realty", "immobil"}},
}

// SectorFor classifies an entity by name keywords. Names matching nothing
// land in SectorOther.
func SectorFor(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range sectorKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.sector
			}
		}
	}
	return SectorOther
}

// ratingTiers fixes the coarse tier ordering used for adjacency. AA+/AA/AA-
// all collapse to "AA" and so on down the scale.
var ratingTiers = []string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC", "CC", "C", "D"}

// TierFor collapses a cleaned letter rating to its tier. Ratings outside the
// scale, including the empty string, have no tier.
func TierFor(rating string) string {
	base := strings.TrimRight(rating, "+-")
	for _, tier := range ratingTiers {
		if base == tier {
			return tier
		}
	}
	return ""
}

// tierIndex returns the position in the tier ordering, -1 when absent.
func tierIndex(tier string) int {
	for i, t := range ratingTiers {
		if t == tier {
			return i
		}
	}
	return -1
}

// TiersAdjacent reports whether two tiers sit next to each other on the
// scale, AA and A for example.
func TiersAdjacent(a, b string) bool {
	ia, ib := tierIndex(a), tierIndex(b)
	if ia < 0 || ib < 0 {
		return false
	}
	diff := ia - ib
	return diff == 1 || diff == -1
}

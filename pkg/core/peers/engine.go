// Package peers scores the entities that co-appear with the target across
// the document corpus and keeps the closest matches. The score is a fixed
// heuristic, not a learned model: sector keywords, rating tiers, and
// co-listing counts, weighted by hand-tuned constants kept in one block
// below.
package peers

import (
	"fmt"
	"log"
	"sort"
	"time"

	"bond_radar/pkg/core/classify"
	"bond_radar/pkg/core/clean"
	"bond_radar/pkg/core/universe"
	"bond_radar/pkg/models"
)

// Scoring constants. The weights sum to 1.0 so a perfect match scores 1.0.
const (
	weightSameSector   = 0.4
	weightSameTier     = 0.3
	weightAdjacentTier = 0.15
	weightPerCoListing = 0.1
	maxCoListingScore  = 0.3

	// ScoreThreshold is the minimum (exclusive) score a candidate must reach.
	ScoreThreshold = 0.3
	// MaxPeers caps how many candidates survive the cut.
	MaxPeers = 5
)

// Similarity-basis tags, in the order rules are evaluated.
const (
	BasisSameSector   = "same-sector"
	BasisSameTier     = "same-rating-tier"
	BasisAdjacentTier = "adjacent-rating-tier"
)

// Detect scores every entity seen on inclusion-list documents against the
// target and returns the top matches, each carrying its own instrument rows
// built from the same corpus. The target's already-built instruments supply
// its rating; candidates get theirs built here.
func Detect(target string, targetInstruments []models.InstrumentRecord, index *classify.EntityIndex, batches []clean.Batch, now time.Time) []models.PeerRecord {
	targetSector := SectorFor(target)
	targetTier := TierFor(bestRating(targetInstruments))

	var peers []models.PeerRecord
	for _, name := range index.EntitiesOn(models.DocInclusionList) {
		if universe.MatchesEntity(name, target) || universe.MatchesEntity(target, name) {
			continue // the target itself, under whatever spelling
		}

		instruments, _ := universe.Build(batches, name, now)
		score, basis := scoreCandidate(name, instruments, target, targetSector, targetTier, index)
		if score <= ScoreThreshold {
			continue
		}
		peers = append(peers, models.PeerRecord{
			Name:        name,
			Score:       score,
			Basis:       basis,
			Instruments: instruments,
		})
	}

	sort.SliceStable(peers, func(i, j int) bool {
		if peers[i].Score != peers[j].Score {
			return peers[i].Score > peers[j].Score
		}
		return peers[i].Name < peers[j].Name
	})
	if len(peers) > MaxPeers {
		peers = peers[:MaxPeers]
	}

	log.Printf("[Peers] %d candidates above threshold for %q", len(peers), target)
	return peers
}

// scoreCandidate applies the three rules in order and collects basis tags as
// they fire.
func scoreCandidate(name string, instruments []models.InstrumentRecord, target, targetSector, targetTier string, index *classify.EntityIndex) (float64, []string) {
	score := 0.0
	var basis []string

	// Sector match. Unclassified names never count as a match, even when
	// the target is unclassified too.
	if sector := SectorFor(name); sector != SectorOther && sector == targetSector {
		score += weightSameSector
		basis = append(basis, BasisSameSector)
	}

	// Rating tier match, or half credit for the neighboring tier.
	if tier := TierFor(bestRating(instruments)); tier != "" && targetTier != "" {
		if tier == targetTier {
			score += weightSameTier
			basis = append(basis, BasisSameTier)
		} else if TiersAdjacent(tier, targetTier) {
			score += weightAdjacentTier
			basis = append(basis, BasisAdjacentTier)
		}
	}

	// Repeated co-listing on inclusion documents.
	if n := index.CoAppearances(target, name, models.DocInclusionList); n > 0 {
		contribution := weightPerCoListing * float64(n)
		if contribution > maxCoListingScore {
			contribution = maxCoListingScore
		}
		score += contribution
		basis = append(basis, fmt.Sprintf("co-appears-on-%d-lists", n))
	}

	return score, basis
}

// bestRating walks the instruments in their deterministic order and returns
// the first rating present, preferring the first rating column of each.
func bestRating(instruments []models.InstrumentRecord) string {
	for _, inst := range instruments {
		for _, r := range []string{inst.Rating1, inst.Rating2, inst.Rating3} {
			if r != "" {
				return r
			}
		}
	}
	return ""
}

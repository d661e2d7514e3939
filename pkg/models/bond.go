package models

import (
	"time"
)

// DocType is the closed set of document-type labels the classifier may assign.
type DocType string

const (
	DocUniverseList   DocType = "universe-list"
	DocInclusionList  DocType = "inclusion-list"
	DocRemovalList    DocType = "removal-list"
	DocTacticalList   DocType = "tactical-list"
	DocSectorReport   DocType = "sector-report"
	DocEntityProfile  DocType = "entity-profile"
	DocSustainability DocType = "sustainability-report"
	DocMarketNote     DocType = "market-note"

	// DocUnknown is the pre-classification state set by the scanner.
	// DocUnclassified is terminal: classification ran and nothing resolved.
	DocUnknown      DocType = "unknown"
	DocUnclassified DocType = "unclassified"
)

// AllDocTypes lists every assignable label in declaration order. The order is
// meaningful: rule tables and prompts iterate it as-is.
var AllDocTypes = []DocType{
	DocUniverseList, DocInclusionList, DocRemovalList, DocTacticalList,
	DocSectorReport, DocEntityProfile, DocSustainability, DocMarketNote,
}

// InstrumentBearing reports whether documents of this type carry instrument
// rows worth extracting.
func (d DocType) InstrumentBearing() bool {
	switch d {
	case DocUniverseList, DocInclusionList, DocRemovalList, DocTacticalList:
		return true
	}
	return false
}

// ClassifyMethod records which stage produced a document's label.
type ClassifyMethod string

const (
	MethodRule     ClassifyMethod = "rule"     // filename pattern table
	MethodFallback ClassifyMethod = "fallback" // external classifier
	MethodCached   ClassifyMethod = "cached"   // restored from the scan cache
	MethodNone     ClassifyMethod = "none"     // nothing resolved
)

// DocumentRecord describes one discovered file. It is created during the scan,
// filled in by the classifier, and never mutated afterwards.
type DocumentRecord struct {
	ID         string         `json:"id"`
	Path       string         `json:"path"`
	Format     string         `json:"format"` // lowercased extension without dot
	SizeBytes  int64          `json:"size_bytes"`
	ModifiedAt time.Time      `json:"modified_at"`
	Type       DocType        `json:"type"`
	Method     ClassifyMethod `json:"method"`
	Confidence float64        `json:"confidence"` // [0,1]
	Entities   []string       `json:"entities,omitempty"`
}

// Provenance ties an instrument back to the document it was parsed from.
type Provenance struct {
	SourceDocument string    `json:"source_document"`
	SourceType     DocType   `json:"source_type"`
	ParsedAt       time.Time `json:"parsed_at"`
}

// InstrumentRecord is one deduplicated bond. Numeric fields are pointers so a
// failed parse stays distinguishable from zero. After deduplication the ISIN
// is unique across the output set.
type InstrumentRecord struct {
	ISIN     string     `json:"isin"`
	Issuer   string     `json:"issuer"`
	Coupon   *float64   `json:"coupon,omitempty"`   // percent
	Maturity *time.Time `json:"maturity,omitempty"` // calendar date
	Currency string     `json:"currency,omitempty"`
	Price    *float64   `json:"price,omitempty"` // percent of par
	Yield    *float64   `json:"yield,omitempty"`
	Rating1  string     `json:"rating_1,omitempty"`
	Rating2  string     `json:"rating_2,omitempty"`
	Rating3  string     `json:"rating_3,omitempty"`

	CouponType      string `json:"coupon_type,omitempty"`      // fixed | floating | zero
	CouponFrequency string `json:"coupon_frequency,omitempty"` // annual | semi-annual | quarterly
	Seniority       string `json:"seniority,omitempty"`        // senior | subordinated

	// Derived by the enricher.
	YearsToMaturity *float64 `json:"years_to_maturity,omitempty"`
	MaturityBucket  string   `json:"maturity_bucket,omitempty"`
	CouponCategory  string   `json:"coupon_category,omitempty"`
	PriceCategory   string   `json:"price_category,omitempty"`

	Provenance       Provenance `json:"provenance"`
	ContributingDocs []string   `json:"contributing_docs,omitempty"`
	Confidence       float64    `json:"confidence"` // completeness score [0,1]
}

// RecommendationStatus is the outcome of matching an instrument against the
// inclusion and removal list documents.
type RecommendationStatus string

const (
	StatusIncluded     RecommendationStatus = "included"
	StatusRemoved      RecommendationStatus = "removed"
	StatusUnclassified RecommendationStatus = "unclassified"
)

// RecommendationRecord pairs one instrument with its list status. Recomputed
// on every run, never persisted incrementally.
type RecommendationRecord struct {
	ISIN         string               `json:"isin"`
	Status       RecommendationStatus `json:"status"`
	SourceList   DocType              `json:"source_list,omitempty"`
	Outlook      string               `json:"outlook,omitempty"`
	Risk         string               `json:"risk,omitempty"`
	MinimumPiece string               `json:"minimum_piece,omitempty"`
	Rationale    string               `json:"rationale,omitempty"`
}

// PeerRecord is a candidate comparable entity with its own private copy of
// instrument data. Derived fresh each run.
type PeerRecord struct {
	Name        string             `json:"name"`
	Score       float64            `json:"score"` // [0,1]
	Basis       []string           `json:"basis"` // ordered similarity reasons
	Instruments []InstrumentRecord `json:"instruments,omitempty"`
}

// WarningCategory names one entry of the recoverable-error taxonomy.
type WarningCategory string

const (
	WarnFileLoad          WarningCategory = "FileLoadFailure"
	WarnClassification    WarningCategory = "ClassificationUnresolved"
	WarnFieldParse        WarningCategory = "FieldParseFailure"
	WarnDuplicateConflict WarningCategory = "DuplicateIdentifierConflict"
)

// Warning is one recovered failure surfaced in the quality report.
type Warning struct {
	Category WarningCategory `json:"category"`
	Document string          `json:"document,omitempty"`
	Message  string          `json:"message"`
}

// RunReport is the quality-metrics summary attached to every result bundle.
type RunReport struct {
	DocumentsFound       int       `json:"documents_found"`
	DocumentsProcessed   int       `json:"documents_processed"`
	InstrumentsExtracted int       `json:"instruments_extracted"`
	RecommendationsFound int       `json:"recommendations_found"`
	PeersDetected        int       `json:"peers_detected"`
	Completeness         float64   `json:"completeness"` // mean instrument confidence, [0,1]
	Warnings             []Warning `json:"warnings"`
	StartedAt            time.Time `json:"started_at"`
	DurationMS           int64     `json:"duration_ms"`
}

// RunResult is the full serializable output bundle, the sole contract any
// downstream report generator consumes.
type RunResult struct {
	RunID           string                 `json:"run_id"`
	TargetEntity    string                 `json:"target_entity"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Documents       []DocumentRecord       `json:"documents"`
	Instruments     []InstrumentRecord     `json:"instruments"`
	Recommendations []RecommendationRecord `json:"recommendations"`
	Peers           []PeerRecord           `json:"peers"`
	Report          RunReport              `json:"report"`
}

package classify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bond_radar/pkg/models"
)

// --- Stubs ---

type fakeProvider struct {
	resp string
	err  error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Generate(ctx context.Context, system, user string) (string, error) {
	return f.resp, f.err
}

type fakeCache struct {
	entries map[string]models.DocumentRecord
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.DocumentRecord)}
}

func (f *fakeCache) Get(_ context.Context, doc models.DocumentRecord) (models.DocType, float64, bool) {
	if cached, ok := f.entries[doc.Path]; ok {
		return cached.Type, cached.Confidence, true
	}
	return models.DocUnknown, 0, false
}

func (f *fakeCache) Put(_ context.Context, doc models.DocumentRecord) {
	f.puts++
	f.entries[doc.Path] = doc
}

func docFor(t *testing.T, name, content string) models.DocumentRecord {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	ext := filepath.Ext(name)
	return models.DocumentRecord{
		ID:     "doc-" + name,
		Path:   path,
		Format: ext[1:],
		Type:   models.DocUnknown,
		Method: models.MethodNone,
	}
}

// =============================================================================
// STAGE 1: FILENAME RULES
// =============================================================================

func TestMatchFilename(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantType models.DocType
		wantConf float64
		wantHit  bool
	}{
		{"universe list", "bond_universe_2025.csv", models.DocUniverseList, 0.95, true},
		{"inclusion list", "buy_list_august.xlsx", models.DocInclusionList, 0.95, true},
		{"removal list", "removed_bonds.csv", models.DocRemovalList, 0.90, true},
		{"market note short pattern", "market_wrap.pdf", models.DocMarketNote, 0.90, true},
		{"uppercase filename", "ESG_Review.PDF", models.DocSustainability, 0.90, true},
		{"no match", "notes_final.txt", models.DocUnknown, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotConf, hit := MatchFilename(tt.path)
			if hit != tt.wantHit || gotType != tt.wantType {
				t.Fatalf("MatchFilename(%q) = (%s, %v, %v), want (%s, %v, %v)",
					tt.path, gotType, gotConf, hit, tt.wantType, tt.wantConf, tt.wantHit)
			}
			if hit && gotConf != tt.wantConf {
				t.Errorf("confidence = %v, want %v", gotConf, tt.wantConf)
			}
		})
	}
}

func TestMatchFilenameDeclarationOrderBreaksTies(t *testing.T) {
	// Contains both "universe" (rule 1) and "sector" (rule 5); the earlier
	// rule must win.
	gotType, _, hit := MatchFilename("sector_universe.csv")
	if !hit || gotType != models.DocUniverseList {
		t.Fatalf("got %s, want %s by declaration order", gotType, models.DocUniverseList)
	}
}

// =============================================================================
// STAGE 2: EXTERNAL FALLBACK
// =============================================================================

func TestDocumentFallbackResolves(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{resp: `{"label":"market-note","confidence":0.72}`}}
	doc := docFor(t, "untitled_download.txt", "Credit markets rallied this week on rate cut hopes.")

	got, warns := c.Document(context.Background(), doc)
	if len(warns) != 0 {
		t.Fatalf("warnings = %v", warns)
	}
	if got.Type != models.DocMarketNote || got.Method != models.MethodFallback {
		t.Errorf("got type=%s method=%s", got.Type, got.Method)
	}
	if got.Confidence != 0.72 {
		t.Errorf("confidence = %v, want 0.72", got.Confidence)
	}
}

func TestDocumentFallbackProviderErrorNeverFatal(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{err: errors.New("quota exceeded")}}
	doc := docFor(t, "untitled.txt", "some text")

	got, warns := c.Document(context.Background(), doc)
	if got.Type != models.DocUnclassified || got.Confidence != 0 {
		t.Errorf("got type=%s conf=%v, want unclassified/0", got.Type, got.Confidence)
	}
	if len(warns) != 1 || warns[0].Category != models.WarnClassification {
		t.Errorf("warnings = %v, want one ClassificationUnresolved", warns)
	}
}

func TestDocumentFallbackProseResponse(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{resp: "This looks rather like a universe list to me."}}
	doc := docFor(t, "untitled.txt", "some text")

	got, warns := c.Document(context.Background(), doc)
	if got.Type != models.DocUnclassified || len(warns) != 1 {
		t.Errorf("got type=%s warns=%v, want unclassified with warning", got.Type, warns)
	}
}

func TestDocumentFallbackVocabularyEnforced(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{resp: `{"label":"invoice","confidence":0.99}`}}
	doc := docFor(t, "untitled.txt", "some text")

	got, _ := c.Document(context.Background(), doc)
	if got.Type != models.DocUnclassified {
		t.Errorf("out-of-vocabulary label accepted: %s", got.Type)
	}
}

func TestDocumentNoProviderConfigured(t *testing.T) {
	c := &Classifier{}
	doc := docFor(t, "untitled.txt", "some text")

	got, warns := c.Document(context.Background(), doc)
	if got.Type != models.DocUnclassified || len(warns) != 1 {
		t.Errorf("got type=%s warns=%d, want unclassified with warning", got.Type, len(warns))
	}
}

func TestDocumentConfidenceClamped(t *testing.T) {
	c := &Classifier{Provider: &fakeProvider{resp: `{"label":"sector-report","confidence":3.5}`}}
	doc := docFor(t, "untitled.txt", "utilities sector deep dive")

	got, _ := c.Document(context.Background(), doc)
	if got.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", got.Confidence)
	}
}

// =============================================================================
// SCAN CACHE
// =============================================================================

func TestDocumentCachesFallbackResult(t *testing.T) {
	cache := newFakeCache()
	c := &Classifier{Provider: &fakeProvider{resp: `{"label":"entity-profile","confidence":0.8}`}, Cache: cache}
	doc := docFor(t, "untitled.txt", "Apple Inc. designs consumer electronics.")

	first, _ := c.Document(context.Background(), doc)
	if first.Method != models.MethodFallback {
		t.Fatalf("first method = %s", first.Method)
	}
	if cache.puts != 1 {
		t.Fatalf("cache puts = %d, want 1", cache.puts)
	}

	// Second pass with a dead provider must be served from cache.
	c2 := &Classifier{Provider: &fakeProvider{err: errors.New("down")}, Cache: cache}
	second, warns := c2.Document(context.Background(), doc)
	if second.Method != models.MethodCached || second.Type != models.DocEntityProfile {
		t.Errorf("second = method %s type %s, want cached entity-profile", second.Method, second.Type)
	}
	if len(warns) != 0 {
		t.Errorf("cached classification produced warnings: %v", warns)
	}
}

func TestDocumentUnresolvedNotCached(t *testing.T) {
	cache := newFakeCache()
	c := &Classifier{Provider: &fakeProvider{err: errors.New("down")}, Cache: cache}
	doc := docFor(t, "untitled.txt", "text")

	c.Document(context.Background(), doc)
	if cache.puts != 0 {
		t.Errorf("unresolved classification was cached")
	}
}

// =============================================================================
// PARALLEL CLASSIFICATION
// =============================================================================

func TestAllPreservesOrder(t *testing.T) {
	docs := []models.DocumentRecord{
		{ID: "a", Path: "bond_universe.csv", Format: "csv"},
		{ID: "b", Path: "buy_list.csv", Format: "csv"},
		{ID: "c", Path: "removed_positions.csv", Format: "csv"},
	}
	c := &Classifier{Workers: 2}

	got, _ := c.All(context.Background(), docs)
	if len(got) != 3 {
		t.Fatalf("results = %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("order not preserved: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Type != models.DocUniverseList || got[1].Type != models.DocInclusionList || got[2].Type != models.DocRemovalList {
		t.Errorf("types = %s %s %s", got[0].Type, got[1].Type, got[2].Type)
	}
}

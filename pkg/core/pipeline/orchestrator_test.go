package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bond_radar/pkg/core/scan"
	"bond_radar/pkg/models"
)

// ============================================================================
// MOCKS AND FIXTURES
// ============================================================================

type mockSink struct {
	SaveFunc func(ctx context.Context, result *models.RunResult) error
	saved    *models.RunResult
}

func (m *mockSink) Save(ctx context.Context, result *models.RunResult) error {
	m.saved = result
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, result)
	}
	return nil
}

type stubProvider struct {
	response string
	err      error
	calls    atomic.Int64
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	s.calls.Add(1)
	return s.response, s.err
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return path
}

const universeCSV = `ISIN,Issuer Name,Coupon,Maturity Date,Price
US037833EN61,Apple Inc,3.25%,08/08/2029,98.36
US594918BT09,Microsoft Corp,2.40%,06/02/2030,96.10
`

const inclusionCSV = `ISIN,Issuer,Outlook,Risk
US037833EN61,Apple Inc,stable,low
`

// fixedNow pins the clock so derived fields are reproducible.
var fixedNow = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestOrchestrator(provider *stubProvider) *Orchestrator {
	var o *Orchestrator
	if provider != nil {
		o = NewOrchestrator(provider, nil)
	} else {
		o = NewOrchestrator(nil, nil)
	}
	o.SetClock(func() time.Time { return fixedNow })
	o.SetWorkers(2)
	return o
}

// ============================================================================
// TESTS
// ============================================================================

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bond_universe.csv", universeCSV)
	writeDoc(t, dir, "inclusion_2026.csv", inclusionCSV)

	sink := &mockSink{}
	orch := newTestOrchestrator(nil)
	orch.SetSink(sink)

	result, err := orch.Run(context.Background(), dir, "Apple Inc")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Report.DocumentsFound != 2 || result.Report.DocumentsProcessed != 2 {
		t.Errorf("document counts = %d found / %d processed, want 2/2",
			result.Report.DocumentsFound, result.Report.DocumentsProcessed)
	}
	if len(result.Report.Warnings) != 0 {
		t.Errorf("clean fixtures must produce no warnings, got %v", result.Report.Warnings)
	}

	// Only the Apple bond survives the entity filter.
	if len(result.Instruments) != 1 {
		t.Fatalf("instruments = %d, want 1", len(result.Instruments))
	}
	inst := result.Instruments[0]
	if inst.ISIN != "US037833EN61" {
		t.Errorf("ISIN = %s", inst.ISIN)
	}
	if inst.Coupon == nil || *inst.Coupon != 3.25 {
		t.Errorf("coupon = %v, want 3.25", inst.Coupon)
	}
	if inst.MaturityBucket != "3-4 years" {
		t.Errorf("bucket = %q, want 3-4 years", inst.MaturityBucket)
	}

	if len(result.Recommendations) != 1 {
		t.Fatalf("recommendations = %d, want 1", len(result.Recommendations))
	}
	rec := result.Recommendations[0]
	if rec.Status != models.StatusIncluded || rec.SourceList != models.DocInclusionList {
		t.Errorf("recommendation = %s on %s", rec.Status, rec.SourceList)
	}
	if rec.Outlook != "stable" || rec.Risk != "low" {
		t.Errorf("list metadata = outlook %q risk %q", rec.Outlook, rec.Risk)
	}
	if result.Report.RecommendationsFound != 1 {
		t.Errorf("RecommendationsFound = %d", result.Report.RecommendationsFound)
	}

	// The target is the only entity on the inclusion list, so nobody is
	// left to be a peer.
	if len(result.Peers) != 0 {
		t.Errorf("peers = %v, want none", result.Peers)
	}

	if result.RunID == "" {
		t.Error("RunID must be set")
	}
	if !result.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v, want pinned clock", result.GeneratedAt)
	}
	if result.Report.Completeness <= 0 || result.Report.Completeness > 1 {
		t.Errorf("completeness = %v", result.Report.Completeness)
	}
	if sink.saved != result {
		t.Error("sink did not receive the run result")
	}
}

func TestRunEntityNamesOnDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bond_universe.csv", universeCSV)

	orch := newTestOrchestrator(nil)
	result, err := orch.Run(context.Background(), dir, "Apple Inc")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Documents) != 1 {
		t.Fatalf("documents = %d", len(result.Documents))
	}
	got := strings.Join(result.Documents[0].Entities, ", ")
	if !strings.Contains(got, "Apple Inc") || !strings.Contains(got, "Microsoft Corp") {
		t.Errorf("detected entities = %q, want both issuers", got)
	}
}

func TestRunFolderUnreadable(t *testing.T) {
	orch := newTestOrchestrator(nil)

	result, err := orch.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "Apple Inc")
	if err == nil {
		t.Fatal("scan of a missing folder must fail the run")
	}
	if !errors.Is(err, scan.ErrFolderUnreadable) {
		t.Errorf("error = %v, want ErrFolderUnreadable", err)
	}
	if result != nil {
		t.Errorf("result must be nil on a fatal error, got %+v", result)
	}
}

func TestRunRecoverableFailuresBecomeWarnings(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bond_universe.csv", universeCSV)
	// Instrument-bearing by filename rule, but not a real workbook.
	writeDoc(t, dir, "universe_legacy.xlsx", "this is not a spreadsheet")
	// No filename rule and no fallback collaborator configured.
	writeDoc(t, dir, "notes.txt", "call the desk about the new issue")

	orch := newTestOrchestrator(nil)
	result, err := orch.Run(context.Background(), dir, "Apple Inc")
	if err != nil {
		t.Fatalf("recoverable failures must not abort the run: %v", err)
	}

	if result.Report.DocumentsFound != 3 {
		t.Errorf("DocumentsFound = %d, want 3", result.Report.DocumentsFound)
	}
	if result.Report.DocumentsProcessed != 1 {
		t.Errorf("DocumentsProcessed = %d, want 1", result.Report.DocumentsProcessed)
	}

	byCategory := map[models.WarningCategory]int{}
	for _, w := range result.Report.Warnings {
		byCategory[w.Category]++
	}
	if byCategory[models.WarnFileLoad] != 1 {
		t.Errorf("want one load warning, got %v", result.Report.Warnings)
	}
	if byCategory[models.WarnClassification] != 1 {
		t.Errorf("want one classification warning, got %v", result.Report.Warnings)
	}

	// The unresolved document stays in the inventory, terminally labeled.
	var note *models.DocumentRecord
	for i := range result.Documents {
		if strings.HasSuffix(result.Documents[i].Path, "notes.txt") {
			note = &result.Documents[i]
		}
	}
	if note == nil {
		t.Fatal("notes.txt missing from document inventory")
	}
	if note.Type != models.DocUnclassified {
		t.Errorf("notes.txt type = %s, want unclassified", note.Type)
	}

	// The good universe file still yields the Apple instrument.
	if len(result.Instruments) != 1 {
		t.Errorf("instruments = %d, want 1", len(result.Instruments))
	}
}

func TestRunFallbackClassifier(t *testing.T) {
	dir := t.TempDir()
	// "holdings" matches no filename rule; only the collaborator can place it.
	writeDoc(t, dir, "holdings.csv", universeCSV)

	provider := &stubProvider{response: `{"label": "universe-list", "confidence": 0.84}`}
	orch := newTestOrchestrator(provider)

	result, err := orch.Run(context.Background(), dir, "Apple Inc")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if provider.calls.Load() != 1 {
		t.Errorf("collaborator calls = %d, want 1", provider.calls.Load())
	}
	doc := result.Documents[0]
	if doc.Type != models.DocUniverseList || doc.Method != models.MethodFallback {
		t.Errorf("classified as %s via %s", doc.Type, doc.Method)
	}
	if doc.Confidence != 0.84 {
		t.Errorf("confidence = %v", doc.Confidence)
	}
	if len(result.Instruments) != 1 {
		t.Errorf("fallback-classified list must still be extracted, got %d instruments", len(result.Instruments))
	}
}

func TestRunStorageFailure(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bond_universe.csv", universeCSV)

	sink := &mockSink{
		SaveFunc: func(ctx context.Context, result *models.RunResult) error {
			return errors.New("db connection lost")
		},
	}
	orch := newTestOrchestrator(nil)
	orch.SetSink(sink)

	_, err := orch.Run(context.Background(), dir, "Apple Inc")
	if err == nil || !strings.Contains(err.Error(), "storage failed") {
		t.Errorf("err = %v, want storage failure", err)
	}
}

func TestRunDeterministicAcrossRepeats(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bond_universe.csv", universeCSV)
	writeDoc(t, dir, "inclusion_2026.csv", inclusionCSV)

	run := func() *models.RunResult {
		orch := newTestOrchestrator(nil)
		result, err := orch.Run(context.Background(), dir, "Apple Inc")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if len(a.Instruments) != len(b.Instruments) {
		t.Fatalf("instrument counts differ: %d vs %d", len(a.Instruments), len(b.Instruments))
	}
	for i := range a.Instruments {
		if a.Instruments[i].ISIN != b.Instruments[i].ISIN {
			t.Errorf("instrument order differs at %d: %s vs %s",
				i, a.Instruments[i].ISIN, b.Instruments[i].ISIN)
		}
	}
	if a.Report.Completeness != b.Report.Completeness {
		t.Errorf("completeness differs: %v vs %v", a.Report.Completeness, b.Report.Completeness)
	}
}

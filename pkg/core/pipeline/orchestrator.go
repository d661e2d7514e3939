package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bond_radar/pkg/core/classify"
	"bond_radar/pkg/core/clean"
	"bond_radar/pkg/core/peers"
	"bond_radar/pkg/core/recommend"
	"bond_radar/pkg/core/scan"
	"bond_radar/pkg/core/schema"
	"bond_radar/pkg/core/tabular"
	"bond_radar/pkg/core/universe"
	"bond_radar/pkg/models"
)

// defaultExtractWorkers bounds the parallel load+extract stage.
const defaultExtractWorkers = 8

// ResultSink persists a finished run. Satisfied by store.RunRepo.
type ResultSink interface {
	Save(ctx context.Context, result *models.RunResult) error
}

// Orchestrator manages the end-to-end flow:
// Scan -> Classify -> Load/Normalize/Extract (parallel) -> Merge -> Enrich -> Recommend + Peers
//
// Stages up to extraction fan out across worker pools; the merge that builds
// the instrument universe is deliberately single-threaded so recency ordering
// stays deterministic. Recommendation matching and peer detection only read
// the frozen universe, so they run concurrently at the end.
type Orchestrator struct {
	classifier *classify.Classifier
	sink       ResultSink
	workers    int
	now        func() time.Time
}

// NewOrchestrator creates an orchestrator with default wiring.
// provider: classification collaborator for documents the filename rules
// cannot resolve (nil disables the fallback stage).
// cache: classification cache for resumable runs (nil disables resume).
func NewOrchestrator(provider classify.Provider, cache classify.Cache) *Orchestrator {
	return &Orchestrator{
		classifier: &classify.Classifier{Provider: provider, Cache: cache},
		workers:    defaultExtractWorkers,
		now:        time.Now,
	}
}

// SetSink injects a persistence target for finished runs (e.g. store.RunRepo).
func (o *Orchestrator) SetSink(sink ResultSink) {
	o.sink = sink
}

// SetClock overrides the time source. Derived fields like years-to-maturity
// depend on "now", so tests pin it for reproducible output.
func (o *Orchestrator) SetClock(now func() time.Time) {
	if now != nil {
		o.now = now
	}
}

// SetWorkers overrides the width of the parallel stages.
func (o *Orchestrator) SetWorkers(n int) {
	if n > 0 {
		o.workers = n
		o.classifier.Workers = n
	}
}

// Run executes the full pipeline over one document folder for one target
// entity. Recoverable per-document failures become report warnings; only an
// unreadable folder or a failed save aborts the run.
func (o *Orchestrator) Run(ctx context.Context, folder string, target string) (*models.RunResult, error) {
	fmt.Printf("Starting bond radar run for %q (folder: %s)...\n", target, folder)
	begin := time.Now()
	started := o.now().UTC()

	var warnings []models.Warning

	// 1. Scan the folder for candidate documents.
	docs, scanWarns, err := scan.Folder(folder)
	if err != nil {
		return nil, fmt.Errorf("folder scan failed: %w", err)
	}
	warnings = append(warnings, scanWarns...)
	fmt.Printf("Scan complete: %d candidate documents\n", len(docs))

	// 2. Classify every document (rules first, collaborator fallback).
	docs, classifyWarns := o.classifier.All(ctx, docs)
	warnings = append(warnings, classifyWarns...)

	// 3. Load, normalize and clean the instrument-bearing documents.
	batches, index, extractWarns := o.extractAll(docs)
	warnings = append(warnings, extractWarns...)
	fmt.Printf("Extraction complete: %d of %d documents yielded tables\n", len(batches), len(docs))

	// 4. Merge into the deduplicated instrument universe. Single-threaded:
	// recency ordering inside each identifier group must be deterministic.
	now := o.now().UTC()
	instruments, mergeWarns := universe.Build(batches, target, now)
	warnings = append(warnings, mergeWarns...)
	fmt.Printf("Universe built: %d instruments match %q\n", len(instruments), target)

	// 5. Recommendations and peers both read the frozen universe and the
	// extracted batches, nothing else, so they run concurrently.
	var (
		recs  []models.RecommendationRecord
		found []models.PeerRecord
		wg    sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		recs = recommend.Match(instruments, batches)
	}()
	go func() {
		defer wg.Done()
		found = peers.Detect(target, instruments, index, batches, now)
	}()
	wg.Wait()

	result := &models.RunResult{
		RunID:           uuid.New().String(),
		TargetEntity:    target,
		GeneratedAt:     now,
		Documents:       docs,
		Instruments:     instruments,
		Recommendations: recs,
		Peers:           found,
		Report: models.RunReport{
			DocumentsFound:       len(docs),
			DocumentsProcessed:   len(batches),
			InstrumentsExtracted: len(instruments),
			RecommendationsFound: countMatched(recs),
			PeersDetected:        len(found),
			Completeness:         meanConfidence(instruments),
			Warnings:             warnings,
			StartedAt:            started,
			DurationMS:           time.Since(begin).Milliseconds(),
		},
	}

	// 6. Optional storage.
	if o.sink != nil {
		if err := o.sink.Save(ctx, result); err != nil {
			return nil, fmt.Errorf("storage failed: %w", err)
		}
	}

	fmt.Printf("Run %s completed in %v: %d instruments, %d recommendations, %d peers, %d warnings\n",
		result.RunID, time.Since(begin), len(instruments), len(recs), len(found), len(warnings))
	return result, nil
}

// extractAll runs the per-document table stage across a bounded worker pool:
// load the table, detect entity names into the shared index, normalize the
// headers and clean rows into typed records. Documents whose type carries no
// instrument rows are skipped; a document that fails to load becomes a
// warning, never an abort. Results keep scan order regardless of which
// worker finished first.
func (o *Orchestrator) extractAll(docs []models.DocumentRecord) ([]clean.Batch, *classify.EntityIndex, []models.Warning) {
	index := classify.NewEntityIndex()

	type slot struct {
		batch *clean.Batch
		warns []models.Warning
	}
	slots := make([]slot, len(docs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.workers)

	for i := range docs {
		if !docs[i].Type.InstrumentBearing() {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			doc := docs[i]

			tbl, err := tabular.Load(doc.Path)
			if err != nil {
				slots[i].warns = []models.Warning{{
					Category: models.WarnFileLoad,
					Document: doc.Path,
					Message:  fmt.Sprintf("load failed: %v", err),
				}}
				return
			}

			names := classify.DetectEntities(tbl)
			for _, name := range names {
				index.Add(name, doc.ID, doc.Type)
			}
			docs[i].Entities = names

			batch, warns := clean.Extract(schema.Normalize(tbl), docs[i])
			slots[i] = slot{batch: &batch, warns: warns}
		}(i)
	}
	wg.Wait()

	var batches []clean.Batch
	var warnings []models.Warning
	for _, s := range slots {
		if s.batch != nil {
			batches = append(batches, *s.batch)
		}
		warnings = append(warnings, s.warns...)
	}
	return batches, index, warnings
}

// countMatched counts recommendations that resolved to a list, included or
// removed. Unclassified placeholders are not matches.
func countMatched(recs []models.RecommendationRecord) int {
	n := 0
	for _, r := range recs {
		if r.Status == models.StatusIncluded || r.Status == models.StatusRemoved {
			n++
		}
	}
	return n
}

// meanConfidence is the completeness metric: the average per-instrument
// confidence score, 0 when the universe is empty.
func meanConfidence(instruments []models.InstrumentRecord) float64 {
	if len(instruments) == 0 {
		return 0
	}
	var sum float64
	for _, inst := range instruments {
		sum += inst.Confidence
	}
	return sum / float64(len(instruments))
}

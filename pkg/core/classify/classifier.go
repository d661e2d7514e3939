// Package classify assigns every scanned document a type label. Stage 1 is an
// ordered filename pattern table; files it cannot place go to Stage 2, a
// bounded preview submitted to an external classification collaborator. A
// failing collaborator degrades to the "unclassified" label, never to a run
// failure.
package classify

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bond_radar/pkg/core/preview"
	"bond_radar/pkg/core/tabular"
	"bond_radar/pkg/core/utils"
	"bond_radar/pkg/models"
)

const (
	// classifierTimeout bounds one external classification call.
	classifierTimeout = 20 * time.Second
	// previewRows / previewChars bound how much of a document the
	// collaborator gets to see.
	previewRows  = 20
	previewChars = 1500
	// defaultWorkers is the parallel classification width.
	defaultWorkers = 8
)

// Provider is the external classification collaborator. Satisfied by any
// llm.Provider.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Cache persists resolved fallback classifications between runs so unchanged
// files never pay for a second collaborator call.
type Cache interface {
	Get(ctx context.Context, doc models.DocumentRecord) (models.DocType, float64, bool)
	Put(ctx context.Context, doc models.DocumentRecord)
}

// Classifier runs the two-stage strategy. A nil Provider disables Stage 2;
// a nil Cache disables resume.
type Classifier struct {
	Provider Provider
	Cache    Cache
	Workers  int
}

var classifySystemPrompt = fmt.Sprintf(`You are a document classifier for a fixed-income research pipeline.
Classify the document into exactly one of these labels:
%s
Use "unclassified" only when none of the labels fits.
Respond with ONLY a JSON object, no prose: {"label": "<label>", "confidence": <0.0-1.0>}`,
	labelVocabulary())

func labelVocabulary() string {
	var sb strings.Builder
	for _, t := range models.AllDocTypes {
		sb.WriteString("- ")
		sb.WriteString(string(t))
		sb.WriteString("\n")
	}
	return sb.String()
}

type labelResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// All classifies every document, fanning out across a bounded worker pool.
// Input order is preserved in the output.
func (c *Classifier) All(ctx context.Context, docs []models.DocumentRecord) ([]models.DocumentRecord, []models.Warning) {
	workers := c.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]models.DocumentRecord, len(docs))
	var mu sync.Mutex
	var warnings []models.Warning
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, doc := range docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc models.DocumentRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			classified, warns := c.Document(ctx, doc)
			results[i] = classified
			if len(warns) > 0 {
				mu.Lock()
				warnings = append(warnings, warns...)
				mu.Unlock()
			}
		}(i, doc)
	}
	wg.Wait()

	byMethod := map[models.ClassifyMethod]int{}
	for _, d := range results {
		byMethod[d.Method]++
	}
	log.Printf("[Classifier] %d documents: %d by rule, %d by fallback, %d cached",
		len(results), byMethod[models.MethodRule], byMethod[models.MethodFallback], byMethod[models.MethodCached])

	return results, warnings
}

// Document classifies one file. It never returns an error: unresolvable
// documents come back labeled "unclassified" with a warning attached.
func (c *Classifier) Document(ctx context.Context, doc models.DocumentRecord) (models.DocumentRecord, []models.Warning) {
	// 1. Filename rules.
	if t, conf, ok := MatchFilename(doc.Path); ok {
		doc.Type, doc.Confidence, doc.Method = t, conf, models.MethodRule
		return doc, nil
	}

	// 2. Scan cache from an earlier run.
	if c.Cache != nil {
		if t, conf, ok := c.Cache.Get(ctx, doc); ok {
			doc.Type, doc.Confidence, doc.Method = t, conf, models.MethodCached
			return doc, nil
		}
	}

	// 3. External collaborator over a bounded preview.
	var warnings []models.Warning
	unresolved := func(msg string) (models.DocumentRecord, []models.Warning) {
		doc.Type, doc.Confidence, doc.Method = models.DocUnclassified, 0, models.MethodFallback
		warnings = append(warnings, models.Warning{
			Category: models.WarnClassification,
			Document: doc.Path,
			Message:  msg,
		})
		return doc, warnings
	}

	if c.Provider == nil {
		return unresolved("no filename rule matched and no external classifier is configured")
	}

	text, err := buildPreview(doc)
	if err != nil {
		return unresolved(fmt.Sprintf("preview failed: %v", err))
	}

	cctx, cancel := context.WithTimeout(ctx, classifierTimeout)
	defer cancel()
	raw, err := c.Provider.Generate(cctx, classifySystemPrompt, buildUserPrompt(doc, text))
	if err != nil {
		return unresolved(fmt.Sprintf("external classifier failed: %v", err))
	}

	var resp labelResponse
	if err := utils.SmartParse(raw, &resp); err != nil {
		return unresolved(fmt.Sprintf("unparseable classifier response: %v", err))
	}

	label, ok := validLabel(resp.Label)
	if !ok {
		return unresolved(fmt.Sprintf("classifier answered outside the vocabulary: %q", resp.Label))
	}
	if label == models.DocUnclassified {
		return unresolved("external classifier could not place the document")
	}

	doc.Type = label
	doc.Confidence = clamp01(resp.Confidence)
	doc.Method = models.MethodFallback
	if c.Cache != nil {
		c.Cache.Put(ctx, doc)
	}
	return doc, warnings
}

// buildPreview extracts the bounded preview Stage 2 sends to the
// collaborator: first rows for tabular formats, leading text for documents.
func buildPreview(doc models.DocumentRecord) (string, error) {
	switch doc.Format {
	case "csv", "xlsx", "xls":
		tbl, err := tabular.Load(doc.Path)
		if err != nil {
			return "", err
		}
		return tbl.Preview(previewRows), nil
	case "html", "htm":
		// Saved pages may or may not be tabular; prefer the table when one
		// parses.
		if tbl, err := tabular.Load(doc.Path); err == nil {
			return tbl.Preview(previewRows), nil
		}
		return preview.Extract(doc.Path, previewChars)
	default:
		return preview.Extract(doc.Path, previewChars)
	}
}

func buildUserPrompt(doc models.DocumentRecord, text string) string {
	return fmt.Sprintf("Filename: %s\nFormat: %s\n\nContent preview:\n%s",
		filepath.Base(doc.Path), doc.Format, text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"

	"bond_radar/pkg/core/classify"
	"bond_radar/pkg/core/llm"
	"bond_radar/pkg/core/pipeline"
	"bond_radar/pkg/core/scan"
	"bond_radar/pkg/core/tabular"
	"bond_radar/pkg/models"
)

// classify_audit classifies every document in a folder and prints the verdicts
// without running extraction. Useful for tuning the filename rules against a
// new data provider's exports before a full run.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not found, using environment variables")
	}

	var (
		dir        = flag.String("dir", "", "folder to audit (required)")
		configPath = flag.String("config", "config/pipeline.yaml", "pipeline configuration file")
		noLLM      = flag.Bool("no-llm", false, "filename rules only")
	)
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		log.Fatal("Error: -dir is required.")
	}

	cfg := pipeline.LoadConfig(*configPath)

	var provider classify.Provider
	if !*noLLM {
		p, err := llm.New(cfg.Provider, cfg.Model)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		provider = p
	}

	docs, warnings, err := scan.Folder(*dir)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	classifier := &classify.Classifier{Provider: provider}
	docs, classifyWarns := classifier.All(context.Background(), docs)
	warnings = append(warnings, classifyWarns...)

	fmt.Printf("\n%-40s | %-22s | %-8s | %5s\n", "File", "Type", "Method", "Conf")
	fmt.Println("--------------------------------------------------------------------------------")
	byType := map[models.DocType]int{}
	for _, doc := range docs {
		fmt.Printf("%-40s | %-22s | %-8s | %5.2f\n",
			truncate(filepath.Base(doc.Path), 40), doc.Type, doc.Method, doc.Confidence)
		byType[doc.Type]++
	}

	fmt.Printf("\n%d documents", len(docs))
	for _, t := range models.AllDocTypes {
		if byType[t] > 0 {
			fmt.Printf(" | %s: %d", t, byType[t])
		}
	}
	if byType[models.DocUnclassified] > 0 {
		fmt.Printf(" | unclassified: %d", byType[models.DocUnclassified])
	}
	fmt.Println()

	index := classify.NewEntityIndex()
	for _, doc := range docs {
		if !doc.Type.InstrumentBearing() {
			continue
		}
		tbl, err := tabular.Load(doc.Path)
		if err != nil {
			continue // extraction warnings are the pipeline's job, not the audit's
		}
		for _, name := range classify.DetectEntities(tbl) {
			index.Add(name, doc.Path, doc.Type)
		}
	}
	if entities := index.Entities(); len(entities) > 0 {
		fmt.Printf("\nEntities (%d):\n", len(entities))
		for _, name := range entities {
			fmt.Printf("  %-40s on %d document(s)\n", truncate(name, 40), len(index.DocsFor(name)))
		}
	}

	if len(warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  - [%s] %s: %s\n", w.Category, filepath.Base(w.Document), w.Message)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

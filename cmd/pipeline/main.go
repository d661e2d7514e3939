package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bond_radar/pkg/core/classify"
	"bond_radar/pkg/core/llm"
	"bond_radar/pkg/core/pipeline"
	"bond_radar/pkg/core/store"
	"bond_radar/pkg/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		dir        = flag.String("dir", "", "folder of downloaded documents (required)")
		entity     = flag.String("entity", "", "target entity name (required)")
		out        = flag.String("out", "", "write the full result bundle as JSON to this file")
		configPath = flag.String("config", "config/pipeline.yaml", "pipeline configuration file")
		noLLM      = flag.Bool("no-llm", false, "classify by filename rules only, skip the external collaborator")
	)
	flag.Parse()

	if *dir == "" || *entity == "" {
		flag.Usage()
		log.Fatal("Error: -dir and -entity are required.")
	}

	cfg := pipeline.LoadConfig(*configPath)
	ctx := context.Background()

	fmt.Println("🚀 Bond Radar Pipeline Starting...")

	var provider classify.Provider
	if !*noLLM {
		p, err := llm.New(cfg.Provider, cfg.Model)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		provider = p
	}

	// Database is optional: without DATABASE_URL the run still works, the
	// classification cache just falls back to files and nothing is persisted.
	dbReady := false
	if store.Enabled() {
		if err := store.InitDB(ctx); err != nil {
			log.Printf("Warning: database unavailable, using file cache only: %v", err)
		} else {
			defer store.Close()
			dbReady = true
		}
	}

	var cache classify.Cache
	if dbReady {
		cache = store.NewClassificationCache(store.GetPool(), cfg.CacheDir)
	} else {
		cache = store.NewClassificationCache(nil, cfg.CacheDir)
	}

	orch := pipeline.NewOrchestrator(provider, cache)
	orch.SetWorkers(cfg.Workers)
	if dbReady {
		orch.SetSink(store.NewRunRepo())
	}

	result, err := orch.Run(ctx, *dir, *entity)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	if dbReady {
		repo := store.NewInstrumentRepo(store.GetPool())
		if err := repo.SaveAll(ctx, result.TargetEntity, result.RunID, result.Instruments); err != nil {
			log.Printf("Warning: instrument persistence failed: %v", err)
		}
	}

	printReport(result)

	if *out != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Error: marshal result: %v", err)
		}
		if err := os.WriteFile(*out, data, 0644); err != nil {
			log.Fatalf("Error: write %s: %v", *out, err)
		}
		fmt.Printf("\nResult bundle written to %s\n", *out)
	}
}

func printReport(result *models.RunResult) {
	fmt.Println("\n################################################################################")
	fmt.Println("                        BOND RADAR - RUN REPORT")
	fmt.Printf("                        Target: %s\n", result.TargetEntity)
	fmt.Println("################################################################################")

	rep := result.Report

	fmt.Println("\n[1] DOCUMENTS")
	fmt.Printf("Found: %d | Processed: %d\n", rep.DocumentsFound, rep.DocumentsProcessed)

	fmt.Printf("\n[2] INSTRUMENTS (%d)\n", len(result.Instruments))
	fmt.Printf("%-14s | %6s | %-10s | %7s | %-10s\n", "ISIN", "Cpn", "Maturity", "Price", "Bucket")
	fmt.Println(strings.Repeat("-", 62))
	for _, inst := range result.Instruments {
		fmt.Printf("%-14s | %6s | %-10s | %7s | %-10s\n",
			inst.ISIN, fmtFloat(inst.Coupon), fmtDate(inst.Maturity), fmtFloat(inst.Price), inst.MaturityBucket)
	}

	fmt.Printf("\n[3] RECOMMENDATIONS (%d matched)\n", rep.RecommendationsFound)
	for _, rec := range result.Recommendations {
		if rec.Status == models.StatusUnclassified {
			continue
		}
		if rec.Rationale != "" {
			fmt.Printf("%-14s | %-8s | %s\n", rec.ISIN, rec.Status, rec.Rationale)
		} else {
			fmt.Printf("%-14s | %-8s\n", rec.ISIN, rec.Status)
		}
	}

	fmt.Printf("\n[4] PEERS (%d)\n", len(result.Peers))
	for _, peer := range result.Peers {
		fmt.Printf("%-30s | %.2f | %s\n", peer.Name, peer.Score, strings.Join(peer.Basis, ", "))
	}

	fmt.Println("\n[5] QUALITY")
	fmt.Printf("Completeness: %.2f\n", rep.Completeness)
	fmt.Printf("Warnings: %d\n", len(rep.Warnings))
	for _, w := range rep.Warnings {
		fmt.Printf("  - [%s] %s\n", w.Category, w.Message)
	}
	fmt.Printf("\nDuration: %d ms\n", rep.DurationMS)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

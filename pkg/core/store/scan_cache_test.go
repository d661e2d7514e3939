package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bond_radar/pkg/models"
)

func cacheDoc(path string, size int64, mod time.Time) models.DocumentRecord {
	return models.DocumentRecord{
		ID:         "doc-1",
		Path:       path,
		SizeBytes:  size,
		ModifiedAt: mod,
		Type:       models.DocMarketNote,
		Confidence: 0.72,
		Method:     models.MethodFallback,
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache := NewClassificationCache(nil, dir)
	ctx := context.Background()

	mod := time.Date(2025, 6, 1, 10, 30, 0, 123456789, time.UTC)
	doc := cacheDoc("/docs/market_wrap.pdf", 2048, mod)

	if _, _, ok := cache.Get(ctx, doc); ok {
		t.Fatalf("empty cache must miss")
	}

	cache.Put(ctx, doc)

	docType, confidence, ok := cache.Get(ctx, doc)
	if !ok {
		t.Fatalf("expected a hit after Put")
	}
	if docType != models.DocMarketNote || confidence != 0.72 {
		t.Fatalf("hit = (%s, %v)", docType, confidence)
	}
}

func TestFileCacheInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	cache := NewClassificationCache(nil, dir)
	ctx := context.Background()

	mod := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	doc := cacheDoc("/docs/market_wrap.pdf", 2048, mod)
	cache.Put(ctx, doc)

	grown := doc
	grown.SizeBytes = 4096
	if _, _, ok := cache.Get(ctx, grown); ok {
		t.Fatalf("size change must invalidate the entry")
	}

	touched := doc
	touched.ModifiedAt = mod.Add(time.Second)
	if _, _, ok := cache.Get(ctx, touched); ok {
		t.Fatalf("modification-time change must invalidate the entry")
	}

	if _, _, ok := cache.Get(ctx, doc); !ok {
		t.Fatalf("unchanged document must still hit")
	}
}

func TestFileCacheSurvivesCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache := NewClassificationCache(nil, dir)
	ctx := context.Background()

	doc := cacheDoc("/docs/market_wrap.pdf", 2048, time.Now())
	cache.Put(ctx, doc)

	// Clobber the entry on disk; the next Get must miss, not fail.
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one cache file, got %v (%v)", entries, err)
	}
	if err := os.WriteFile(filepath.Join(dir, entries[0].Name()), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, ok := cache.Get(ctx, doc); ok {
		t.Fatalf("corrupt entry must read as a miss")
	}
}

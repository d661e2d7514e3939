package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bond_radar/pkg/core/classify"
	"bond_radar/pkg/models"
)

// ClassificationCache lets an aborted or repeated run skip external
// classifier calls for files that have not changed. Hybrid storage: DB when a
// pool is supplied, otherwise one JSON file per document under fileDir.
//
// A cache entry is valid only while the file's size and modification time
// both still match; any edit to the file invalidates it.
type ClassificationCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

var _ classify.Cache = (*ClassificationCache)(nil)

// NewClassificationCache creates a cache. With a nil pool and empty dir it
// defaults to a local .cache directory.
func NewClassificationCache(pool *pgxpool.Pool, dir string) *ClassificationCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "bond_radar", "classifications")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[Cache] cannot create %s: %v", dir, err)
		}
	}
	return &ClassificationCache{pool: pool, fileDir: dir}
}

// cacheEntry is the file-backed form of one resolved classification.
type cacheEntry struct {
	Path           string    `json:"path"`
	SizeBytes      int64     `json:"size_bytes"`
	ModifiedUnixNs int64     `json:"modified_unix_ns"`
	DocType        string    `json:"doc_type"`
	Confidence     float64   `json:"confidence"`
	CachedAt       time.Time `json:"cached_at"`
}

// Get looks up a previously resolved classification for this exact file
// state. A miss is (unknown, 0, false); lookups never fail the caller.
func (c *ClassificationCache) Get(ctx context.Context, doc models.DocumentRecord) (models.DocType, float64, bool) {
	if c.pool != nil {
		query := `
			SELECT doc_type, confidence
			FROM classification_cache
			WHERE path = $1 AND size_bytes = $2 AND modified_unix_ns = $3
			LIMIT 1
		`
		var docType string
		var confidence float64
		err := c.pool.QueryRow(ctx, query, doc.Path, doc.SizeBytes, doc.ModifiedAt.UnixNano()).Scan(&docType, &confidence)
		if err == nil && docType != "" {
			return models.DocType(docType), confidence, true
		}
		return models.DocUnknown, 0, false
	}

	if c.fileDir != "" {
		entry, err := c.loadEntry(c.entryPath(doc.Path))
		if err != nil || entry == nil {
			return models.DocUnknown, 0, false
		}
		if entry.SizeBytes != doc.SizeBytes || entry.ModifiedUnixNs != doc.ModifiedAt.UnixNano() {
			return models.DocUnknown, 0, false // file changed since caching
		}
		if entry.DocType == "" {
			return models.DocUnknown, 0, false
		}
		return models.DocType(entry.DocType), entry.Confidence, true
	}

	return models.DocUnknown, 0, false
}

// Put records a resolved classification. Failures are logged and swallowed:
// a broken cache must never break a run.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS classification_cache (
//	  path             TEXT PRIMARY KEY,
//	  size_bytes       BIGINT,
//	  modified_unix_ns BIGINT,
//	  doc_type         TEXT,
//	  confidence       DOUBLE PRECISION,
//	  created_at       TIMESTAMPTZ DEFAULT now()
//	);
func (c *ClassificationCache) Put(ctx context.Context, doc models.DocumentRecord) {
	if c.pool != nil {
		query := `
			INSERT INTO classification_cache (path, size_bytes, modified_unix_ns, doc_type, confidence)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (path)
			DO UPDATE SET
				size_bytes = EXCLUDED.size_bytes,
				modified_unix_ns = EXCLUDED.modified_unix_ns,
				doc_type = EXCLUDED.doc_type,
				confidence = EXCLUDED.confidence,
				created_at = now()
		`
		_, err := c.pool.Exec(ctx, query, doc.Path, doc.SizeBytes, doc.ModifiedAt.UnixNano(), string(doc.Type), doc.Confidence)
		if err != nil {
			log.Printf("[Cache] db put failed for %s: %v", doc.Path, err)
		}
		return
	}

	if c.fileDir == "" {
		return
	}
	entry := cacheEntry{
		Path:           doc.Path,
		SizeBytes:      doc.SizeBytes,
		ModifiedUnixNs: doc.ModifiedAt.UnixNano(),
		DocType:        string(doc.Type),
		Confidence:     doc.Confidence,
		CachedAt:       time.Now().UTC(),
	}
	data, _ := json.MarshalIndent(entry, "", "  ")
	if err := os.WriteFile(c.entryPath(doc.Path), data, 0644); err != nil {
		log.Printf("[Cache] file put failed for %s: %v", doc.Path, err)
	}
}

// entryPath hashes the document path so arbitrary folder layouts map to flat
// cache filenames.
func (c *ClassificationCache) entryPath(docPath string) string {
	sum := sha256.Sum256([]byte(docPath))
	return filepath.Join(c.fileDir, hex.EncodeToString(sum[:8])+".json")
}

func (c *ClassificationCache) loadEntry(path string) (*cacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // not cached
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", path, err)
	}
	return &entry, nil
}

package classify

import (
	"sort"
	"strings"
	"sync"

	"bond_radar/pkg/models"
)

// EntityIndex is the global, concurrency-safe record of which entities appear
// in which documents. Detection runs inside the parallel per-document stage,
// so all access is mutex-guarded. Keys are lowercased names; the display form
// of the first sighting is kept for output.
type EntityIndex struct {
	mu      sync.RWMutex
	entries map[string]*entityEntry
}

type entityEntry struct {
	display string
	docs    map[string]models.DocType // document ID -> classified type
}

func NewEntityIndex() *EntityIndex {
	return &EntityIndex{entries: make(map[string]*entityEntry)}
}

// Add records one sighting of an entity in a document.
func (ix *EntityIndex) Add(name string, docID string, docType models.DocType) {
	name = strings.TrimSpace(name)
	if name == "" || docID == "" {
		return
	}
	key := strings.ToLower(name)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	e, ok := ix.entries[key]
	if !ok {
		e = &entityEntry{display: name, docs: make(map[string]models.DocType)}
		ix.entries[key] = e
	}
	e.docs[docID] = docType
}

// Entities returns every known display name, sorted.
func (ix *EntityIndex) Entities() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.entries))
	for _, e := range ix.entries {
		out = append(out, e.display)
	}
	sort.Strings(out)
	return out
}

// EntitiesOn returns the display names seen on documents of one type, sorted.
func (ix *EntityIndex) EntitiesOn(t models.DocType) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []string
	for _, e := range ix.entries {
		for _, dt := range e.docs {
			if dt == t {
				out = append(out, e.display)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// DocsFor returns a copy of the document set an entity was seen in.
func (ix *EntityIndex) DocsFor(name string) map[string]models.DocType {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	out := make(map[string]models.DocType, len(e.docs))
	for id, t := range e.docs {
		out[id] = t
	}
	return out
}

// CoAppearances counts documents of the given type in which both entities
// were seen.
func (ix *EntityIndex) CoAppearances(a string, b string, t models.DocType) int {
	docsA := ix.DocsFor(a)
	docsB := ix.DocsFor(b)
	n := 0
	for id, ta := range docsA {
		if ta != t {
			continue
		}
		if tb, ok := docsB[id]; ok && tb == t {
			n++
		}
	}
	return n
}

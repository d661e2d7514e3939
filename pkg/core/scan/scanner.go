// Package scan walks a downloads folder and inventories the files the
// pipeline can process. It reads no file content: classification decides later
// what each file is, the scanner only records that it exists.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"bond_radar/pkg/models"
)

// ErrFolderUnreadable is the pipeline's only fatal condition: the root folder
// itself cannot be listed, so there is nothing to process.
var ErrFolderUnreadable = errors.New("folder unreadable")

// supportedExtensions is the fixed set of formats the downstream readers
// understand. Lowercase, with dot.
var supportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".md":   true,
}

// Supported reports whether a filename carries a processable extension.
func Supported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Folder recursively inventories root. Each hit becomes a DocumentRecord
// skeleton (type unknown until classified) annotated with size and modified
// time. Individual unreadable files are skipped with a warning; only an
// unreadable root is fatal.
func Folder(root string) ([]models.DocumentRecord, []models.Warning, error) {
	if _, err := os.ReadDir(root); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFolderUnreadable, err)
	}

	var docs []models.DocumentRecord
	var warnings []models.Warning

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, models.Warning{
				Category: models.WarnFileLoad,
				Document: path,
				Message:  fmt.Sprintf("skipped during scan: %v", err),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// Dot-directories in a downloads folder hold browser and OS
			// metadata, never documents.
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !Supported(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			warnings = append(warnings, models.Warning{
				Category: models.WarnFileLoad,
				Document: path,
				Message:  fmt.Sprintf("stat failed: %v", err),
			})
			return nil
		}

		docs = append(docs, models.DocumentRecord{
			ID:         uuid.New().String(),
			Path:       path,
			Format:     strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
			Type:       models.DocUnknown,
			Method:     models.MethodNone,
		})
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("%w: %v", ErrFolderUnreadable, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, warnings, nil
}

package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/clippings/internal/identifier"
)

// Index maps page identifiers to the chosen source image path
type Index map[identifier.PageID]string

// Stats summarizes a directory walk
type Stats struct {
	FilesSeen int
	Indexed   int
	Replaced  int
	Skipped   int
}

// Build walks every directory in order and indexes the image files whose
// names carry a page identifier. When several files share an identifier the
// archival (TIFF) candidate wins; among equally preferred candidates the
// first one seen is kept.
func Build(ctx context.Context, dirs []string, logger *slog.Logger) (Index, Stats, error) {
	idx := make(Index)
	var stats Stats

	for _, dir := range dirs {
		logger.Info("Indexing images", "dir", dir)

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("error accessing path %s: %w", path, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}

			stats.FilesSeen++
			id, ok := identifier.DerivePageID(d.Name())
			if !ok {
				stats.Skipped++
				logger.Debug("No page identifier in filename", "path", path)
				return nil
			}

			current, exists := idx[id]
			switch {
			case !exists:
				idx[id] = path
			case rank(path) > rank(current):
				logger.Debug("Preferring image", "id", id, "path", path, "over", current)
				idx[id] = path
				stats.Replaced++
			}
			return nil
		})
		if err != nil {
			return nil, stats, fmt.Errorf("failed to index %s: %w", dir, err)
		}
	}

	stats.Indexed = len(idx)
	logger.Info("Image index built", "files", stats.FilesSeen, "indexed", stats.Indexed, "replaced", stats.Replaced, "skipped", stats.Skipped)

	return idx, stats, nil
}

// Lookup returns the indexed path for a page.
func (idx Index) Lookup(id identifier.PageID) (string, bool) {
	path, ok := idx[id]
	return path, ok
}

// rank orders candidates for one identifier. Primary scans beat "b"
// variants, which are never published; TIFF beats JPEG and DJVU.
func rank(path string) int {
	r := 0
	if page, ok := identifier.ParsePage(path); !ok || !page.Alternate() {
		r += 2
	}
	if IsArchival(path) {
		r++
	}
	return r
}

// IsArchival reports whether path has a TIFF extension.
func IsArchival(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return true
	}
	return false
}

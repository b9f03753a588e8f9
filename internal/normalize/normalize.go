package normalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/clippings/internal/authors"
	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/wikidata"
)

// Resolver finds the canonical entity for a person's name
type Resolver interface {
	Suggest(ctx context.Context, name string) (*wikidata.Entity, error)
}

// Stats counts what a normalization run did
type Stats struct {
	Rows       int
	Dropped    int
	Names      int
	Cached     int
	Resolved   int
	Unresolved int
	Failed     int
}

// Normalizer rewrites subject names to their Wikidata labels and records
// every name it has looked up in the authors mapping.
type Normalizer struct {
	Mapping  authors.Mapping
	Resolver Resolver
	// Save persists the mapping; it runs after every new lookup so an
	// interrupted run loses nothing.
	Save   func(authors.Mapping) error
	Logger *slog.Logger
}

// Run copies rows from in to out with the subjects column normalized. Rows
// that name nobody are dropped.
func (n *Normalizer) Run(ctx context.Context, in master.Reader, out master.Writer) (Stats, error) {
	var stats Stats

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}
		stats.Rows++

		names := row.Subjects()
		if len(names) == 0 {
			stats.Dropped++
			n.Logger.Debug("Dropping row without names", "filename", row.Filename())
			continue
		}

		normalized := make([]string, 0, len(names))
		for _, name := range names {
			normalized = append(normalized, n.normalizeName(ctx, name, &stats))
		}
		row = row.Clone()
		row.Set(master.ColSubjects, strings.Join(normalized, master.SubjectSeparator))

		if err := out.Write(row); err != nil {
			return stats, fmt.Errorf("failed to write row %d: %w", stats.Rows, err)
		}
	}

	n.Logger.Info("Normalization finished",
		"rows", stats.Rows,
		"dropped", stats.Dropped,
		"names", stats.Names,
		"cached", stats.Cached,
		"resolved", stats.Resolved,
		"unresolved", stats.Unresolved,
		"failed", stats.Failed)

	return stats, nil
}

func (n *Normalizer) normalizeName(ctx context.Context, name string, stats *Stats) string {
	stats.Names++

	if _, ok := n.Mapping[name]; ok {
		stats.Cached++
		return name
	}

	query := FlipName(name)
	if _, ok := n.Mapping[query]; ok {
		stats.Cached++
		return query
	}

	entity, err := n.Resolver.Suggest(ctx, query)
	if err != nil {
		// not recorded, so the next run tries again
		stats.Failed++
		n.Logger.Error("Unable to look up author", "name", query, "error", err)
		return query
	}

	result := query
	if entity != nil {
		stats.Resolved++
		id := entity.ID
		result = entity.Label
		n.Mapping[result] = &id
		n.Logger.Info("Resolved author", "name", name, "label", result, "wikidata", id)
	} else {
		stats.Unresolved++
		n.Mapping[result] = nil
		n.Logger.Warn("No Wikidata match for author", "name", query)
	}

	if n.Save != nil {
		if err := n.Save(n.Mapping); err != nil {
			n.Logger.Error("Unable to save authors mapping", "error", err)
		}
	}

	return result
}

// FlipName turns "Last, First" into "First Last".
func FlipName(name string) string {
	parts := strings.SplitN(name, ",", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(name)
	}
	last, first := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

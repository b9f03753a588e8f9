package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/clippings/internal/convert"
	"github.com/lehigh-university-libraries/clippings/internal/identifier"
	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/site"
)

// Stage is how far a row got through the build
type Stage int

const (
	StageStart Stage = iota
	StageIdentified
	StageAuthorsEnsured
	StageClippingResolved
	StageImageFound
	StageImageMaterialized
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageIdentified:
		return "identified"
	case StageAuthorsEnsured:
		return "authors_ensured"
	case StageClippingResolved:
		return "clipping_resolved"
	case StageImageFound:
		return "image_found"
	case StageImageMaterialized:
		return "image_materialized"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Summary tallies a build
type Summary struct {
	Rows int
	// Done rows reached the end, including those whose image was already in place
	Done int
	// Skipped counts rows by the stage they stopped after
	Skipped map[Stage]int

	AuthorsCreated   int
	AuthorErrors     int
	AuthorsMissing   int
	ClippingsCreated int
	ClippingsReused  int
	ImagesWritten    int
	ImagesExisting   int
	ImagesMissing    int
	AlternatePages   int
	ImageErrors      int
}

// TotalSkipped returns the number of rows that did not reach the end.
func (s Summary) TotalSkipped() int {
	n := 0
	for _, count := range s.Skipped {
		n += count
	}
	return n
}

// Run processes every row from rows in order. Row level problems are
// logged and counted; only a failing reader or a cancelled context stops
// the run early.
func (b *Builder) Run(ctx context.Context, rows master.Reader) (Summary, error) {
	summary := Summary{Skipped: make(map[Stage]int)}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		row, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("failed to read master row %d: %w", summary.Rows+1, err)
		}
		summary.Rows++

		stage := b.processRow(ctx, row, &summary)
		if stage == StageDone {
			summary.Done++
		} else {
			summary.Skipped[stage]++
		}
	}

	b.logger.Info("Build finished",
		"rows", summary.Rows,
		"done", summary.Done,
		"skipped", summary.TotalSkipped(),
		"clippings_created", summary.ClippingsCreated,
		"authors_created", summary.AuthorsCreated,
		"images_written", summary.ImagesWritten,
		"images_missing", summary.ImagesMissing)

	return summary, nil
}

// processRow returns the last stage the row reached.
func (b *Builder) processRow(ctx context.Context, row master.Row, summary *Summary) Stage {
	filename := row.Filename()

	pageID, ok := identifier.DerivePageID(filename)
	if !ok {
		b.logger.Warn("Skipping row without a page identifier", "row", summary.Rows, "filename", filename)
		return StageStart
	}

	b.ensureAuthors(row, summary)

	clipping, created, err := b.allocator.Resolve(row)
	if err != nil {
		b.logger.Error("Unable to create clipping", "page", pageID, "error", err)
		return StageAuthorsEnsured
	}
	if created {
		summary.ClippingsCreated++
		b.logger.Info("Created clipping", "clipping", clipping.Name(), "id", clipping.ID)
		if err := b.manifest.Add(clipping, row); err != nil {
			b.logger.Error("Unable to write manifest row", "clipping", clipping.Name(), "error", err)
		}
	} else {
		summary.ClippingsReused++
	}

	src, ok := b.index.Lookup(pageID)
	if !ok {
		summary.ImagesMissing++
		b.logger.Error("Unable to find image", "page", pageID, "filename", filename)
		return StageClippingResolved
	}

	dest, err := b.materialize.Materialize(ctx, src, clipping.Dir)
	switch {
	case err == nil:
		summary.ImagesWritten++
	case errors.Is(err, convert.ErrExists):
		summary.ImagesExisting++
		b.logger.Debug("Image already in place", "page", pageID, "dest", dest)
	case errors.Is(err, convert.ErrAlternatePage):
		summary.AlternatePages++
		b.logger.Info("Skipping alternate scan", "page", pageID, "src", src)
		return StageImageFound
	default:
		summary.ImageErrors++
		b.logger.Error("Unable to materialize image", "page", pageID, "src", src, "error", err)
		return StageImageFound
	}

	return StageDone
}

func (b *Builder) ensureAuthors(row master.Row, summary *Summary) {
	names := row.Subjects()
	if len(names) == 0 {
		summary.AuthorsMissing++
		b.logger.Error("Row names no author", "row", summary.Rows, "filename", row.Filename())
		return
	}

	for _, name := range names {
		author, created, err := site.EnsureAuthor(b.root, name, b.mapping)
		switch {
		case errors.Is(err, site.ErrMissingName):
			summary.AuthorsMissing++
			b.logger.Error("Missing author name", "row", summary.Rows, "filename", row.Filename(), "name", name)
		case err != nil:
			summary.AuthorErrors++
			b.logger.Error("Unable to create author", "row", summary.Rows, "name", name, "error", err)
		case created:
			summary.AuthorsCreated++
			if _, ok := b.mapping.Lookup(strings.TrimSpace(name)); !ok {
				b.logger.Warn("Author has no Wikidata id", "name", name, "slug", author.Slug)
			}
			b.logger.Info("Created author", "name", name, "slug", author.Slug)
		}
	}
}

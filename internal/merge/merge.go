package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/clippings/internal/master"
)

// Source is one exported spreadsheet and the layout it follows
type Source struct {
	Layout Layout
	Path   string
}

// Stats counts rows across every merged source
type Stats struct {
	Sources int
	Read    int
	Written int
	// Skipped rows had no filename
	Skipped int
	// CarriedSubjects rows inherited the subjects of the row above
	CarriedSubjects int
}

// Merge writes every source, in order, into one master table.
func Merge(ctx context.Context, sources []Source, w master.Writer, logger *slog.Logger) (Stats, error) {
	var stats Stats

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		f, err := os.Open(src.Path)
		if err != nil {
			return stats, fmt.Errorf("failed to open %s spreadsheet: %w", src.Layout.Collection, err)
		}

		before := stats.Written
		err = mergeSource(master.NewCSVReader(f), src.Layout, w, &stats)
		f.Close()
		if err != nil {
			return stats, fmt.Errorf("failed to merge %s: %w", src.Path, err)
		}

		stats.Sources++
		logger.Info("Merged spreadsheet", "collection", src.Layout.Collection, "path", src.Path, "rows", stats.Written-before)
	}

	return stats, nil
}

func mergeSource(r master.Reader, layout Layout, w master.Writer, stats *Stats) error {
	// the first row of every sheet is its header
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	lastSubjects := ""
	for {
		src, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.Read++

		row := layout.Apply(src)
		if row.Filename() == "" {
			stats.Skipped++
			continue
		}

		switch row.Field(master.ColSubjects) {
		case "", "-", "--":
			row[master.ColSubjects] = lastSubjects
			stats.CarriedSubjects++
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		stats.Written++
		lastSubjects = row[master.ColSubjects]
	}
}

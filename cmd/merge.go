package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/merge"
	"github.com/lehigh-university-libraries/clippings/internal/runlog"
)

func newMergeCmd() *cobra.Command {
	var sources []string
	var outputPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the collection spreadsheets into one master table",
		Long: `Merge reads the CSV exports of the collection spreadsheets and writes one master
table with the canonical columns.

Each source is given as <layout>=<path>. The layout names which spreadsheet the
export came from, since every collection keeps its columns in different places:
` + "  " + strings.Join(merge.LayoutNames(), ", ") + `

Rows without a filename are dropped. Rows with no subjects (or "-") take the
subjects of the row above.`,
		Example: `  # Merge all five collections to master.csv
  clippings merge --output master.csv \
    --source britishj=sheets/british-jennie.csv \
    --source british=sheets/british-nick.csv \
    --source irish-drama=sheets/irish-drama.csv \
    --source conrad=sheets/conrad.csv \
    --source russian=sheets/rai.csv

  # Write Parquet instead
  clippings merge --source conrad=sheets/conrad.csv --output master.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSources(sources)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: runlog.Level(verbose)}))

			out, err := master.Create(outputPath)
			if err != nil {
				return err
			}

			stats, err := merge.Merge(cmd.Context(), parsed, out, logger)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\nMerge complete!\n")
			fmt.Fprintf(os.Stderr, "  Spreadsheets: %d\n", stats.Sources)
			fmt.Fprintf(os.Stderr, "  Rows written: %d\n", stats.Written)
			fmt.Fprintf(os.Stderr, "  Rows without filename: %d\n", stats.Skipped)
			fmt.Fprintf(os.Stderr, "  Subjects carried down: %d\n", stats.CarriedSubjects)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sources, "source", nil, "Spreadsheet export as <layout>=<path> (repeatable)")
	cmd.Flags().StringVar(&outputPath, "output", "-", "Master table to write (.csv or .parquet, - for stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func parseSources(values []string) ([]merge.Source, error) {
	sources := make([]merge.Source, 0, len(values))
	for _, value := range values {
		name, path, ok := strings.Cut(value, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("invalid --source %q, expected <layout>=<path>", value)
		}
		layout, err := merge.LookupLayout(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, merge.Source{Layout: layout, Path: path})
	}
	return sources, nil
}

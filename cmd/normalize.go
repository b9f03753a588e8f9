package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/clippings/internal/authors"
	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/normalize"
	"github.com/lehigh-university-libraries/clippings/internal/runlog"
	"github.com/lehigh-university-libraries/clippings/internal/wikidata"
)

func newNormalizeCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var authorsPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Match author names in the master table against Wikidata",
		Long: `Normalize looks up every name in the subjects column on Wikidata and replaces it
with the matching entity's label. Names written "Last, First" are searched as
"First Last".

Every name looked up is recorded in the authors file, with its Wikidata id or null
when nothing matched. The file is saved after each lookup and names already in it
are not looked up again, so an interrupted run can simply be restarted.

Rows that name nobody are left out of the output.`,
		Example: `  # Normalize the merged table
  clippings normalize --input master.csv --output normalized.csv --authors authors.json

  # Use a local Wikidata mirror
  WIKIDATA_API_URL=http://localhost:8181/w/api.php clippings normalize --input master.csv --output normalized.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: runlog.Level(verbose)}))

			mapping, err := authors.LoadOrEmpty(authorsPath)
			if err != nil {
				return err
			}
			logger.Info("Loaded authors mapping", "path", authorsPath, "count", len(mapping))

			in, err := master.Open(inputPath)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := master.Create(outputPath)
			if err != nil {
				return err
			}

			n := &normalize.Normalizer{
				Mapping:  mapping,
				Resolver: wikidata.NewClient(cfg.WikidataURL),
				Save: func(m authors.Mapping) error {
					return m.Save(authorsPath)
				},
				Logger: logger,
			}

			stats, err := n.Run(cmd.Context(), in, out)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\nNormalization complete!\n")
			fmt.Fprintf(os.Stderr, "  Rows: %d (dropped without names: %d)\n", stats.Rows, stats.Dropped)
			fmt.Fprintf(os.Stderr, "  Names: %d (already known: %d)\n", stats.Names, stats.Cached)
			fmt.Fprintf(os.Stderr, "  Resolved on Wikidata: %d\n", stats.Resolved)
			fmt.Fprintf(os.Stderr, "  No match: %d\n", stats.Unresolved)
			fmt.Fprintf(os.Stderr, "  Lookup errors: %d\n", stats.Failed)
			fmt.Fprintf(os.Stderr, "  Authors file: %s\n", authorsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "master.csv", "Master table to read (.csv or .parquet)")
	cmd.Flags().StringVar(&outputPath, "output", "-", "Normalized table to write (.csv or .parquet, - for stdout)")
	cmd.Flags().StringVar(&authorsPath, "authors", "authors.json", "Authors mapping to read and update")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	return cmd
}

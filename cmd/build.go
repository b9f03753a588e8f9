package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/pipeline"
	"github.com/lehigh-university-libraries/clippings/internal/runlog"
)

func newBuildCmd() *cobra.Command {
	var masterPath string
	var authorsPath string
	var outputDir string
	var imageDirs []string
	var logPath string
	var pageWidth int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build author and clipping pages from the master table",
		Long: `Build reads the master table row by row and writes the website tree:

  _authors/<slug>/index.html      one page per author named in the subjects column
  _clippings/<00001>/index.html   one page per clipping, numbered in order of first appearance
  _clippings/<00001>/<004>.tif    the page scans of the clipping, converted to TIFF

Page scans are found by searching the image directories for files named like
fla-<collection>-<work>-<part>-<page>. TIFF scans are preferred over JPEG and DjVu
when several exist for the same page; DjVu files are converted with ddjvu.

Existing author and clipping pages are never rewritten, so a build can be rerun
after adding scans. Problems with single rows are logged and the build carries on.`,
		Example: `  # Build the site from the merged and normalized master table
  clippings build --master normalized.csv --authors authors.json --output site --images /mnt/scans

  # Search several scan directories, with debug logging
  clippings build --master normalized.csv --output site --images scans/tiff --images scans/djvu --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("page-width") {
				cfg.PageWidth = pageWidth
			}

			log, err := runlog.Open(logPath, os.Stderr, verbose)
			if err != nil {
				return err
			}
			defer log.Close()
			slog.SetDefault(log.Logger)

			rows, err := master.Open(masterPath)
			if err != nil {
				return err
			}
			defer rows.Close()

			ctx := cmd.Context()
			log.Info("Starting build", "master", masterPath, "output", outputDir, "images", imageDirs)

			builder, err := pipeline.Open(ctx, pipeline.Options{
				Output:      outputDir,
				ImageDirs:   imageDirs,
				AuthorsPath: authorsPath,
				MasterPath:  masterPath,
				Creators:    cfg.Creators(),
				PageWidth:   cfg.PageWidth,
				DJVUCommand: cfg.DJVUCommand,
			}, log.Logger)
			if err != nil {
				return err
			}

			summary, runErr := builder.Run(ctx, rows)
			if err := builder.Close(); err != nil {
				log.Error("Failed to close build", "error", err)
			}

			printBuildSummary(summary, outputDir)
			return runErr
		},
	}

	cmd.Flags().StringVar(&masterPath, "master", "master.csv", "Path to master table (.csv or .parquet)")
	cmd.Flags().StringVar(&authorsPath, "authors", "authors.json", "Path to authors mapping written by normalize")
	cmd.Flags().StringVar(&outputDir, "output", "", "Site directory to write (required)")
	cmd.Flags().StringArrayVar(&imageDirs, "images", nil, "Directory to search for page scans (repeatable)")
	cmd.Flags().StringVar(&logPath, "log", runlog.DefaultPath, "Run log, appended to")
	cmd.Flags().IntVar(&pageWidth, "page-width", 0, "Zero padded width of page image names (default from config, 3)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}

func printBuildSummary(s pipeline.Summary, outputDir string) {
	fmt.Printf("\nBuild complete!\n")
	fmt.Printf("  Rows processed: %d\n", s.Rows)
	fmt.Printf("  Completed: %d\n", s.Done)
	fmt.Printf("  Skipped: %d\n", s.TotalSkipped())
	for _, stage := range []pipeline.Stage{
		pipeline.StageStart,
		pipeline.StageAuthorsEnsured,
		pipeline.StageClippingResolved,
		pipeline.StageImageFound,
	} {
		if n := s.Skipped[stage]; n > 0 {
			fmt.Printf("    after %s: %d\n", stage, n)
		}
	}
	fmt.Printf("  Clippings created: %d\n", s.ClippingsCreated)
	fmt.Printf("  Authors created: %d (missing names: %d, errors: %d)\n", s.AuthorsCreated, s.AuthorsMissing, s.AuthorErrors)
	fmt.Printf("  Images written: %d (already present: %d)\n", s.ImagesWritten, s.ImagesExisting)
	fmt.Printf("  Images missing: %d\n", s.ImagesMissing)
	fmt.Printf("  Image errors: %d\n", s.ImageErrors)
	fmt.Printf("  Output location: %s\n", outputDir)
}

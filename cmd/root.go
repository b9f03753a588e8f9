package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/clippings/internal/config"
)

var configPath string

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clippings",
		Short: "Migrate archival clipping spreadsheets and scans into a static site",
		Long: `Clippings turns the spreadsheets and page scans of the clippings collections
into the directory layout of the website.

The usual workflow is merge, then normalize, then build:
  merge      combine the exported collection spreadsheets into one master table
  normalize  match author names against Wikidata
  build      write author and clipping pages and convert page scans to TIFF`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (collections, page width, converter command)")

	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newNormalizeCmd())
	cmd.AddCommand(newBuildCmd())

	return cmd
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

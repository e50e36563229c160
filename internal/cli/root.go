package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semdex/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Semdex - embed documents and search them semantically",
	Long: `Semdex converts document text into fixed-width embedding vectors via
interchangeable providers (a local word-vector model or a remote API,
with automatic fallback), reconciles native dimensionality against one
canonical width, and ranks stored chunks by cosine similarity.

Example usage:
  semdex ingest ./docs              # Embed and index documents
  semdex query -q "revenue growth"  # Search indexed chunks
  semdex status                     # Show index statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semdex.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusDocument string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusDocument, "document", "", "count chunks for a single document ID")
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg, rootDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if statusDocument != "" {
		count, err := st.CountByDocument(cmd.Context(), statusDocument)
		if err != nil {
			return err
		}
		fmt.Printf("Document %s: %d chunks\n", statusDocument, count)
		return nil
	}

	count, err := st.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Store: %s\n", cfg.Store.Driver)
	fmt.Printf("Canonical dimension: %d\n", cfg.Embedding.CanonicalDim)
	fmt.Printf("Indexed chunks: %d\n", count)
	return nil
}

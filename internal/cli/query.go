package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"semdex/internal/usecase"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search indexed chunks",
	Long: `Embed the query through the configured provider chain and rank
stored chunks by cosine similarity.

Examples:
  semdex query -q "revenue growth"
  semdex query -q "quarterly results" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

type queryResultOutput struct {
	UnitID     string  `json:"unit_id"`
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg, rootDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	resolver := newResolver(cfg)
	embedder, err := newEmbedder(cfg, resolver)
	if err != nil {
		return err
	}

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	uc := usecase.NewRetrieveUseCase(embedder, st)
	results, err := uc.Query(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	output := make([]queryResultOutput, 0, len(results))
	for _, r := range results {
		out := queryResultOutput{
			UnitID:     r.UnitID,
			DocumentID: r.DocumentID,
			Score:      r.Score,
		}
		if unit, _, err := st.Get(cmd.Context(), r.UnitID); err == nil {
			out.Content = unit.Content
		}
		output = append(output, out)
	}

	if queryJSON {
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(output) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(output), queryText)
	for i, r := range output {
		fmt.Printf("--- [%d] %s (doc %s, score: %.4f) ---\n", i+1, r.UnitID, r.DocumentID, r.Score)
		text := r.Content
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}

	return nil
}

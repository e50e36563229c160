package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"semdex/internal/adapter/analyzer"
	"semdex/internal/adapter/chunker"
	"semdex/internal/adapter/fs"
	"semdex/internal/usecase"
)

var (
	ingestIncludes []string
	ingestExcludes []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Embed and index documents",
	Long: `Walk a directory, chunk each document along sentence boundaries,
embed every chunk through the configured provider chain, and persist
the canonical vectors.

Chunks whose embedding fails are skipped without writing a partial
record, so a later run can reprocess them.

Examples:
  semdex ingest ./docs
  semdex ingest ./docs --include "**/*.md"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringSliceVar(&ingestIncludes, "include", nil, "include glob patterns (default *.txt, *.md)")
	ingestCmd.Flags().StringSliceVar(&ingestExcludes, "exclude", nil, "exclude glob patterns")
}

func runIngest(cmd *cobra.Command, args []string) error {
	target := rootDir
	if len(args) > 0 {
		target = args[0]
	}

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

	includes := cfg.Ingest.Includes
	if len(ingestIncludes) > 0 {
		includes = ingestIncludes
	}
	excludes := cfg.Ingest.Excludes
	if len(ingestExcludes) > 0 {
		excludes = ingestExcludes
	}

	walker := fs.NewWalker(includes, excludes)
	tokenizer := analyzer.NewTokenizer(true)
	chk := chunker.NewSentenceChunker(cfg.Ingest.ChunkWords, cfg.Ingest.OverlapWords, tokenizer)

	uc := usecase.NewIngestUseCase(walker, chk, embedder, st)

	var bar *progressbar.ProgressBar
	uc.Progress = func(path string, current, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("embedding"),
				progressbar.OptionShowCount(),
			)
		}
		bar.Set(current)
	}

	result, err := uc.Ingest(cmd.Context(), target)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Ingested %d files: %d chunks embedded, %d failed\n",
		result.FilesIngested, result.UnitsWritten, result.UnitsFailed)
	for _, msg := range result.Errors {
		fmt.Printf("  ! %s\n", msg)
	}

	return nil
}

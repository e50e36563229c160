package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage resolved credentials",
}

var secretsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Purge the secret resolver cache",
	Long: `Drop every cached secret value so the next resolution fetches fresh
credentials from the vault or the environment. Intended for credential
rotation; clearing affects the current process only.`,
	RunE: runSecretsClear,
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsClearCmd)
}

func runSecretsClear(cmd *cobra.Command, args []string) error {
	resolver := newResolver(cfg)
	resolver.Clear()
	fmt.Println("Secret cache cleared.")
	return nil
}

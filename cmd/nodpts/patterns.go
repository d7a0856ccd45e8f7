package nodpts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/scanner"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the secret patterns used by check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root := flagPath
			if repo, err := git.Open(flagPath); err == nil {
				root = repo.Root
			}
			cfg := config.Resolve(root, nil)
			out := cmd.OutOrStdout()
			for _, p := range scanner.New(cfg.CustomPatterns, logger).Patterns() {
				fmt.Fprintf(out, "%-7s %s\n", p.Severity, p.Name)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

package nodpts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodpts/no-dpts/internal/bypass"
	"github.com/nodpts/no-dpts/internal/git"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bypass",
		Short: "Skip all checks for the next commit only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := git.Open(flagPath)
			if err != nil {
				return err
			}
			if err := bypass.New(repo.GitDir).Create(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✓ Bypass token created")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "⚠ Your next commit will skip all checks.")
			fmt.Fprintln(out, "The token is deleted after one use. Use it for emergencies only.")
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}

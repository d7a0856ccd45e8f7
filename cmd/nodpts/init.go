package nodpts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/hook"
	"github.com/nodpts/no-dpts/internal/review"
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install the pre-commit hook and a starter no-dpts.toml",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	rootCmd.AddCommand(cmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	repo, err := git.Open(flagPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Git repository detected")

	p, err := hook.Install(repo.HooksDir())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Installed pre-commit hook at %s\n", p)

	wrote, err := hook.WriteExampleConfig(repo.Root)
	if err != nil {
		return err
	}
	if wrote {
		fmt.Fprintf(out, "✓ Created example %s config\n", hook.ConfigFileName)
	} else {
		fmt.Fprintf(out, "↳ %s already exists, left unchanged\n", hook.ConfigFileName)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "no-dpts initialized. Next steps:")
	fmt.Fprintf(out, "  1. Set %s in your environment or a .env file\n", review.APIKeyEnv)
	fmt.Fprintf(out, "  2. Customize %s as needed\n", hook.ConfigFileName)
	fmt.Fprintln(out, "  3. Stage your changes and commit; checks run automatically")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To bypass checks once: no-dpts bypass")
	return nil
}

package nodpts

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/git"
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	root := flagPath
	if repo, err := git.Open(flagPath); err == nil {
		root = repo.Root
	}
	cfg := config.Resolve(root, func(err error) {
		logger.Warn("ignoring config file", zap.Error(err))
	})
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg.File()); err != nil {
		return err
	}
	return enc.Close()
}

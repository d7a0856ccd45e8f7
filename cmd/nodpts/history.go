package nodpts

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/nodpts/no-dpts/internal/audit"
	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/report"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent gate decisions from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := git.Open(flagPath)
			if err != nil {
				return err
			}
			records, err := audit.NewAuditLog(repo.GitDir).LoadHistory()
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
				records = records[:flagHistoryLimit]
			}
			return report.PrintHistory(cmd.OutOrStdout(), records)
		},
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "number of records to show (0 = all)")
}

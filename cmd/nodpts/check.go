package nodpts

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodpts/no-dpts/internal/audit"
	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/report"
	"github.com/nodpts/no-dpts/internal/types"
	"github.com/nodpts/no-dpts/pkg/core"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagNoCache bool
	flagThreads int
)

func init() {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run all checks against the staged changes",
		Long:  "Scans staged files for secrets, lints them and requests an AI review of the staged diff. Exits 1 when the commit should be blocked.",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit the summary as JSON")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable the scan cache")
	cmd.Flags().IntVar(&flagThreads, "threads", 0, "concurrent file reads (0 = GOMAXPROCS)")
	cmd.MarkFlagsMutuallyExclusive("json", "sarif")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	repo, err := git.Open(flagPath)
	if err != nil {
		return err
	}
	summary, err := core.Check(ctx, core.Options{
		Root:    repo.Root,
		NoCache: flagNoCache,
		Threads: flagThreads,
		Log:     logger,
	})
	if err != nil {
		return err
	}
	recordGate(repo, summary)

	out := cmd.OutOrStdout()
	switch {
	case flagJSON:
		err = core.MarshalSummary(out, summary)
	case flagSARIF:
		err = report.WriteSARIF(out, summary)
	default:
		report.PrintSummary(out, summary, report.PrintOptions{NoColor: noColor(), Verbose: flagVerbose})
	}
	if err != nil {
		return err
	}
	if summary.Blocked() {
		return errBlocked
	}
	return nil
}

// recordGate appends the decision to the audit log. Failures are logged only.
func recordGate(repo *git.Repo, s types.CheckSummary) {
	_, commit, branch := git.RepoMetadata(repo.Root)
	rec := audit.CreateGateRecord(repo.Root, commit, branch, s, time.Now().UTC())
	if err := audit.NewAuditLog(repo.GitDir).LogGate(rec); err != nil {
		logger.Warn("could not write audit log", zap.Error(err))
	}
}

package nodpts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/report"
)

var (
	flagNoColor bool
	flagVerbose bool
	flagPath    string

	version = "0.1.0"

	logger = zap.NewNop()
)

// errBlocked is returned by check when the gate rejects the commit. The
// report has already been printed, so Execute exits without an error line.
var errBlocked = errors.New("commit blocked")

// rootCmd is the base Cobra command for the no-dpts CLI.
var rootCmd = &cobra.Command{
	Use:               "no-dpts",
	Short:             "Pre-commit gatekeeper for secrets, lint errors and risky changes",
	Long:              "no-dpts checks staged changes for leaked secrets, runs the matching linters and asks an AI reviewer for a verdict before a commit is allowed.",
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the no-dpts CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return
	}
	if !errors.Is(err, errBlocked) {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log diagnostics and list every skipped check")
	rootCmd.PersistentFlags().StringVarP(&flagPath, "path", "C", ".", "run as if started in this directory")
}

func setup(_ *cobra.Command, _ []string) error {
	l, err := logging.New(flagVerbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = l
	loadDotenv(flagPath)
	return nil
}

// loadDotenv reads dir/.env into the environment without overriding
// variables that are already set.
func loadDotenv(dir string) {
	p := filepath.Join(dir, ".env")
	if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("could not load .env", zap.String("path", p), zap.Error(err))
	}
}

func noColor() bool {
	return flagNoColor || !report.ColorEnabled(os.Stdout)
}

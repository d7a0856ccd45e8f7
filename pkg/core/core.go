package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/nodpts/no-dpts/internal/bypass"
	"github.com/nodpts/no-dpts/internal/cache"
	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/engine"
	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/lint"
	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/review"
	"github.com/nodpts/no-dpts/internal/scanner"
	"github.com/nodpts/no-dpts/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Config = config.Config
type Summary = types.CheckSummary
type Finding = types.SecurityFinding
type LinterResult = types.LinterResult
type ReviewResult = types.ReviewResult

// Options configures Check.
type Options struct {
	// Root is any path inside the repository to check.
	Root string
	// Config overrides the resolved global and local configuration.
	Config *Config
	// Review overrides the AI reviewer options derived from the config.
	Review *review.Options
	// NoCache disables the scan cache.
	NoCache bool
	Threads int
	Log     *zap.Logger
}

// Check runs the pre-commit gate against the staged changes of the
// repository containing opts.Root. It consumes a pending bypass.
func Check(ctx context.Context, opts Options) (Summary, error) {
	log := logging.OrNop(opts.Log)
	repo, err := git.Open(opts.Root)
	if err != nil {
		return Summary{}, err
	}

	var cfg Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		cfg = config.Resolve(repo.Root, func(err error) {
			log.Warn("ignoring config file", zap.Error(err))
		})
	}

	reviewOpts := review.OptionsFromConfig(cfg)
	if opts.Review != nil {
		reviewOpts = *opts.Review
	}
	reviewOpts.Log = log

	e := &engine.Engine{
		Stage:    repo.Stage(),
		Scanner:  scanner.New(cfg.CustomPatterns, log),
		Linter:   lint.New(repo.Root, log),
		Reviewer: review.NewClient(reviewOpts),
		Bypass:   bypass.New(repo.GitDir),
		Log:      log,
		Threads:  opts.Threads,
	}

	var db *cache.DB
	if !opts.NoCache {
		db, err = cache.Load(repo.GitDir)
		if err != nil {
			log.Debug("starting with an empty scan cache", zap.Error(err))
		}
		e.Cache = db
	}

	summary, err := e.Run(ctx, cfg)
	if err != nil {
		return Summary{}, err
	}
	if db != nil {
		if err := cache.Save(repo.GitDir, db); err != nil {
			log.Warn("could not save scan cache", zap.Error(err))
		}
	}
	return summary, nil
}

// Mask returns the display form of a matched secret.
func Mask(s string) string { return scanner.Mask(s) }

// PatternNames lists the built-in secret pattern names in scan order.
func PatternNames() []string { return scanner.BuiltinNames() }

package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nodpts/no-dpts/internal/cache"
	"github.com/nodpts/no-dpts/internal/config"
	"github.com/nodpts/no-dpts/internal/git"
	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/review"
	"github.com/nodpts/no-dpts/internal/scanner"
	"github.com/nodpts/no-dpts/internal/types"
)

// Stage reads the staged snapshot.
type Stage interface {
	Paths(ctx context.Context) ([]string, error)
	Diff(ctx context.Context) (string, error)
	Content(ctx context.Context, path string) ([]byte, error)
}

// SecretScanner finds secrets in one file's content.
type SecretScanner interface {
	Scan(path string, content []byte) ([]types.SecurityFinding, error)
	Fingerprint() string
}

// Linter lints a set of files, one result per path in input order.
type Linter interface {
	Run(ctx context.Context, paths []string) []types.LinterResult
}

// Reviewer reviews a unified diff.
type Reviewer interface {
	Review(ctx context.Context, diff string) (types.ReviewResult, error)
}

// Bypass consumes a pending one-shot bypass.
type Bypass interface {
	Consume() (bool, error)
}

// Cache remembers scan findings per path and content key.
type Cache interface {
	Lookup(path, key string) ([]types.SecurityFinding, bool)
	Store(path, key string, findings []types.SecurityFinding)
}

// Skip reasons recorded in CheckSummary.ReviewSkipped.
const (
	SkipNoAPIKey   = "API key not set"
	SkipNoReviewer = "AI review disabled"
)

// Engine wires the collaborators of one check run. Linter, Reviewer and
// Cache are optional.
type Engine struct {
	Stage    Stage
	Scanner  SecretScanner
	Linter   Linter
	Reviewer Reviewer
	Bypass   Bypass
	Cache    Cache
	Log      *zap.Logger
	// Threads bounds concurrent staged-content reads. Zero means GOMAXPROCS.
	Threads int
}

// Run executes the gate. The returned error is non-nil only for failures
// that leave nothing to decide on: bypass I/O and listing staged paths.
// Everything else degrades into the summary.
func (e *Engine) Run(ctx context.Context, cfg config.Config) (types.CheckSummary, error) {
	log := logging.OrNop(e.Log)
	started := time.Now()

	if e.Bypass != nil {
		consumed, err := e.Bypass.Consume()
		if err != nil {
			return types.CheckSummary{}, err
		}
		if consumed {
			log.Info("bypass token consumed; skipping all checks")
			return passing(types.CheckSummary{Bypassed: true}, started), nil
		}
	}

	staged, err := e.Stage.Paths(ctx)
	if err != nil {
		return types.CheckSummary{}, fmt.Errorf("list staged files: %w", err)
	}
	if len(staged) == 0 {
		return passing(types.CheckSummary{}, started), nil
	}

	files, ignored := cfg.Filter(staged)
	if len(ignored) > 0 {
		log.Debug("ignoring staged files", zap.Strings("paths", ignored))
	}

	var (
		sec      securityOutcome
		lints    []types.LinterResult
		verdict  *types.ReviewResult
		aiReason string
	)
	// each task writes only its own result
	var g errgroup.Group
	g.Go(func() error {
		sec = e.scanSecurity(ctx, log, files)
		return nil
	})
	g.Go(func() error {
		if e.Linter != nil && len(files) > 0 {
			lints = e.Linter.Run(ctx, files)
		}
		return nil
	})
	g.Go(func() error {
		verdict, aiReason = e.review(ctx, log)
		return nil
	})
	_ = g.Wait()

	s := types.CheckSummary{
		StagedFiles:      len(staged),
		CheckedFiles:     len(files),
		IgnoredFiles:     len(ignored),
		SecurityFindings: sec.findings,
		LinterResults:    lints,
		Review:           verdict,
		ReviewSkipped:    aiReason,
		ScanErrors:       sec.errors,
	}
	s.SecurityPassed = len(s.SecurityFindings) == 0
	s.LintingPassed = true
	for _, r := range lints {
		if r.Failed() {
			s.LintingPassed = false
			break
		}
	}
	// an unavailable reviewer never blocks on its own
	s.AIPassed = verdict == nil || verdict.Passed
	s.Duration = time.Since(started)
	return s, nil
}

func passing(s types.CheckSummary, started time.Time) types.CheckSummary {
	s.SecurityPassed = true
	s.LintingPassed = true
	s.AIPassed = true
	s.Duration = time.Since(started)
	return s
}

type securityOutcome struct {
	findings []types.SecurityFinding
	errors   []string
}

type fileScan struct {
	findings []types.SecurityFinding
	err      error
}

func (e *Engine) scanSecurity(ctx context.Context, log *zap.Logger, files []string) securityOutcome {
	var out securityOutcome
	if e.Scanner == nil || len(files) == 0 {
		return out
	}
	threads := e.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	fingerprint := e.Scanner.Fingerprint()

	results := make([]fileScan, len(files))
	var g errgroup.Group
	g.SetLimit(threads)
	for i, p := range files {
		g.Go(func() error {
			content, err := e.Stage.Content(ctx, p)
			if err != nil {
				results[i].err = err
				return nil
			}
			var key string
			if e.Cache != nil {
				key = cache.Key(fingerprint, content)
				if hit, ok := e.Cache.Lookup(p, key); ok {
					results[i].findings = hit
					return nil
				}
			}
			findings, err := e.Scanner.Scan(p, content)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].findings = findings
			if e.Cache != nil {
				e.Cache.Store(p, key, results[i].findings)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r.err != nil {
			lvl, msg := zap.WarnLevel, "could not read staged content"
			switch {
			case errors.Is(r.err, git.ErrContentUnavailable):
				// deletions and binaries are expected
				lvl = zap.DebugLevel
			case errors.Is(r.err, scanner.ErrNotText):
				msg = "staged content not scanned"
			}
			log.Log(lvl, msg, zap.String("file", files[i]), zap.Error(r.err))
			out.errors = append(out.errors, fmt.Sprintf("%s: %v", files[i], r.err))
			continue
		}
		out.findings = append(out.findings, r.findings...)
	}
	return out
}

// review returns the verdict, or nil and the reason the review was skipped.
func (e *Engine) review(ctx context.Context, log *zap.Logger) (*types.ReviewResult, string) {
	if e.Reviewer == nil {
		return nil, SkipNoReviewer
	}
	// the review covers every staged change, ignored files included
	diff, err := e.Stage.Diff(ctx)
	if err != nil {
		log.Warn("AI review skipped", zap.Error(err))
		return nil, fmt.Sprintf("could not read staged diff: %v", err)
	}
	res, err := e.Reviewer.Review(ctx, diff)
	switch {
	case err == nil:
		return &res, ""
	case errors.Is(err, review.ErrConfiguration):
		log.Debug("AI review skipped", zap.Error(err))
		return nil, SkipNoAPIKey
	default:
		log.Warn("AI review failed", zap.Error(err))
		return nil, err.Error()
	}
}

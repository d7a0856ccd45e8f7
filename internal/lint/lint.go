// Package lint dispatches staged files to external linters by extension and
// normalizes their exit status into LinterResults.
package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nodpts/no-dpts/internal/logging"
	"github.com/nodpts/no-dpts/internal/types"
)

// Tool is an external linter invocation. The file path is appended as the
// final argument.
type Tool struct {
	Name string
	Args []string
}

// NoTool is the tool name reported for files with no configured linter.
const NoTool = "none"

var eslint = Tool{Name: "eslint", Args: []string{"--no-error-on-unmatched-pattern"}}

var tools = map[string]Tool{
	"py":  {Name: "ruff", Args: []string{"check"}},
	"js":  eslint,
	"jsx": eslint,
	"ts":  eslint,
	"tsx": eslint,
	"rs":  {Name: "cargo", Args: []string{"fmt", "--check", "--"}},
}

// extension returns the lower-cased extension of p without the dot.
func extension(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(strings.ReplaceAll(p, "\\", "/")), "."))
}

// ToolFor returns the linter configured for p.
func ToolFor(p string) (Tool, bool) {
	t, ok := tools[extension(p)]
	return t, ok
}

// Dispatcher runs linters for staged files. The zero value is not usable;
// construct with New.
type Dispatcher struct {
	// Dir is the working directory linters run in, normally the worktree root.
	Dir string
	// LookPath finds an executable on PATH.
	LookPath func(file string) (string, error)
	// Command builds the process for one invocation.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd

	log *zap.Logger
}

// New returns a Dispatcher that runs tools from dir.
func New(dir string, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		Dir:      dir,
		LookPath: exec.LookPath,
		Command:  exec.CommandContext,
		log:      logging.OrNop(log),
	}
}

// Run lints every path concurrently and waits for all of them. Results are
// returned in the order of paths; one file's failure never affects another.
func (d *Dispatcher) Run(ctx context.Context, paths []string) []types.LinterResult {
	results := make([]types.LinterResult, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			results[i] = d.RunFile(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunFile lints a single file.
func (d *Dispatcher) RunFile(ctx context.Context, file string) types.LinterResult {
	tool, ok := ToolFor(file)
	if !ok {
		return skipped(NoTool, file, fmt.Sprintf("no linter configured for .%s files", extension(file)))
	}
	if _, err := d.LookPath(tool.Name); err != nil {
		return skipped(tool.Name, file, tool.Name+" is not installed")
	}

	args := append(append([]string{}, tool.Args...), file)
	cmd := d.Command(ctx, tool.Name, args...)
	cmd.Dir = d.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return ran(tool.Name, file, true, stdout.String()+stderr.String())
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		d.log.Debug("linter reported problems", zap.String("tool", tool.Name), zap.String("file", file), zap.Int("exit", exitErr.ExitCode()))
		return ran(tool.Name, file, false, stdout.String()+stderr.String())
	default:
		d.log.Warn("linter could not run", zap.String("tool", tool.Name), zap.String("file", file), zap.Error(err))
		return skipped(tool.Name, file, fmt.Sprintf("failed to run %s: %v", tool.Name, err))
	}
}

func skipped(tool, file, reason string) types.LinterResult {
	return types.LinterResult{Tool: tool, File: file, Passed: true, Skipped: true, SkipReason: reason}
}

func ran(tool, file string, passed bool, output string) types.LinterResult {
	return types.LinterResult{Tool: tool, File: file, Passed: passed, Output: strings.TrimSpace(output)}
}

// IsImportantSkip reports whether a skip points at a missing tool the user
// probably wants installed, as opposed to an unsupported file type.
func IsImportantSkip(r types.LinterResult) bool {
	return r.Skipped && strings.Contains(r.SkipReason, "not installed")
}

package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrCollaborator marks a failure to spawn git or a non-zero git exit.
	ErrCollaborator = errors.New("git command failed")
	// ErrContentUnavailable is returned for staged paths with no readable
	// text blob: deletions and binary files.
	ErrContentUnavailable = errors.New("staged content unavailable")
)

// binarySniffLen matches the prefix git inspects when deciding a blob is binary.
const binarySniffLen = 8000

// Stage reads the index (the staged snapshot) of a repository through the
// git CLI. It never reads the working tree.
type Stage struct {
	root string
}

// NewStage returns a reader for the repository rooted at root.
func NewStage(root string) (*Stage, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	return &Stage{root: validRoot}, nil
}

// Root is the worktree root commands run against.
func (s *Stage) Root() string { return s.root }

func (s *Stage) git(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", s.root}, args...)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%w: git %s: %v", ErrCollaborator, args[0], err)
		}
		return nil, fmt.Errorf("%w: git %s: %v: %s", ErrCollaborator, args[0], err, msg)
	}
	return stdout.Bytes(), nil
}

// Paths lists staged paths in git's order.
func (s *Stage) Paths(ctx context.Context) ([]string, error) {
	out, err := s.git(ctx, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range strings.Split(string(out), "\x00") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Diff returns the unified diff of everything staged. An empty string means
// nothing is staged.
func (s *Stage) Diff(ctx context.Context) (string, error) {
	out, err := s.git(ctx, "diff", "--cached")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Content returns the staged blob for path.
func (s *Stage) Content(ctx context.Context, path string) ([]byte, error) {
	if strings.ContainsRune(path, 0) {
		return nil, fmt.Errorf("%w: %q: invalid path", ErrContentUnavailable, path)
	}
	out, err := s.git(ctx, "show", ":"+path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrContentUnavailable, path, err)
	}
	sniff := out
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return nil, fmt.Errorf("%w: %s: binary file", ErrContentUnavailable, path)
	}
	return out, nil
}

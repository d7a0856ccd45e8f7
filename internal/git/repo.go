package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ErrNotRepository is returned by Open when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

// Repo is a discovered repository: the worktree root and its git directory.
type Repo struct {
	Root   string
	GitDir string

	repo *gogit.Repository
}

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// Open discovers the repository enclosing path, walking up parent
// directories the way git itself does.
func Open(path string) (*Repo, error) {
	start, err := validateRoot(path)
	if err != nil {
		return nil, err
	}
	r, err := gogit.PlainOpenWithOptions(start, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", start, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository at %s: %w", start, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		// bare repositories have no staging area to gate
		return nil, fmt.Errorf("%s: %w", start, ErrNotRepository)
	}
	out := &Repo{Root: wt.Filesystem.Root(), repo: r}
	if st, ok := r.Storer.(*filesystem.Storage); ok {
		out.GitDir = st.Filesystem().Root()
	} else {
		out.GitDir = filepath.Join(out.Root, ".git")
	}
	return out, nil
}

// HooksDir returns the directory git runs hooks from, honoring core.hooksPath.
func (r *Repo) HooksDir() string {
	if r.repo != nil {
		if cfg, err := r.repo.Config(); err == nil && cfg.Raw != nil {
			if p := strings.TrimSpace(cfg.Raw.Section("core").Option("hooksPath")); p != "" {
				if filepath.IsAbs(p) {
					return p
				}
				return filepath.Join(r.Root, p)
			}
		}
	}
	return filepath.Join(r.GitDir, "hooks")
}

// Stage returns the staged-snapshot reader for this repository.
func (r *Repo) Stage() *Stage {
	return &Stage{root: r.Root}
}

// Metadata identifies the commit a gate decision was made against.
type Metadata struct {
	Repo   string
	Commit string
	Branch string
}

// Metadata returns best-effort HEAD information. Fields are empty when
// unavailable, e.g. before the first commit.
func (r *Repo) Metadata() Metadata {
	var md Metadata
	if r.repo == nil {
		return md
	}
	if remote, err := r.repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		md.Repo = shortRemote(remote.Config().URLs[0])
	}
	head, err := r.repo.Head()
	if err != nil {
		return md
	}
	md.Commit = head.Hash().String()
	if head.Name().IsBranch() {
		md.Branch = head.Name().Short()
	}
	return md
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned on failure.
func RepoMetadata(root string) (string, string, string) {
	r, err := Open(root)
	if err != nil {
		return "", "", ""
	}
	md := r.Metadata()
	return md.Repo, md.Commit, md.Branch
}

// shortRemote keeps owner/name when possible.
func shortRemote(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "/"); j >= 0 {
			s = s[j+1:]
		}
		return s
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

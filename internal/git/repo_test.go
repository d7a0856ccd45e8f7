package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_DiscoversFromSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := Open(sub)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if r.Root != dir {
		t.Fatalf("root = %q, want %q", r.Root, dir)
	}
	if r.GitDir != filepath.Join(dir, ".git") {
		t.Fatalf("git dir = %q", r.GitDir)
	}
	if got := r.HooksDir(); got != filepath.Join(dir, ".git", "hooks") {
		t.Fatalf("hooks dir = %q", got)
	}
	if r.Stage().Root() != dir {
		t.Fatalf("stage root = %q", r.Stage().Root())
	}
}

func TestOpen_HooksPathOverride(t *testing.T) {
	dir, run := initRepo(t)
	run("config", "core.hooksPath", ".githooks")
	r, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.HooksDir(); got != filepath.Join(dir, ".githooks") {
		t.Fatalf("hooks dir = %q", got)
	}
}

func TestOpen_NotRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotRepository) {
		t.Fatalf("expected ErrNotRepository, got %v", err)
	}
}

func TestRepoMetadata(t *testing.T) {
	dir, run := initRepo(t)
	run("commit", "--allow-empty", "-m", "init")
	run("remote", "add", "origin", "git@github.com:acme/widgets.git")

	repo, commit, branch := RepoMetadata(dir)
	if len(commit) != 40 {
		t.Fatalf("expected full commit hash, got %q", commit)
	}
	if branch == "" {
		t.Fatalf("expected non-empty branch")
	}
	if repo != "acme/widgets" {
		t.Fatalf("repo = %q", repo)
	}
}

func TestRepoMetadata_Unborn(t *testing.T) {
	dir, _ := initRepo(t)
	_, commit, _ := RepoMetadata(dir)
	if commit != "" {
		t.Fatalf("expected empty commit before first commit, got %q", commit)
	}
}

func TestShortRemote(t *testing.T) {
	cases := map[string]string{
		"git@github.com:acme/widgets.git":     "acme/widgets",
		"https://github.com/acme/widgets.git": "acme/widgets",
		"https://gitlab.example.com/g/p":      "g/p",
		"":                                    "",
	}
	for in, want := range cases {
		if got := shortRemote(in); got != want {
			t.Fatalf("shortRemote(%q)=%q want %q", in, got, want)
		}
	}
}

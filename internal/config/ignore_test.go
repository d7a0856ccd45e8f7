package config

import "testing"

func TestShouldIgnore(t *testing.T) {
	cfg := Config{IgnoredFiles: []string{"*.lock", "*.min.js", "package-lock.json", "vendor/**", "docs/notes.md"}}
	cases := map[string]bool{
		"Cargo.lock":                   true,
		"sub/dir/yarn.lock":            true,
		"static/app.min.js":            true,
		"static/app.js":                false,
		"package-lock.json":            true,
		"web/package-lock.json":        true,
		"vendor/github.com/x/y.go":     true,
		"docs/notes.md":                true,
		"other/docs/notes.md":          true,
		"docs/notes.mdx":               false,
		"src/main.rs":                  false,
		`windows\style\Cargo.lock`:     true,
		"Cargo.lock.bak":               false,
		"lockfiles/readme.txt":         false,
		"internal/app/handler_test.go": false,
	}
	for p, want := range cases {
		if got := cfg.ShouldIgnore(p); got != want {
			t.Fatalf("ShouldIgnore(%q)=%v want %v", p, got, want)
		}
	}
}

func TestShouldIgnore_EmptyPatterns(t *testing.T) {
	cfg := Config{IgnoredFiles: []string{"", "  "}}
	if cfg.ShouldIgnore("anything.go") {
		t.Fatal("blank patterns must not match")
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	cfg := Config{IgnoredFiles: []string{"*.lock"}}
	kept, ignored := cfg.Filter([]string{"b.py", "Cargo.lock", "a.rs"})
	if len(kept) != 2 || kept[0] != "b.py" || kept[1] != "a.rs" {
		t.Fatalf("unexpected kept: %v", kept)
	}
	if len(ignored) != 1 || ignored[0] != "Cargo.lock" {
		t.Fatalf("unexpected ignored: %v", ignored)
	}
}

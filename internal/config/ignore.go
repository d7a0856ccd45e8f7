package config

import (
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// ShouldIgnore reports whether a staged path is excluded from the secret
// scan and linting. Patterns with glob metacharacters are matched against
// the full path and the base name; literal patterns match the exact path or
// a path suffix.
func (c Config) ShouldIgnore(filePath string) bool {
	p := strings.ReplaceAll(filePath, "\\", "/")
	for _, pattern := range c.IgnoredFiles {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if isGlob(pattern) {
			if matchGlob(pattern, p) {
				return true
			}
			continue
		}
		if p == pattern || strings.HasSuffix(p, pattern) {
			return true
		}
	}
	return false
}

// Filter splits paths into kept and ignored, preserving order.
func (c Config) Filter(paths []string) (kept, ignored []string) {
	for _, p := range paths {
		if c.ShouldIgnore(p) {
			ignored = append(ignored, p)
			continue
		}
		kept = append(kept, p)
	}
	return kept, ignored
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

func matchGlob(pattern, p string) bool {
	g := strings.TrimPrefix(pattern, "./")
	if ok, _ := doublestar.Match(g, p); ok {
		return true
	}
	if ok, _ := doublestar.Match(g, path.Base(p)); ok {
		return true
	}
	if !strings.HasPrefix(g, "**/") {
		if ok, _ := doublestar.Match("**/"+g, p); ok {
			return true
		}
	}
	return false
}

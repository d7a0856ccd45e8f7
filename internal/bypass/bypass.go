// Package bypass manages the one-shot sentinel that lets exactly one commit
// skip every check.
package bypass

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// FileName is the sentinel's name inside the git directory.
	FileName = "NO_DPTS_SKIP"

	content = "BYPASS_TOKEN"
)

// ErrBypassIO indicates the sentinel could not be created or removed. It is
// always fatal: ignoring it could leave a permanent bypass in place.
var ErrBypassIO = errors.New("bypass token I/O failed")

// Token is the sentinel for one repository.
type Token struct {
	path string
}

// New returns the token stored under gitDir.
func New(gitDir string) *Token {
	return &Token{path: filepath.Join(gitDir, FileName)}
}

// Path is the sentinel's location.
func (t *Token) Path() string { return t.path }

// IsPresent reports whether the next check will be skipped.
func (t *Token) IsPresent() bool {
	_, err := os.Stat(t.path)
	return err == nil
}

// Create arms the bypass. Creating an existing token rewrites it.
func (t *Token) Create() error {
	if err := os.WriteFile(t.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrBypassIO, t.path, err)
	}
	return nil
}

// Consume removes the sentinel and reports whether it was present. The
// removal is the presence test, so two racing checks cannot both consume
// the same token.
func (t *Token) Consume() (bool, error) {
	err := os.Remove(t.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: remove %s: %v", ErrBypassIO, t.path, err)
	}
}

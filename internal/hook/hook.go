// Package hook installs the git pre-commit hook and the starter config file.
package hook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Script is the pre-commit hook body.
const Script = `#!/bin/sh
# no-dpts pre-commit hook
# Installed by 'no-dpts init'; runs the secret scan, linters and AI review.

no-dpts check
exit_code=$?

if [ $exit_code -ne 0 ]; then
    echo ""
    echo "Commit blocked by no-dpts."
    echo "Fix the issues above or run 'no-dpts bypass' to skip checks once."
    exit 1
fi

exit 0
`

// ExampleConfig is written by WriteExampleConfig.
const ExampleConfig = `# no-dpts configuration file

# Files to ignore during scanning and linting (supports glob patterns)
ignored_files = [
    "*.lock",
    "*.min.js",
    "*.min.css",
    "package-lock.json",
    "yarn.lock",
]

# Custom regex patterns for project-specific secrets
# These are in addition to the built-in patterns
custom_patterns = [
    # "MY_SECRET_[A-Z0-9]{32}"
]

# AI model to use for code review (Groq models)
ai_model = "llama-3.3-70b-versatile"

# Rate limiting for AI API calls
[rate_limit]
requests_per_minute = 30
`

// ConfigFileName is the starter config's name in the repository root.
const ConfigFileName = "no-dpts.toml"

// Install writes the pre-commit hook into hooksDir, creating the directory
// if needed, and returns the hook path. An existing hook is replaced.
func Install(hooksDir string) (string, error) {
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", fmt.Errorf("create hooks directory: %w", err)
	}
	p := filepath.Join(hooksDir, "pre-commit")
	if err := os.WriteFile(p, []byte(Script), 0o755); err != nil {
		return "", fmt.Errorf("write pre-commit hook: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(p, 0o755); err != nil {
		return "", fmt.Errorf("make pre-commit hook executable: %w", err)
	}
	return p, nil
}

// WriteExampleConfig creates no-dpts.toml in root unless it already exists.
// It reports whether a file was written.
func WriteExampleConfig(root string) (bool, error) {
	p := filepath.Join(root, ConfigFileName)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create example config: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(ExampleConfig); err != nil {
		return false, fmt.Errorf("write example config: %w", err)
	}
	return true, nil
}

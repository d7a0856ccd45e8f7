// Package git reads the staged snapshot of a repository and discovers
// repository layout (worktree root, git directory, hooks directory).
package git

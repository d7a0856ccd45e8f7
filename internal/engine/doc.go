// Package engine runs the pre-commit gate: it consumes a pending bypass,
// snapshots the staged files, fans out the secret scan, the linters and the
// AI review, and aggregates their results into a single pass/block decision.
// This package is internal; external consumers should use the stable facade
// in pkg/core.
package engine

// Package config loads no-dpts configuration from the repo-local
// no-dpts.toml (or .no-dpts.yml) and the global XDG config file, merges them
// over built-in defaults and evaluates the ignore rules.
package config

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAIModel is used when no ai_model is configured.
	DefaultAIModel = "llama-3.3-70b-versatile"
	// DefaultRequestsPerMinute is the sustained AI request rate.
	DefaultRequestsPerMinute = 30
)

// ErrNoConfig is returned by the loaders when no config file exists.
var ErrNoConfig = errors.New("no config file")

// FileConfig is the on-disk shape of a no-dpts config file. Pointer fields
// distinguish "unset" from zero values so local files can override global ones.
type FileConfig struct {
	IgnoredFiles   *[]string        `toml:"ignored_files" yaml:"ignored_files"`
	CustomPatterns *[]string        `toml:"custom_patterns" yaml:"custom_patterns"`
	AIModel        *string          `toml:"ai_model" yaml:"ai_model"`
	RateLimit      *RateLimitConfig `toml:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig is the [rate_limit] table.
type RateLimitConfig struct {
	RequestsPerMinute *int `toml:"requests_per_minute" yaml:"requests_per_minute"`
}

// Config is the effective, read-only configuration for one invocation.
type Config struct {
	IgnoredFiles      []string
	CustomPatterns    []string
	AIModel           string
	RequestsPerMinute int
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		AIModel:           DefaultAIModel,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
}

// File converts the effective configuration back to its on-disk shape.
func (c Config) File() FileConfig {
	ignored := append([]string{}, c.IgnoredFiles...)
	custom := append([]string{}, c.CustomPatterns...)
	model := c.AIModel
	rpm := c.RequestsPerMinute
	return FileConfig{
		IgnoredFiles:   &ignored,
		CustomPatterns: &custom,
		AIModel:        &model,
		RateLimit:      &RateLimitConfig{RequestsPerMinute: &rpm},
	}
}

// LoadFile reads a config file, choosing the decoder from the extension.
// Files without a YAML extension are decoded as TOML.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// LocalNames lists the repo-local config file names in search order.
var LocalNames = []string{"no-dpts.toml", ".no-dpts.toml", ".no-dpts.yml", ".no-dpts.yaml"}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNoConfig
}

// LoadGlobal loads the global config file from the XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return FileConfig{}, ErrNoConfig
	}
	p := filepath.Join(base, "no-dpts", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return FileConfig{}, ErrNoConfig
}

// Merge applies file configs over the defaults, later files winning.
// Lists are replaced, not appended.
func Merge(files ...FileConfig) Config {
	cfg := Default()
	for _, fc := range files {
		if fc.IgnoredFiles != nil {
			cfg.IgnoredFiles = append([]string(nil), (*fc.IgnoredFiles)...)
		}
		if fc.CustomPatterns != nil {
			cfg.CustomPatterns = append([]string(nil), (*fc.CustomPatterns)...)
		}
		if fc.AIModel != nil && strings.TrimSpace(*fc.AIModel) != "" {
			cfg.AIModel = strings.TrimSpace(*fc.AIModel)
		}
		if fc.RateLimit != nil && fc.RateLimit.RequestsPerMinute != nil && *fc.RateLimit.RequestsPerMinute > 0 {
			cfg.RequestsPerMinute = *fc.RateLimit.RequestsPerMinute
		}
	}
	return cfg
}

// Resolve loads global then local config for repoRoot. Missing files are
// not errors; a malformed file is reported through warn and ignored.
func Resolve(repoRoot string, warn func(error)) Config {
	var files []FileConfig
	if c, err := LoadGlobal(); err == nil {
		files = append(files, c)
	} else if !errors.Is(err, ErrNoConfig) && warn != nil {
		warn(err)
	}
	if c, err := LoadLocal(repoRoot); err == nil {
		files = append(files, c)
	} else if !errors.Is(err, ErrNoConfig) && warn != nil {
		warn(err)
	}
	return Merge(files...)
}

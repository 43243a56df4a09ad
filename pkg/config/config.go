// Package config loads and validates runtime configuration for a scan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pastiche-dev/pastiche/internal/suppress"
)

// Config holds all options for a pastiche run.
type Config struct {
	Fingerprint FingerprintConfig `koanf:"fingerprint"`
	Suppress    SuppressConfig    `koanf:"suppress"`
	Exclude     ExcludeConfig     `koanf:"exclude"`
	Output      OutputConfig      `koanf:"output"`

	// Languages restricts the scan to the named languages when non-empty.
	Languages []string `koanf:"languages"`
}

// FingerprintConfig controls the winnowing pipeline.
type FingerprintConfig struct {
	// KGramSize is the number of tokens hashed per gram.
	KGramSize int `koanf:"kgram_size"`
	// WindowSize is the winnowing window over gram hashes. Detection is
	// guaranteed for repeats of at least kgram_size+window_size-1 tokens;
	// shorter matches may still be found but are not guaranteed.
	WindowSize int `koanf:"window_size"`
	// MinTokens is the minimum merged span length to report.
	MinTokens int `koanf:"min_tokens"`
	// Normalize is the normalization level: 0 exact, 1 identifiers,
	// 2 identifiers and literals.
	Normalize int `koanf:"normalize"`
	// GapTolerance allows merging fingerprint runs separated by up to this
	// many tokens. 0 merges only contiguous/overlapping runs.
	GapTolerance int `koanf:"gap_tolerance"`
}

// SuppressConfig controls clone suppression.
type SuppressConfig struct {
	// Patterns are fnmatch-style globs matched against clone source lines
	// plus one line of context above.
	Patterns []string `koanf:"patterns"`
	// MinFamilySize is the distinct-location threshold for sibling-aware
	// family suppression.
	MinFamilySize int `koanf:"min_family_size"`
}

// ExcludeConfig controls file discovery.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
}

// DefaultConfig returns the defaults for all options.
func DefaultConfig() *Config {
	return &Config{
		Fingerprint: FingerprintConfig{
			KGramSize:    5,
			WindowSize:   4,
			MinTokens:    50,
			Normalize:    0,
			GapTolerance: 0,
		},
		Suppress: SuppressConfig{
			MinFamilySize: 3,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
			},
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load reads configuration from a file, layered over the defaults. The
// parser is chosen by extension; TOML is assumed otherwise.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries the standard config file locations and falls back to
// defaults when none parses.
func LoadOrDefault() *Config {
	names := []string{
		"pastiche.toml",
		"pastiche.yaml",
		"pastiche.yml",
		"pastiche.json",
		".pastiche.toml",
		".pastiche.yaml",
		".pastiche.yml",
		".pastiche.json",
	}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}

// Validate rejects configurations that would misbehave mid-scan. It runs
// before any file is read; suppression patterns in particular must fail
// here rather than silently under-suppress later.
func (c *Config) Validate() error {
	fp := c.Fingerprint
	if fp.KGramSize < 1 {
		return fmt.Errorf("kgram_size must be at least 1, got %d", fp.KGramSize)
	}
	if fp.WindowSize < 1 {
		return fmt.Errorf("window_size must be at least 1, got %d", fp.WindowSize)
	}
	if fp.MinTokens < 1 {
		return fmt.Errorf("min_tokens must be at least 1, got %d", fp.MinTokens)
	}
	if fp.GapTolerance < 0 {
		return fmt.Errorf("gap_tolerance must not be negative, got %d", fp.GapTolerance)
	}
	if fp.Normalize < 0 || fp.Normalize > 2 {
		return fmt.Errorf("normalize must be 0, 1 or 2, got %d", fp.Normalize)
	}
	if c.Suppress.MinFamilySize < 2 {
		return fmt.Errorf("min_family_size must be at least 2, got %d", c.Suppress.MinFamilySize)
	}
	if _, err := suppress.CompileRules(c.Suppress.Patterns); err != nil {
		return err
	}
	for _, p := range c.Exclude.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// GuaranteedMinTokens returns the shortest repeated token run the winnowing
// parameters are guaranteed to detect.
func (c *Config) GuaranteedMinTokens() int {
	return c.Fingerprint.KGramSize + c.Fingerprint.WindowSize - 1
}

// Package config loads gtt settings from YAML files and GTT_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for gtt
type Config struct {
	// Engine limits
	CycleBound      int `yaml:"cycle_bound" env:"GTT_CYCLE_BOUND"`
	MaxCallDepth    int `yaml:"max_call_depth" env:"GTT_MAX_CALL_DEPTH"`
	MaxNestedTraces int `yaml:"max_nested_traces" env:"GTT_MAX_NESTED_TRACES"`

	// Debug prints every visited trace node
	Debug bool `yaml:"debug" env:"GTT_DEBUG"`

	// Logging
	LogLevel string `yaml:"log_level" env:"GTT_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"GTT_LOG_JSON"`

	// Project scanning
	Extensions []string `yaml:"extensions" env:"GTT_EXTENSIONS"`
	Exclude    []string `yaml:"exclude" env:"GTT_EXCLUDE"`
	Rules      []string `yaml:"rules" env:"GTT_RULES"`
	Workers    int      `yaml:"workers" env:"GTT_WORKERS"`

	// Caching
	CacheFile      string `yaml:"cache_file" env:"GTT_CACHE_FILE"`
	ParseCacheSize int    `yaml:"parse_cache_size" env:"GTT_PARSE_CACHE_SIZE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CycleBound:      1,
		MaxCallDepth:    32,
		MaxNestedTraces: 8,
		Debug:           false,
		LogLevel:        "info",
		LogJSON:         false,
		Extensions:      []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"},
		Exclude:         []string{"**/*.min.js", "**/*.d.ts"},
		Rules:           nil,
		Workers:         4,
		CacheFile:       ".gtt/resolve.cache",
		ParseCacheSize:  512,
	}
}

// GlobalConfigPath returns the global config file path (~/.gtt/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gtt", "config.yaml")
	}
	return filepath.Join(home, ".gtt", "config.yaml")
}

// ProjectConfigPath returns the project-level config file path (./.gtt/config.yaml)
func ProjectConfigPath() string {
	return filepath.Join(".gtt", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gtt/config.yaml)
// 3. Global config (~/.gtt/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		if err := mergeFile(cfg, path, false); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := mergeFile(cfg, path, true); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML document at path onto cfg. Missing files are
// skipped unless required is set.
func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GTT_CYCLE_BOUND"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CycleBound = i
		}
	}
	if v := os.Getenv("GTT_MAX_CALL_DEPTH"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxCallDepth = i
		}
	}
	if v := os.Getenv("GTT_MAX_NESTED_TRACES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxNestedTraces = i
		}
	}
	if v := os.Getenv("GTT_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("GTT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GTT_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("GTT_EXTENSIONS"); v != "" {
		cfg.Extensions = parseList(v)
	}
	if v := os.Getenv("GTT_EXCLUDE"); v != "" {
		cfg.Exclude = parseList(v)
	}
	if v := os.Getenv("GTT_RULES"); v != "" {
		cfg.Rules = parseList(v)
	}
	if v := os.Getenv("GTT_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("GTT_CACHE_FILE"); v != "" {
		cfg.CacheFile = v
	}
	if v := os.Getenv("GTT_PARSE_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.ParseCacheSize = i
		}
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.CycleBound < 1 {
		return fmt.Errorf("cycle_bound must be at least 1")
	}
	if c.MaxCallDepth < 1 {
		return fmt.Errorf("max_call_depth must be positive")
	}
	if c.MaxNestedTraces < 0 {
		return fmt.Errorf("max_nested_traces must be non-negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.ParseCacheSize < 0 {
		return fmt.Errorf("parse_cache_size must be non-negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn or error)", c.LogLevel)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}
	return nil
}

// RuleEnabled reports whether the rule with id should run. An empty rule
// list enables every rule.
func (c *Config) RuleEnabled(id string) bool {
	if len(c.Rules) == 0 {
		return true
	}
	for _, r := range c.Rules {
		if r == id {
			return true
		}
	}
	return false
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// parseList splits a comma separated environment value.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

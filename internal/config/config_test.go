package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"CycleBound", cfg.CycleBound, 1},
		{"MaxCallDepth", cfg.MaxCallDepth, 32},
		{"MaxNestedTraces", cfg.MaxNestedTraces, 8},
		{"Debug", cfg.Debug, false},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Workers", cfg.Workers, 4},
		{"ParseCacheSize", cfg.ParseCacheSize, 512},
		{"CacheFile", cfg.CacheFile, ".gtt/resolve.cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig() should be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero cycle bound", func(c *Config) { c.CycleBound = 0 }, "cycle_bound"},
		{"zero call depth", func(c *Config) { c.MaxCallDepth = 0 }, "max_call_depth"},
		{"negative nested", func(c *Config) { c.MaxNestedTraces = -1 }, "max_nested_traces"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad extension", func(c *Config) { c.Extensions = []string{"js"} }, "extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `cycle_bound: 2
max_call_depth: 10
debug: true
rules:
  - xss
  - sqli
exclude:
  - "vendor/**"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.CycleBound)
	assert.Equal(t, 10, cfg.MaxCallDepth)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"xss", "sqli"}, cfg.Rules)
	assert.Equal(t, []string{"vendor/**"}, cfg.Exclude)
	// Untouched fields keep their defaults.
	assert.Equal(t, 8, cfg.MaxNestedTraces)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cycle_bound: [1"), 0644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("workers: 0"), 0644))
	_, err = LoadFromFile(invalid)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GTT_CYCLE_BOUND", "3")
	t.Setenv("GTT_DEBUG", "yes")
	t.Setenv("GTT_RULES", "xss, path-traversal")
	t.Setenv("GTT_WORKERS", "not-a-number")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	assert.Equal(t, 3, cfg.CycleBound)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"xss", "path-traversal"}, cfg.Rules)
	assert.Equal(t, 4, cfg.Workers)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".gtt", "config.yaml")
	cfg := DefaultConfig()
	cfg.Rules = []string{"weak-cipher"}
	cfg.CycleBound = 2
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRuleEnabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.RuleEnabled("xss"))

	cfg.Rules = []string{"sqli"}
	assert.True(t, cfg.RuleEnabled("sqli"))
	assert.False(t, cfg.RuleEnabled("xss"))
}

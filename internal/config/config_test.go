package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .chalk/config.yml and .chalk/config.yaml
// - Load() merges config file with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML
// - Load() returns error for invalid configuration values
// - Validate() rejects bad crate types, editions, timeouts, formats, cache sizes and log levels
// - Validate() reports every problem at once
// - Pipeline builders carry the settings into the driver and extractor

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, Dir)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.True(t, cfg.Toolchain.Probe)
	assert.True(t, cfg.Toolchain.Required)
	assert.Empty(t, cfg.Toolchain.Sysroot)

	assert.True(t, cfg.Check.Enabled)
	assert.Equal(t, "lib", cfg.Check.CrateType)
	assert.Equal(t, "2021", cfg.Check.Edition)
	assert.Equal(t, 120, cfg.Check.TimeoutSeconds)

	assert.True(t, cfg.Extract.ResolvePaths)
	assert.True(t, cfg.Extract.RecurseModules)
	assert.True(t, cfg.Extract.RecurseBodies)

	assert.Equal(t, []string{"**/*.rs"}, cfg.Discovery.Include)
	assert.Contains(t, cfg.Discovery.Ignore, "target/**")
	assert.True(t, cfg.Discovery.RespectGitignore)

	assert.Equal(t, "text", cfg.Output.Format)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
	assert.Empty(t, cfg.Storage.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Check.CrateType, cfg.Check.CrateType)
	assert.Equal(t, defaults.Check.Edition, cfg.Check.Edition)
	assert.Equal(t, defaults.Check.TimeoutSeconds, cfg.Check.TimeoutSeconds)
	assert.Empty(t, cfg.Check.ExtraArgs)
	assert.Equal(t, defaults.Extract, cfg.Extract)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Discovery.Include, cfg.Discovery.Include)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, name, `
toolchain:
  sysroot: /opt/rust
  required: false
check:
  edition: "2018"
  extra_args: ["--cfg", "test"]
output:
  format: yaml
storage:
  db_path: runs.db
`)

			cfg, err := NewLoader(dir).Load()
			require.NoError(t, err)

			assert.Equal(t, "/opt/rust", cfg.Toolchain.Sysroot)
			assert.False(t, cfg.Toolchain.Required)
			assert.Equal(t, "2018", cfg.Check.Edition)
			assert.Equal(t, []string{"--cfg", "test"}, cfg.Check.ExtraArgs)
			assert.Equal(t, "yaml", cfg.Output.Format)
			assert.Equal(t, "runs.db", cfg.Storage.DBPath)

			// Untouched keys keep their defaults.
			assert.Equal(t, "lib", cfg.Check.CrateType)
			assert.True(t, cfg.Toolchain.Probe)
			assert.True(t, cfg.Extract.ResolvePaths)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
output:
  format: yaml
check:
  edition: "2018"
`)

	t.Setenv("CHALK_OUTPUT_FORMAT", "json")
	t.Setenv("CHALK_TOOLCHAIN_SYSROOT", "/env/sysroot")
	t.Setenv("CHALK_EXTRACT_RESOLVE_PATHS", "false")
	t.Setenv("CHALK_STORAGE_DB_PATH", "/tmp/chalk.db")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "/env/sysroot", cfg.Toolchain.Sysroot)
	assert.False(t, cfg.Extract.ResolvePaths)
	assert.Equal(t, "/tmp/chalk.db", cfg.Storage.DBPath)
	assert.Equal(t, "2018", cfg.Check.Edition)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "check: [unclosed")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
check:
  edition: "2030"
`)

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEdition)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"crate type", func(c *Config) { c.Check.CrateType = "dylib" }, ErrInvalidCrateType},
		{"edition", func(c *Config) { c.Check.Edition = "2030" }, ErrInvalidEdition},
		{"timeout", func(c *Config) { c.Check.TimeoutSeconds = -1 }, ErrInvalidTimeout},
		{"format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
		{"cache size", func(c *Config) { c.Cache.MaxEntries = 0 }, ErrInvalidCacheSettings},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
		{"include", func(c *Config) { c.Discovery.Include = nil }, ErrEmptyInclude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_DisabledCacheIgnoresSize(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.MaxEntries = 0
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Check.CrateType = "dylib"
	cfg.Output.Format = "xml"
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
	assert.ErrorIs(t, err, ErrInvalidCrateType)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestPipelineBuilders(t *testing.T) {
	cfg := Default()
	cfg.Toolchain.Sysroot = "/opt/rust"
	cfg.Toolchain.Required = false
	cfg.Check.Edition = "2018"
	cfg.Check.TimeoutSeconds = 5
	cfg.Extract.RecurseModules = false
	cfg.Extract.RecurseBodies = false
	cfg.Extract.ResolvePaths = false

	checker := cfg.Checker()
	require.NotNil(t, checker)
	assert.Equal(t, "2018", checker.Edition)
	assert.Equal(t, 5*time.Second, checker.Timeout)

	driver := cfg.Driver()
	assert.Equal(t, "/opt/rust", driver.Locator.Sysroot)
	assert.False(t, driver.SkipCheck)
	assert.False(t, driver.Lowerer.RecurseModules)
	assert.False(t, driver.Lowerer.RecurseBodies)

	e := cfg.Extractor()
	assert.False(t, e.RequireToolchain)
	assert.False(t, e.Options().ResolvePaths)

	cfg.Check.Enabled = false
	assert.Nil(t, cfg.Checker())
	assert.True(t, cfg.Driver().SkipCheck)

	assert.Equal(t, "info", cfg.LogOptions().Level)

	disc := cfg.DiscoveryOptions()
	assert.Equal(t, []string{"**/*.rs"}, disc.Include)
	assert.True(t, disc.RespectGitignore)
	disc.Include[0] = "changed"
	assert.Equal(t, "**/*.rs", cfg.Discovery.Include[0])
}

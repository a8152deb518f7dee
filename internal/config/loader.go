package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Dir is the per-project configuration directory.
const Dir = ".chalk"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CHALK_*)
// 2. Config file (.chalk/config.yml or .chalk/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, Dir))

	v.SetEnvPrefix("CHALK")
	v.AutomaticEnv()
	// CHALK_TOOLCHAIN_SYSROOT -> toolchain.sysroot
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only sees keys viper already knows about; bind the ones
	// without defaults explicitly.
	for _, key := range []string{
		"toolchain.sysroot",
		"toolchain.rustc",
		"storage.db_path",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults + env vars.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("toolchain.probe", defaults.Toolchain.Probe)
	v.SetDefault("toolchain.required", defaults.Toolchain.Required)

	v.SetDefault("check.enabled", defaults.Check.Enabled)
	v.SetDefault("check.crate_type", defaults.Check.CrateType)
	v.SetDefault("check.edition", defaults.Check.Edition)
	v.SetDefault("check.extra_args", defaults.Check.ExtraArgs)
	v.SetDefault("check.timeout_seconds", defaults.Check.TimeoutSeconds)

	v.SetDefault("extract.resolve_paths", defaults.Extract.ResolvePaths)
	v.SetDefault("extract.recurse_modules", defaults.Extract.RecurseModules)
	v.SetDefault("extract.recurse_bodies", defaults.Extract.RecurseBodies)

	v.SetDefault("discovery.include", defaults.Discovery.Include)
	v.SetDefault("discovery.ignore", defaults.Discovery.Ignore)
	v.SetDefault("discovery.respect_gitignore", defaults.Discovery.RespectGitignore)

	v.SetDefault("output.format", defaults.Output.Format)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.max_entries", defaults.Cache.MaxEntries)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.color", defaults.Log.Color)
	v.SetDefault("log.json", defaults.Log.JSON)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

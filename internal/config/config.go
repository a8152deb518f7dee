// Package config loads chalk-extract settings from .chalk/config.yml with
// CHALK_* environment overrides.
package config

// Config is the complete chalk-extract configuration.
type Config struct {
	Toolchain ToolchainConfig `yaml:"toolchain" mapstructure:"toolchain"`
	Check     CheckConfig     `yaml:"check" mapstructure:"check"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ToolchainConfig says where rustc lives.
type ToolchainConfig struct {
	Sysroot  string `yaml:"sysroot" mapstructure:"sysroot"`   // explicit sysroot, wins over the environment
	Rustc    string `yaml:"rustc" mapstructure:"rustc"`       // compiler binary, defaults to <sysroot>/bin/rustc
	Probe    bool   `yaml:"probe" mapstructure:"probe"`       // fall back to `rustc --print sysroot`
	Required bool   `yaml:"required" mapstructure:"required"` // fail the run when no toolchain resolves
}

// CheckConfig controls the rustc type-check pass.
type CheckConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	CrateType      string   `yaml:"crate_type" mapstructure:"crate_type"` // lib, bin or rlib
	Edition        string   `yaml:"edition" mapstructure:"edition"`
	ExtraArgs      []string `yaml:"extra_args" mapstructure:"extra_args"`
	TimeoutSeconds int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 means no timeout
}

// ExtractConfig tunes projection.
type ExtractConfig struct {
	ResolvePaths   bool `yaml:"resolve_paths" mapstructure:"resolve_paths"`
	RecurseModules bool `yaml:"recurse_modules" mapstructure:"recurse_modules"`
	RecurseBodies  bool `yaml:"recurse_bodies" mapstructure:"recurse_bodies"`
}

// DiscoveryConfig selects files when a directory is given.
type DiscoveryConfig struct {
	Include          []string `yaml:"include" mapstructure:"include"`
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"`
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
}

// OutputConfig selects the rendering.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text, json or yaml
}

// CacheConfig sizes the in-memory program cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	MaxEntries int  `yaml:"max_entries" mapstructure:"max_entries"`
}

// StorageConfig locates the run database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // empty disables persistence
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Color bool   `yaml:"color" mapstructure:"color"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Probe:    true,
			Required: true,
		},
		Check: CheckConfig{
			Enabled:        true,
			CrateType:      "lib",
			Edition:        "2021",
			ExtraArgs:      []string{},
			TimeoutSeconds: 120,
		},
		Extract: ExtractConfig{
			ResolvePaths:   true,
			RecurseModules: true,
			RecurseBodies:  true,
		},
		Discovery: DiscoveryConfig{
			Include: []string{"**/*.rs"},
			Ignore: []string{
				"target/**",
				".git/**",
			},
			RespectGitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

package config

import (
	"time"

	"github.com/mvp-joe/chalk-extract/internal/discovery"
	"github.com/mvp-joe/chalk-extract/internal/extract"
	"github.com/mvp-joe/chalk-extract/internal/logging"
	"github.com/mvp-joe/chalk-extract/internal/rustc"
)

// Locator builds the toolchain locator.
func (c *Config) Locator() *rustc.Locator {
	return &rustc.Locator{
		Sysroot: c.Toolchain.Sysroot,
		Rustc:   c.Toolchain.Rustc,
		Probe:   c.Toolchain.Probe,
	}
}

// Checker builds the rustc checker, or nil when checking is disabled.
func (c *Config) Checker() *rustc.Checker {
	if !c.Check.Enabled {
		return nil
	}
	return &rustc.Checker{
		CrateType: c.Check.CrateType,
		Edition:   c.Check.Edition,
		ExtraArgs: append([]string(nil), c.Check.ExtraArgs...),
		Timeout:   time.Duration(c.Check.TimeoutSeconds) * time.Second,
	}
}

// Driver wires the host compiler stages.
func (c *Config) Driver() *rustc.Driver {
	lowerer := rustc.NewLowerer()
	lowerer.RecurseModules = c.Extract.RecurseModules
	lowerer.RecurseBodies = c.Extract.RecurseBodies
	return rustc.NewDriver(c.Locator(), c.Checker(), lowerer)
}

// ExtractOptions returns the projection options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{ResolvePaths: c.Extract.ResolvePaths}
}

// Extractor builds the full pipeline.
func (c *Config) Extractor() *extract.Extractor {
	e := extract.New(c.Driver(), c.ExtractOptions())
	e.RequireToolchain = c.Toolchain.Required
	return e
}

// DiscoveryOptions returns the file selection settings.
func (c *Config) DiscoveryOptions() discovery.Options {
	return discovery.Options{
		Include:          append([]string(nil), c.Discovery.Include...),
		Ignore:           append([]string(nil), c.Discovery.Ignore...),
		RespectGitignore: c.Discovery.RespectGitignore,
	}
}

// LogOptions returns the logger settings.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level: c.Log.Level,
		Color: c.Log.Color,
		JSON:  c.Log.JSON,
	}
}

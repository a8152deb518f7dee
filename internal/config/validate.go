package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidCrateType indicates an unsupported --crate-type
	ErrInvalidCrateType = errors.New("invalid crate type")

	// ErrInvalidEdition indicates an unsupported --edition
	ErrInvalidEdition = errors.New("invalid edition")

	// ErrInvalidTimeout indicates a negative check timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidFormat indicates an unknown output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrEmptyInclude indicates discovery has nothing to match
	ErrEmptyInclude = errors.New("empty include patterns")
)

var (
	crateTypes = map[string]bool{"lib": true, "bin": true, "rlib": true}
	editions   = map[string]bool{"2015": true, "2018": true, "2021": true, "2024": true}
	formats    = map[string]bool{"text": true, "json": true, "yaml": true}
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
)

// Validate checks that the configuration is valid and complete. Every
// problem is reported, not just the first.
func Validate(cfg *Config) error {
	var result *multierror.Error

	result = multierror.Append(result, validateCheck(&cfg.Check)...)
	result = multierror.Append(result, validateDiscovery(&cfg.Discovery)...)

	if !formats[strings.ToLower(cfg.Output.Format)] {
		result = multierror.Append(result, fmt.Errorf("%w: must be text, json or yaml, got '%s'", ErrInvalidFormat, cfg.Output.Format))
	}

	if cfg.Cache.Enabled && cfg.Cache.MaxEntries <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: max_entries must be positive when the cache is enabled, got %d", ErrInvalidCacheSettings, cfg.Cache.MaxEntries))
	}

	if cfg.Log.Level != "" && !logLevels[strings.ToLower(cfg.Log.Level)] {
		result = multierror.Append(result, fmt.Errorf("%w: '%s'", ErrInvalidLogLevel, cfg.Log.Level))
	}

	return result.ErrorOrNil()
}

func validateCheck(cfg *CheckConfig) []error {
	var errs []error

	if !crateTypes[cfg.CrateType] {
		errs = append(errs, fmt.Errorf("%w: must be lib, bin or rlib, got '%s'", ErrInvalidCrateType, cfg.CrateType))
	}

	if !editions[cfg.Edition] {
		errs = append(errs, fmt.Errorf("%w: must be 2015, 2018, 2021 or 2024, got '%s'", ErrInvalidEdition, cfg.Edition))
	}

	if cfg.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds cannot be negative, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	return errs
}

func validateDiscovery(cfg *DiscoveryConfig) []error {
	if len(cfg.Include) == 0 {
		return []error{fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude)}
	}
	return nil
}

// Package rustc drives the Rust compiler far enough to know a file is well
// typed, then lowers the file's items into the hir item tree.
package rustc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrToolchainNotFound is returned when no usable sysroot can be resolved.
var ErrToolchainNotFound = errors.New("rust toolchain not found")

// Toolchain is a resolved Rust installation.
type Toolchain struct {
	// Sysroot is passed to rustc as --sysroot.
	Sysroot string
	// Rustc is the compiler binary.
	Rustc string
	// Source says how the sysroot was found (e.g. "RUSTUP_HOME", "config", "probe").
	Source string
}

// IsZero reports whether no toolchain was resolved.
func (t Toolchain) IsZero() bool {
	return t.Sysroot == ""
}

// Locator resolves a toolchain from explicit settings and the environment.
//
// Resolution order:
//  1. Sysroot (explicit configuration)
//  2. <home>/toolchains/<toolchain>, where home is RUSTUP_HOME or else
//     MULTIRUST_HOME and toolchain is RUSTUP_TOOLCHAIN or else
//     MULTIRUST_TOOLCHAIN. The two fall back independently.
//  3. RUST_SYSROOT
//  4. `rustc --print sysroot` when Probe is set
type Locator struct {
	Sysroot string
	Rustc   string
	Probe   bool
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// probeSysroot asks the rustc on PATH for its sysroot.
// Declared as a variable to allow mocking in tests.
var probeSysroot = func(ctx context.Context, rustcPath string) (string, error) {
	if rustcPath == "" {
		p, err := exec.LookPath("rustc")
		if err != nil {
			return "", err
		}
		rustcPath = p
	}

	cmd := exec.CommandContext(ctx, rustcPath, "--print", "sysroot")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run %s --print sysroot: %w", rustcPath, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Locate resolves the toolchain. It fails with ErrToolchainNotFound when no
// candidate names an existing directory.
func (l *Locator) Locate(ctx context.Context) (Toolchain, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	type candidate struct {
		sysroot string
		source  string
	}
	var candidates []candidate

	if l.Sysroot != "" {
		candidates = append(candidates, candidate{l.Sysroot, "config"})
	}
	homeVar, home := firstEnv(getenv, "RUSTUP_HOME", "MULTIRUST_HOME")
	_, tc := firstEnv(getenv, "RUSTUP_TOOLCHAIN", "MULTIRUST_TOOLCHAIN")
	if home != "" && tc != "" {
		candidates = append(candidates, candidate{filepath.Join(home, "toolchains", tc), homeVar})
	}
	if root := getenv("RUST_SYSROOT"); root != "" {
		candidates = append(candidates, candidate{root, "RUST_SYSROOT"})
	}

	var tried []string
	for _, c := range candidates {
		if isDir(c.sysroot) {
			return l.toolchain(c.sysroot, c.source), nil
		}
		tried = append(tried, fmt.Sprintf("%s=%s", c.source, c.sysroot))
	}

	if l.Probe {
		root, err := probeSysroot(ctx, l.Rustc)
		if err == nil && isDir(root) {
			return l.toolchain(root, "probe"), nil
		}
		if err != nil {
			tried = append(tried, fmt.Sprintf("probe: %v", err))
		}
	}

	if len(tried) == 0 {
		return Toolchain{}, fmt.Errorf("%w: set RUST_SYSROOT or use rustup or multirust", ErrToolchainNotFound)
	}
	return Toolchain{}, fmt.Errorf("%w: tried %s", ErrToolchainNotFound, strings.Join(tried, ", "))
}

// firstEnv returns the first of keys that is set, with its value.
func firstEnv(getenv func(string) string, keys ...string) (string, string) {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return k, v
		}
	}
	return "", ""
}

func (l *Locator) toolchain(sysroot, source string) Toolchain {
	rustc := l.Rustc
	if rustc == "" {
		rustc = filepath.Join(sysroot, "bin", "rustc")
		if runtime.GOOS == "windows" {
			rustc += ".exe"
		}
	}
	return Toolchain{Sysroot: sysroot, Rustc: rustc, Source: source}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

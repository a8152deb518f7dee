package rustc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Locator:
// - RUSTUP_HOME + RUSTUP_TOOLCHAIN resolves to <home>/toolchains/<toolchain>
// - MULTIRUST_* is used when rustup variables are absent
// - Home and toolchain fall back independently, so RUSTUP_HOME pairs with MULTIRUST_TOOLCHAIN
// - RUST_SYSROOT is the last environment fallback
// - Explicit sysroot configuration wins over the environment
// - Candidates naming missing directories are skipped
// - Nothing resolvable yields ErrToolchainNotFound
// - The probe is consulted only when enabled
// - An explicit rustc path overrides <sysroot>/bin/rustc

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func makeToolchainDir(t *testing.T, home, name string) string {
	t.Helper()
	dir := filepath.Join(home, "toolchains", name)
	mkdirAll(t, dir)
	return dir
}

func TestLocate_Rustup(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	want := makeToolchainDir(t, home, "stable-x86_64-unknown-linux-gnu")

	l := &Locator{Getenv: envMap(map[string]string{
		"RUSTUP_HOME":      home,
		"RUSTUP_TOOLCHAIN": "stable-x86_64-unknown-linux-gnu",
	})}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, tc.Sysroot)
	assert.Equal(t, "RUSTUP_HOME", tc.Source)
	assert.Equal(t, filepath.Join(want, "bin", "rustc"), tc.Rustc)
}

func TestLocate_Multirust(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	want := makeToolchainDir(t, home, "nightly")

	l := &Locator{Getenv: envMap(map[string]string{
		"MULTIRUST_HOME":      home,
		"MULTIRUST_TOOLCHAIN": "nightly",
	})}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, tc.Sysroot)
	assert.Equal(t, "MULTIRUST_HOME", tc.Source)
}

func TestLocate_MixedRustupMultirust(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	want := makeToolchainDir(t, home, "beta")

	l := &Locator{Getenv: envMap(map[string]string{
		"RUSTUP_HOME":         home,
		"MULTIRUST_TOOLCHAIN": "beta",
	})}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, tc.Sysroot)
	assert.Equal(t, "RUSTUP_HOME", tc.Source)

	other := t.TempDir()
	want = makeToolchainDir(t, other, "stable")
	l = &Locator{Getenv: envMap(map[string]string{
		"MULTIRUST_HOME":   other,
		"RUSTUP_TOOLCHAIN": "stable",
	})}

	tc, err = l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, tc.Sysroot)
	assert.Equal(t, "MULTIRUST_HOME", tc.Source)
}

func TestLocate_RustSysroot(t *testing.T) {
	t.Parallel()

	// RUSTUP_TOOLCHAIN is unset, so rustup is not a candidate.
	root := t.TempDir()
	l := &Locator{Getenv: envMap(map[string]string{
		"RUSTUP_HOME":  root,
		"RUST_SYSROOT": root,
	})}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, tc.Sysroot)
	assert.Equal(t, "RUST_SYSROOT", tc.Source)
}

func TestLocate_ConfigWins(t *testing.T) {
	t.Parallel()

	configured := t.TempDir()
	env := t.TempDir()

	l := &Locator{
		Sysroot: configured,
		Rustc:   "/opt/rust/bin/rustc",
		Getenv:  envMap(map[string]string{"RUST_SYSROOT": env}),
	}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, configured, tc.Sysroot)
	assert.Equal(t, "config", tc.Source)
	assert.Equal(t, "/opt/rust/bin/rustc", tc.Rustc)
}

func TestLocate_SkipsMissingDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l := &Locator{Getenv: envMap(map[string]string{
		"RUSTUP_HOME":      filepath.Join(root, "does-not-exist"),
		"RUSTUP_TOOLCHAIN": "stable",
		"RUST_SYSROOT":     root,
	})}

	tc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, root, tc.Sysroot)
}

func TestLocate_NotFound(t *testing.T) {
	t.Parallel()

	l := &Locator{Getenv: envMap(nil)}

	tc, err := l.Locate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolchainNotFound))
	assert.True(t, tc.IsZero())
}

func TestLocate_NotFoundListsCandidates(t *testing.T) {
	t.Parallel()

	l := &Locator{Getenv: envMap(map[string]string{"RUST_SYSROOT": "/nonexistent/sysroot"})}

	_, err := l.Locate(context.Background())
	require.ErrorIs(t, err, ErrToolchainNotFound)
	assert.Contains(t, err.Error(), "RUST_SYSROOT=/nonexistent/sysroot")
}

// Not parallel: swaps the package-level probe.
func TestLocate_Probe(t *testing.T) {
	root := t.TempDir()
	calls := 0
	original := probeSysroot
	probeSysroot = func(ctx context.Context, rustcPath string) (string, error) {
		calls++
		return root, nil
	}
	t.Cleanup(func() { probeSysroot = original })

	disabled := &Locator{Getenv: envMap(nil)}
	_, err := disabled.Locate(context.Background())
	require.ErrorIs(t, err, ErrToolchainNotFound)
	assert.Equal(t, 0, calls)

	enabled := &Locator{Probe: true, Getenv: envMap(nil)}
	tc, err := enabled.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, root, tc.Sysroot)
	assert.Equal(t, "probe", tc.Source)
}

// Not parallel: swaps the package-level probe.
func TestLocate_ProbeFailure(t *testing.T) {
	original := probeSysroot
	probeSysroot = func(ctx context.Context, rustcPath string) (string, error) {
		return "", errors.New("rustc: not found")
	}
	t.Cleanup(func() { probeSysroot = original })

	l := &Locator{Probe: true, Getenv: envMap(nil)}
	_, err := l.Locate(context.Background())
	require.ErrorIs(t, err, ErrToolchainNotFound)
	assert.Contains(t, err.Error(), "rustc: not found")
}

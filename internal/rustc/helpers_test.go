package rustc

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func mkdirAll(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
}

func readFixture(t *testing.T, name string) (string, []byte) {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", "rust", name)
	source, err := os.ReadFile(path)
	require.NoError(t, err)
	return path, source
}

// fakeRustc writes a shell script standing in for rustc. It prints stderr to
// standard error and exits with code.
func fakeRustc(t *testing.T, stderr string, code int) Toolchain {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake rustc needs a POSIX shell")
	}

	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	mkdirAll(t, bin)

	payload := filepath.Join(root, "stderr.txt")
	require.NoError(t, os.WriteFile(payload, []byte(stderr), 0644))

	argsFile := filepath.Join(root, "args.txt")
	script := "#!/bin/sh\n" +
		"printf '%s\\n' \"$@\" > '" + argsFile + "'\n" +
		"cat '" + payload + "' >&2\n" +
		"exit " + strconv.Itoa(code) + "\n"
	rustc := filepath.Join(bin, "rustc")
	require.NoError(t, os.WriteFile(rustc, []byte(script), 0755))

	return Toolchain{Sysroot: root, Rustc: rustc, Source: "test"}
}

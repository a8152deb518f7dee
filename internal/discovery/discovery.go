// Package discovery expands command line paths into the Rust files to extract.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// Options selects files inside directories. Explicit file arguments are
// never filtered.
type Options struct {
	Include          []string
	Ignore           []string
	RespectGitignore bool
}

// DefaultOptions matches every .rs file outside build output.
func DefaultOptions() Options {
	return Options{
		Include:          []string{"**/*.rs"},
		Ignore:           []string{"target/**"},
		RespectGitignore: true,
	}
}

var skipDirs = map[string]struct{}{
	"target":       {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	".chalk":       {},
	"node_modules": {},
}

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discover returns the files named by paths: files as given, directories
// walked and filtered. The result is deduplicated and sorted.
func Discover(paths []string, opts Options) ([]string, error) {
	include, err := compileAll(opts.Include)
	if err != nil {
		return nil, err
	}
	ignored, err := compileAll(opts.Ignore)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}

		found, err := walk(p, include, ignored, opts.RespectGitignore)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

func walk(root string, include, ignored []compiledPattern, respectGitignore bool) ([]string, error) {
	var gi *ignore.GitIgnore
	if respectGitignore {
		gi = loadGitignore(root)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			if matchesAny(rel+"/**", ignored) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if matchesAny(rel, ignored) {
			return nil
		}
		if matchesAny(rel, include) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// matchesAny checks path against patterns. A root-level path also matches
// patterns that start with **/, so "**/*.rs" covers "lib.rs".
func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	if strings.Contains(path, "/") {
		return false
	}
	for _, cp := range patterns {
		if !strings.HasPrefix(cp.pattern, "**/") {
			continue
		}
		if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

package cache

import (
	"context"
	"fmt"
	"os"

	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// Extractor produces a program for a file. *extract.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, path string) (*ast.Program, error)
}

// CachedExtractor serves repeat extractions of unchanged files from memory.
// Failed runs are never cached.
type CachedExtractor struct {
	inner Extractor
	cache *ProgramCache
}

// NewCachedExtractor wraps inner with cache.
func NewCachedExtractor(inner Extractor, cache *ProgramCache) *CachedExtractor {
	return &CachedExtractor{inner: inner, cache: cache}
}

// Extract returns the cached program for path's current content, running
// the inner extractor on a miss. The inner extractor reads the file again,
// so a result is cached only when the content is unchanged afterwards.
func (c *CachedExtractor) Extract(ctx context.Context, path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	key := Key(path, source)

	if prog, ok := c.cache.Get(key); ok {
		slogctx.Debug(ctx, "program cache hit", "file", path)
		return prog, nil
	}

	prog, err := c.inner.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	after, err := os.ReadFile(path)
	if err != nil || Key(path, after) != key {
		slogctx.Debug(ctx, "file changed during extraction, not caching", "file", path)
		return prog, nil
	}
	c.cache.Set(key, prog)
	return prog, nil
}

// Cache exposes the underlying cache.
func (c *CachedExtractor) Cache() *ProgramCache {
	return c.cache
}

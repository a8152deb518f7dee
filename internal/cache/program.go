package cache

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// ProgramCache is a bounded, concurrency-safe map from Key to program.
// Cached programs are shared between callers and must not be mutated.
type ProgramCache struct {
	c otter.Cache[string, *ast.Program]
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewProgramCache returns a cache holding at most maxEntries programs.
func NewProgramCache(maxEntries int) (*ProgramCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", maxEntries)
	}
	c, err := otter.MustBuilder[string, *ast.Program](maxEntries).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build program cache: %w", err)
	}
	return &ProgramCache{c: c}, nil
}

// Get returns the program stored under key.
func (p *ProgramCache) Get(key string) (*ast.Program, bool) {
	return p.c.Get(key)
}

// Set stores prog under key.
func (p *ProgramCache) Set(key string, prog *ast.Program) {
	p.c.Set(key, prog)
}

// Delete drops key.
func (p *ProgramCache) Delete(key string) {
	p.c.Delete(key)
}

// Stats returns hit and miss counts.
func (p *ProgramCache) Stats() Stats {
	s := p.c.Stats()
	return Stats{Hits: s.Hits(), Misses: s.Misses(), Size: p.c.Size()}
}

// Close releases the cache's background resources.
func (p *ProgramCache) Close() {
	p.c.Close()
}

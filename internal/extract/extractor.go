// Package extract turns a checked Rust file into a solver program: one
// record definition per declared struct, preceded by the UnknownType sentinel.
package extract

import (
	"context"
	"errors"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/ast"
	"github.com/mvp-joe/chalk-extract/internal/hir"
	"github.com/mvp-joe/chalk-extract/internal/rustc"
)

// ErrNoProgram is returned when a run fails before a program exists.
var ErrNoProgram = errors.New("no program produced")

// Analyzer is the host compiler as the extractor sees it.
// *rustc.Driver satisfies it.
type Analyzer interface {
	Locate(ctx context.Context) (rustc.Toolchain, error)
	Analyze(ctx context.Context, tc rustc.Toolchain, file string) (*hir.Crate, error)
}

// Result is a successful run.
type Result struct {
	File      string
	Toolchain rustc.Toolchain
	Program   *ast.Program
	Stats     Stats
}

// Extractor runs the pipeline. Each call owns its accumulator, so one
// Extractor can serve concurrent callers.
type Extractor struct {
	analyzer Analyzer
	opts     Options
	// RequireToolchain makes a failed toolchain lookup fatal. When false the
	// run continues without one, which only succeeds if checking is off.
	RequireToolchain bool
}

// New returns an extractor that requires a toolchain.
func New(analyzer Analyzer, opts Options) *Extractor {
	return &Extractor{
		analyzer:         analyzer,
		opts:             opts,
		RequireToolchain: true,
	}
}

// Options returns the projection options.
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract runs the pipeline on path and returns its program.
func (e *Extractor) Extract(ctx context.Context, path string) (*ast.Program, error) {
	res, err := e.Run(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// Run is Extract with the toolchain and counts attached.
func (e *Extractor) Run(ctx context.Context, path string) (*Result, error) {
	ctx = slogctx.Append(ctx, "file", path)

	tc, err := e.analyzer.Locate(ctx)
	if err != nil {
		if e.RequireToolchain {
			return nil, fmt.Errorf("%w: %w", ErrNoProgram, err)
		}
		slogctx.Warn(ctx, "continuing without toolchain", "error", err)
		tc = rustc.Toolchain{}
	} else {
		slogctx.Debug(ctx, "toolchain located", "sysroot", tc.Sysroot, "source", tc.Source)
	}

	crate, err := e.analyzer.Analyze(ctx, tc, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProgram, err)
	}

	prog, stats := e.extractCrate(crate)
	slogctx.Info(ctx, "extracted program",
		"items", len(prog.Items),
		"structs", stats.Structs,
		"fields", stats.Fields,
		"unknown_types", stats.Unknown,
		"deferred", stats.Deferred,
		"ignored", stats.Ignored)

	return &Result{
		File:      path,
		Toolchain: tc,
		Program:   prog,
		Stats:     stats,
	}, nil
}

// ExtractCrate projects an already analyzed crate. It cannot fail.
func (e *Extractor) ExtractCrate(ctx context.Context, crate *hir.Crate) *ast.Program {
	prog, stats := e.extractCrate(crate)
	slogctx.Debug(ctx, "extracted crate", "items", len(prog.Items), "deferred", stats.Deferred, "ignored", stats.Ignored)
	return prog
}

func (e *Extractor) extractCrate(crate *hir.Crate) (*ast.Program, Stats) {
	var acc Accumulator
	acc.Append(ast.SentinelItem())

	v := NewVisitor(&acc, e.opts)
	if crate != nil {
		for _, item := range crate.Items {
			v.VisitItem(item)
		}
	}
	return acc.Drain(), v.Stats()
}

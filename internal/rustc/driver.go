package rustc

import (
	"context"
	"fmt"
	"os"

	slogctx "github.com/veqryn/slog-context"

	"github.com/mvp-joe/chalk-extract/internal/hir"
)

// Driver runs the host compiler stages the extractor needs: locate the
// toolchain, type-check the file, and enumerate its items.
type Driver struct {
	Locator *Locator
	Checker *Checker
	Lowerer *Lowerer
	// SkipCheck lowers the file without running rustc. Syntax errors are
	// still fatal.
	SkipCheck bool
}

// NewDriver wires a driver from its parts. A nil checker disables checking.
func NewDriver(locator *Locator, checker *Checker, lowerer *Lowerer) *Driver {
	if lowerer == nil {
		lowerer = NewLowerer()
	}
	return &Driver{
		Locator:   locator,
		Checker:   checker,
		Lowerer:   lowerer,
		SkipCheck: checker == nil,
	}
}

// Locate resolves the toolchain.
func (d *Driver) Locate(ctx context.Context) (Toolchain, error) {
	if d.Locator == nil {
		return Toolchain{}, fmt.Errorf("%w: no locator configured", ErrToolchainNotFound)
	}
	return d.Locator.Locate(ctx)
}

// Analyze checks file with tc and returns its item tree. Compilation errors
// are returned as *CompileError and no crate is produced.
func (d *Driver) Analyze(ctx context.Context, tc Toolchain, file string) (*hir.Crate, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	if !d.SkipCheck && d.Checker != nil {
		if tc.IsZero() {
			return nil, fmt.Errorf("%w: cannot check %s", ErrToolchainNotFound, file)
		}
		diags, err := d.Checker.Check(ctx, tc, file)
		if err != nil {
			return nil, err
		}
		slogctx.Debug(ctx, "rustc check passed", "file", file, "diagnostics", len(diags))
	}

	crate, err := d.Lowerer.Lower(ctx, file, source)
	if err != nil {
		return nil, err
	}
	slogctx.Debug(ctx, "lowered item tree", "file", file, "items", len(crate.Items))
	return crate, nil
}

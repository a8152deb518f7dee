package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// ProgramWriter persists extraction runs.
type ProgramWriter struct {
	db  *sql.DB
	now func() time.Time
}

// NewProgramWriter creates a ProgramWriter instance.
// DB must have schema already created via CreateSchema().
func NewProgramWriter(db *sql.DB) *ProgramWriter {
	return &ProgramWriter{db: db, now: time.Now}
}

// WriteRun stores prog as a new run for file and returns the run id. The run
// and all of its rows are written in one transaction.
func (w *ProgramWriter) WriteRun(ctx context.Context, file, contentHash string, prog *ast.Program) (string, error) {
	if prog == nil {
		return "", fmt.Errorf("cannot write nil program for %s", file)
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	runID := uuid.NewString()
	_, err = sq.Insert("runs").
		Columns("id", "file_path", "content_hash", "item_count", "extracted_at").
		Values(runID, file, contentHash, len(prog.Items), w.now().UTC().Format(time.RFC3339Nano)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to write run for %s: %w", file, err)
	}

	for i, item := range prog.Items {
		if err := writeItem(ctx, tx, runID, i, item); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

func writeItem(ctx context.Context, tx *sql.Tx, runID string, ordinal int, item ast.Item) error {
	name := item.ItemName()
	_, err := sq.Insert("items").
		Columns("run_id", "ordinal", "kind", "name", "span_lo", "span_hi").
		Values(runID, ordinal, item.Kind(), name.Name(), name.Span.Lo, name.Span.Hi).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to write item %d (%s): %w", ordinal, name.Name(), err)
	}

	s, ok := item.(*ast.StructDefn)
	if !ok {
		return nil
	}
	for j, f := range s.Fields {
		kind, tyName, tySpan := encodeTy(f.Ty)
		_, err := sq.Insert("fields").
			Columns("run_id", "item_ordinal", "ordinal", "name", "span_lo", "span_hi",
				"ty_kind", "ty_name", "ty_lo", "ty_hi").
			Values(runID, ordinal, j, f.Name.Name(), f.Name.Span.Lo, f.Name.Span.Hi,
				kind, tyName, tySpan.Lo, tySpan.Hi).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to write field %s.%s: %w", name.Name(), f.Name.Name(), err)
		}
	}
	return nil
}

func encodeTy(ty ast.Ty) (kind, name string, span ast.Span) {
	if id, ok := ty.(ast.TyID); ok {
		return tyKindID, id.Name.Name(), id.Name.Span
	}
	return tyKindUnknown, ast.UnknownTypeName, ast.ZeroSpan
}

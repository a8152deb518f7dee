package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/chalk-extract/internal/ast"
)

// ProgramReader loads persisted runs.
type ProgramReader struct {
	db *sql.DB
}

// NewProgramReader creates a ProgramReader instance.
func NewProgramReader(db *sql.DB) *ProgramReader {
	return &ProgramReader{db: db}
}

var runColumns = []string{"id", "file_path", "content_hash", "item_count", "extracted_at"}

// GetRun returns the metadata of runID.
func (r *ProgramReader) GetRun(ctx context.Context, runID string) (*Run, error) {
	run, err := scanRun(sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"id": runID}).
		RunWith(r.db).
		QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return run, nil
}

// LatestRun returns the most recent run for file.
// Returns (nil, nil) if the file was never extracted.
func (r *ProgramReader) LatestRun(ctx context.Context, file string) (*Run, error) {
	run, err := scanRun(sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"file_path": file}).
		OrderBy("extracted_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRowContext(ctx))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run for %s: %w", file, err)
	}
	return run, nil
}

// ListRuns returns every run for file, newest first.
func (r *ProgramReader) ListRuns(ctx context.Context, file string) ([]*Run, error) {
	rows, err := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"file_path": file}).
		OrderBy("extracted_at DESC", "rowid DESC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", file, err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadRun rebuilds the program stored under runID.
func (r *ProgramReader) LoadRun(ctx context.Context, runID string) (*ast.Program, error) {
	if _, err := r.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, runID)
	if err != nil {
		return nil, err
	}
	if err := r.loadFields(ctx, runID, items); err != nil {
		return nil, err
	}

	if items == nil {
		items = []ast.Item{}
	}
	return &ast.Program{Items: items}, nil
}

func (r *ProgramReader) loadItems(ctx context.Context, runID string) ([]ast.Item, error) {
	rows, err := sq.Select("kind", "name", "span_lo", "span_hi").
		From("items").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("ordinal").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []ast.Item
	for rows.Next() {
		var kind, name string
		var span ast.Span
		if err := rows.Scan(&kind, &name, &span.Lo, &span.Hi); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := decodeItem(kind, ast.NewIdentifier(name, span))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ProgramReader) loadFields(ctx context.Context, runID string, items []ast.Item) error {
	rows, err := sq.Select("item_ordinal", "name", "span_lo", "span_hi", "ty_kind", "ty_name", "ty_lo", "ty_hi").
		From("fields").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("item_ordinal", "ordinal").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemOrdinal int
		var name, tyKind, tyName string
		var span, tySpan ast.Span
		if err := rows.Scan(&itemOrdinal, &name, &span.Lo, &span.Hi, &tyKind, &tyName, &tySpan.Lo, &tySpan.Hi); err != nil {
			return fmt.Errorf("failed to scan field: %w", err)
		}
		if itemOrdinal < 0 || itemOrdinal >= len(items) {
			return fmt.Errorf("field %s references missing item %d", name, itemOrdinal)
		}
		s, ok := items[itemOrdinal].(*ast.StructDefn)
		if !ok {
			return fmt.Errorf("field %s attached to non-struct item %d", name, itemOrdinal)
		}
		ty, err := decodeTy(tyKind, tyName, tySpan)
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, ast.Field{Name: ast.NewIdentifier(name, span), Ty: ty})
	}
	return rows.Err()
}

func decodeItem(kind string, name ast.Identifier) (ast.Item, error) {
	switch kind {
	case "struct":
		return &ast.StructDefn{
			Name:           name,
			Fields:         []ast.Field{},
			ParameterKinds: []ast.ParameterKind{},
			WhereClauses:   []ast.WhereClause{},
		}, nil
	case "trait":
		return &ast.TraitDefn{Name: name, ParameterKinds: []ast.ParameterKind{}, WhereClauses: []ast.WhereClause{}}, nil
	case "impl":
		return &ast.ImplDefn{Name: name, ParameterKinds: []ast.ParameterKind{}, WhereClauses: []ast.WhereClause{}}, nil
	default:
		return nil, fmt.Errorf("%w: item %q", ErrUnknownKind, kind)
	}
}

func decodeTy(kind, name string, span ast.Span) (ast.Ty, error) {
	switch kind {
	case tyKindID:
		return ast.TyID{Name: ast.NewIdentifier(name, span)}, nil
	case tyKindUnknown:
		return ast.TyUnknown{}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownKind, kind)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var extractedAt string
	if err := row.Scan(&run.ID, &run.FilePath, &run.ContentHash, &run.ItemCount, &extractedAt); err != nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, extractedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse extracted_at of run %s: %w", run.ID, err)
	}
	run.ExtractedAt = at
	return run, nil
}

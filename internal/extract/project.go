package extract

import (
	"github.com/mvp-joe/chalk-extract/internal/ast"
	"github.com/mvp-joe/chalk-extract/internal/hir"
)

const selfTypeName = "Self"

// Options tunes how host items are projected.
type Options struct {
	// ResolvePaths projects plain, argument-free paths to named types.
	// When false every field type is the placeholder.
	ResolvePaths bool
}

// DefaultOptions resolves plain paths.
func DefaultOptions() Options {
	return Options{ResolvePaths: true}
}

// ProjectTy converts a host type node with the default options.
func ProjectTy(ty *hir.Ty) ast.Ty {
	return DefaultOptions().ProjectTy(ty)
}

// ProjectTy converts a host type node. Anything the program model cannot
// express degrades to ast.TyUnknown rather than failing the item. A bare
// Self has no enclosing record here and degrades too.
func (o Options) ProjectTy(ty *hir.Ty) ast.Ty {
	return o.projectTy(ty, "")
}

// projectTy resolves a bare Self to self, the record being declared.
func (o Options) projectTy(ty *hir.Ty, self string) ast.Ty {
	if ty == nil || ty.Kind != hir.TyPath || ty.Path == nil {
		return ast.TyUnknown{}
	}

	switch ty.Path.QPath {
	case hir.QPathResolved:
		if !o.ResolvePaths || ty.Path.HasArgs() {
			return ast.TyUnknown{}
		}
		last, ok := ty.Path.Last()
		if !ok || last.Name == "" {
			return ast.TyUnknown{}
		}
		name := last.Name
		if name == selfTypeName {
			if self == "" || len(ty.Path.Segments) != 1 {
				return ast.TyUnknown{}
			}
			name = self
		}
		return ast.TyID{Name: ast.NewIdentifier(name, ConvertSpan(ty.Span))}
	case hir.QPathTypeRelative:
		// No qualified form in the program model yet.
		return ast.TyUnknown{}
	default:
		return ast.TyUnknown{}
	}
}

// ProjectField builds a program field from a member of the record named
// self. Pass an empty self when the record is unknown.
func (o Options) ProjectField(self string, f *hir.StructField) ast.Field {
	return ast.Field{
		Name: FieldIdent(f),
		Ty:   o.projectTy(f.Ty, self),
	}
}

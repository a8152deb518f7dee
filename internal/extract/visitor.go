package extract

import (
	"github.com/mvp-joe/chalk-extract/internal/ast"
	"github.com/mvp-joe/chalk-extract/internal/hir"
)

// Stats counts what a run did with each item. It is reported to operators;
// the program itself does not record skipped items.
type Stats struct {
	Structs  int
	Fields   int
	Unknown  int // fields typed with the placeholder
	Deferred int // traits and impls, recognised but not projected
	Ignored  int // every other item kind
}

// Visitor projects host items into the accumulator.
type Visitor struct {
	acc   *Accumulator
	opts  Options
	stats Stats
}

// NewVisitor returns a visitor appending to acc.
func NewVisitor(acc *Accumulator, opts Options) *Visitor {
	return &Visitor{acc: acc, opts: opts}
}

// Stats returns the counts so far.
func (v *Visitor) Stats() Stats {
	return v.stats
}

// VisitItem handles one top-level item. It never fails: unsupported kinds
// produce nothing.
func (v *Visitor) VisitItem(item *hir.Item) {
	switch item.Kind {
	case hir.ItemStruct:
		v.acc.Append(v.structDefn(item))
	case hir.ItemTrait, hir.ItemImpl:
		v.stats.Deferred++
	case hir.ItemEnum, hir.ItemUnion, hir.ItemFn, hir.ItemConst, hir.ItemStatic,
		hir.ItemTypeAlias, hir.ItemMod, hir.ItemUse, hir.ItemExternCrate, hir.ItemMacro,
		hir.ItemOther:
		v.stats.Ignored++
	default:
		v.stats.Ignored++
	}
}

func (v *Visitor) structDefn(item *hir.Item) *ast.StructDefn {
	fields := []ast.Field{}
	if item.Data != nil {
		switch item.Data.Shape {
		case hir.ShapeStruct, hir.ShapeTuple:
			for _, f := range item.Data.Fields {
				field := v.opts.ProjectField(item.Name, f)
				if ast.IsUnknown(field.Ty) {
					v.stats.Unknown++
				}
				fields = append(fields, field)
			}
		case hir.ShapeUnit:
		}
	}

	v.stats.Structs++
	v.stats.Fields += len(fields)

	return &ast.StructDefn{
		Name:           ItemIdent(item),
		Fields:         fields,
		ParameterKinds: []ast.ParameterKind{},
		WhereClauses:   []ast.WhereClause{},
	}
}

package extract

import (
	"github.com/mvp-joe/chalk-extract/internal/ast"
	"github.com/mvp-joe/chalk-extract/internal/hir"
)

// ConvertSpan narrows a host span into the program model.
func ConvertSpan(s hir.Span) ast.Span {
	return ast.Span{Lo: int(s.Lo), Hi: int(s.Hi)}
}

// Ident interns name at span.
func Ident(name string, span hir.Span) ast.Identifier {
	return ast.NewIdentifier(name, ConvertSpan(span))
}

// ItemIdent names an item; the span is the whole item.
func ItemIdent(item *hir.Item) ast.Identifier {
	return Ident(item.Name, item.Span)
}

// FieldIdent names a record member; the span is the whole member.
func FieldIdent(field *hir.StructField) ast.Identifier {
	return Ident(field.Name, field.Span)
}

package render

import "github.com/mvp-joe/chalk-extract/internal/ast"

// Document is the serialised shape of a program.
type Document struct {
	Items []Item `json:"items" yaml:"items"`
}

// Span is a byte range.
type Span struct {
	Lo int `json:"lo" yaml:"lo"`
	Hi int `json:"hi" yaml:"hi"`
}

// Item is one declaration.
type Item struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Name   string  `json:"name" yaml:"name"`
	Span   Span    `json:"span" yaml:"span"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field is one record member.
type Field struct {
	Name string `json:"name" yaml:"name"`
	Span Span   `json:"span" yaml:"span"`
	Ty   Ty     `json:"ty" yaml:"ty"`
}

// Ty is a field type. Kind is "id" or "unknown"; unknown types carry no span.
type Ty struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	Span *Span  `json:"span,omitempty" yaml:"span,omitempty"`
}

// NewDocument converts prog.
func NewDocument(prog *ast.Program) Document {
	doc := Document{Items: []Item{}}
	if prog == nil {
		return doc
	}
	for _, item := range prog.Items {
		name := item.ItemName()
		out := Item{Kind: item.Kind(), Name: name.Name(), Span: span(name.Span)}
		if s, ok := item.(*ast.StructDefn); ok {
			for _, f := range s.Fields {
				out.Fields = append(out.Fields, Field{
					Name: f.Name.Name(),
					Span: span(f.Name.Span),
					Ty:   ty(f.Ty),
				})
			}
		}
		doc.Items = append(doc.Items, out)
	}
	return doc
}

func span(s ast.Span) Span {
	return Span{Lo: s.Lo, Hi: s.Hi}
}

func ty(t ast.Ty) Ty {
	if id, ok := t.(ast.TyID); ok {
		s := span(id.Name.Span)
		return Ty{Kind: "id", Name: id.Name.Name(), Span: &s}
	}
	return Ty{Kind: "unknown", Name: ast.UnknownTypeName}
}

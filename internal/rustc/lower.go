package rustc

import (
	"context"
	"fmt"
	"strconv"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/mvp-joe/chalk-extract/internal/hir"
)

// Lowerer builds the hir item tree of a Rust source file with tree-sitter.
type Lowerer struct {
	language *sitter.Language
	// RecurseModules reports items of inline `mod m { ... }` blocks after the
	// module item itself, the way rustc enumerates its item map.
	RecurseModules bool
	// RecurseBodies reports items declared inside function bodies and other
	// blocks, such as `fn f() { struct Inner; }`, after their enclosing item.
	RecurseBodies bool
}

// NewLowerer creates a lowerer for Rust sources.
func NewLowerer() *Lowerer {
	return &Lowerer{
		language:       sitter.NewLanguage(rust.Language()),
		RecurseModules: true,
		RecurseBodies:  true,
	}
}

// Lower parses source and returns its items in pre-order: each item is
// followed by the items nested in it.
// A file that does not parse is reported as a *CompileError.
func (l *Lowerer) Lower(ctx context.Context, file string, source []byte) (*hir.Crate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(l.language); err != nil {
		return nil, fmt.Errorf("failed to set rust language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse rust file: %s", file)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(file, root, source)
	}

	crate := &hir.Crate{File: file, Source: source}
	l.lowerItems(root, source, &crate.Items)
	return crate, nil
}

// lowerItems appends the items declared directly in node (a source_file or a
// module's declaration_list) and the items nested in them.
func (l *Lowerer) lowerItems(node *sitter.Node, source []byte, items *[]*hir.Item) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		l.lowerNode(node.NamedChild(i), source, items, false)
	}
}

// lowerNode appends node when it is an item, then whatever is nested in it.
// Associated items of impls, traits and extern blocks are not items of their
// own, but their bodies are still searched.
func (l *Lowerer) lowerNode(node *sitter.Node, source []byte, items *[]*hir.Item, associated bool) {
	if !associated {
		if item := l.lowerItem(node, source); item != nil {
			*items = append(*items, item)
			if item.Kind == hir.ItemMod {
				if l.RecurseModules {
					if body := node.ChildByFieldName("body"); body != nil {
						l.lowerItems(body, source, items)
					}
				}
				return
			}
		}
	}
	if l.RecurseBodies {
		l.lowerNested(node, source, items)
	}
}

// lowerNested searches the children of node for items. A declaration_list
// reached here belongs to an impl, trait or extern block; module bodies go
// through lowerItems.
func (l *Lowerer) lowerNested(node *sitter.Node, source []byte, items *[]*hir.Item) {
	associated := node.Kind() == "declaration_list"
	for i := uint(0); i < node.NamedChildCount(); i++ {
		l.lowerNode(node.NamedChild(i), source, items, associated)
	}
}

var itemKinds = map[string]hir.ItemKind{
	"struct_item":              hir.ItemStruct,
	"trait_item":               hir.ItemTrait,
	"impl_item":                hir.ItemImpl,
	"enum_item":                hir.ItemEnum,
	"union_item":               hir.ItemUnion,
	"function_item":            hir.ItemFn,
	"function_signature_item":  hir.ItemFn,
	"const_item":               hir.ItemConst,
	"static_item":              hir.ItemStatic,
	"type_item":                hir.ItemTypeAlias,
	"mod_item":                 hir.ItemMod,
	"use_declaration":          hir.ItemUse,
	"extern_crate_declaration": hir.ItemExternCrate,
	"macro_definition":         hir.ItemMacro,
	"foreign_mod_item":         hir.ItemOther,
}

// lowerItem returns nil for nodes that are not items (comments, attributes,
// macro invocations that expand away).
func (l *Lowerer) lowerItem(node *sitter.Node, source []byte) *hir.Item {
	kind, ok := itemKinds[node.Kind()]
	if !ok {
		return nil
	}

	item := &hir.Item{
		Kind: kind,
		Span: nodeSpan(node),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		item.Name = name.Utf8Text(source)
	}
	item.Generics = lowerGenerics(node.ChildByFieldName("type_parameters"), source)

	switch kind {
	case hir.ItemStruct:
		item.Data = lowerVariantData(node.ChildByFieldName("body"), source, typeParamNames(item.Generics))
	case hir.ItemImpl:
		params := typeParamNames(item.Generics)
		if tr := node.ChildByFieldName("trait"); tr != nil {
			item.Trait = lowerPath(tr, source, params)
		}
		if self := node.ChildByFieldName("type"); self != nil {
			item.SelfTy = lowerTy(self, source, params)
		}
	}
	return item
}

func lowerVariantData(body *sitter.Node, source []byte, params map[string]bool) *hir.VariantData {
	if body == nil {
		return &hir.VariantData{Shape: hir.ShapeUnit, Fields: []*hir.StructField{}}
	}

	switch body.Kind() {
	case "field_declaration_list":
		data := &hir.VariantData{Shape: hir.ShapeStruct, Fields: []*hir.StructField{}}
		for i := uint(0); i < body.NamedChildCount(); i++ {
			decl := body.NamedChild(i)
			if decl.Kind() != "field_declaration" {
				continue
			}
			field := &hir.StructField{Span: nodeSpan(decl)}
			if name := decl.ChildByFieldName("name"); name != nil {
				field.Name = name.Utf8Text(source)
			}
			if ty := decl.ChildByFieldName("type"); ty != nil {
				field.Ty = lowerTy(ty, source, params)
			}
			data.Fields = append(data.Fields, field)
		}
		return data

	case "ordered_field_declaration_list":
		data := &hir.VariantData{Shape: hir.ShapeTuple, Fields: []*hir.StructField{}}
		var start *sitter.Node
		for i := uint(0); i < body.NamedChildCount(); i++ {
			child := body.NamedChild(i)
			switch child.Kind() {
			case "attribute_item", "line_comment", "block_comment":
				continue
			case "visibility_modifier":
				start = child
				continue
			}
			span := nodeSpan(child)
			if start != nil {
				span.Lo = uint32(start.StartByte())
				start = nil
			}
			data.Fields = append(data.Fields, &hir.StructField{
				Name: strconv.Itoa(len(data.Fields)),
				Span: span,
				Ty:   lowerTy(child, source, params),
			})
		}
		return data

	default:
		return &hir.VariantData{Shape: hir.ShapeUnit, Fields: []*hir.StructField{}}
	}
}

func lowerGenerics(node *sitter.Node, source []byte) []hir.GenericParam {
	if node == nil {
		return nil
	}

	var params []hir.GenericParam
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		param := hir.GenericParam{Span: nodeSpan(child)}
		switch child.Kind() {
		case "lifetime":
			param.Kind = hir.GenericLifetime
			param.Name = child.Utf8Text(source)
		case "lifetime_parameter":
			param.Kind = hir.GenericLifetime
			param.Name = paramName(child, source)
		case "const_parameter":
			param.Kind = hir.GenericConst
			param.Name = paramName(child, source)
		case "type_identifier":
			param.Kind = hir.GenericType
			param.Name = child.Utf8Text(source)
		case "type_parameter", "constrained_type_parameter", "optional_type_parameter":
			param.Kind = hir.GenericType
			param.Name = paramName(child, source)
		default:
			continue
		}
		params = append(params, param)
	}
	return params
}

// paramName digs the declared name out of the grammar's several generic
// parameter shapes (T, T: Bound, T = Default, 'a: 'b, const N: usize).
func paramName(node *sitter.Node, source []byte) string {
	for _, field := range []string{"name", "left"} {
		c := node.ChildByFieldName(field)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "type_identifier", "identifier", "lifetime":
			return c.Utf8Text(source)
		default:
			return paramName(c, source)
		}
	}
	if node.NamedChildCount() > 0 {
		first := node.NamedChild(0)
		if first.Kind() == "lifetime" || first.NamedChildCount() == 0 {
			return first.Utf8Text(source)
		}
		return paramName(first, source)
	}
	return node.Utf8Text(source)
}

func typeParamNames(params []hir.GenericParam) map[string]bool {
	names := map[string]bool{"Self": true}
	for _, p := range params {
		if p.Kind == hir.GenericType {
			names[p.Name] = true
		}
	}
	return names
}

// lowerTy converts a type node. params holds the type parameters in scope so
// that T::Assoc is recognised as type-relative.
func lowerTy(node *sitter.Node, source []byte, params map[string]bool) *hir.Ty {
	ty := &hir.Ty{
		Kind: hir.TyOther,
		Span: nodeSpan(node),
		Text: node.Utf8Text(source),
	}
	switch node.Kind() {
	case "type_identifier", "primitive_type", "scoped_type_identifier", "generic_type":
		if path := lowerPath(node, source, params); path != nil {
			ty.Kind = hir.TyPath
			ty.Path = path
		}
	}
	return ty
}

// lowerPath flattens a (possibly generic, possibly scoped) type path.
func lowerPath(node *sitter.Node, source []byte, params map[string]bool) *hir.Path {
	path := &hir.Path{QPath: hir.QPathResolved}
	if !appendSegments(path, node, source) {
		return nil
	}
	if len(path.Segments) > 1 && params[path.Segments[0].Name] {
		path.QPath = hir.QPathTypeRelative
	}
	return path
}

func appendSegments(path *hir.Path, node *sitter.Node, source []byte) bool {
	switch node.Kind() {
	case "type_identifier", "primitive_type", "identifier", "crate", "self", "super", "metavariable":
		path.Segments = append(path.Segments, hir.PathSegment{Name: node.Utf8Text(source)})
		return true

	case "scoped_type_identifier", "scoped_identifier":
		if prefix := node.ChildByFieldName("path"); prefix != nil {
			if !appendSegments(path, prefix, source) {
				return false
			}
		}
		name := node.ChildByFieldName("name")
		if name == nil {
			return false
		}
		return appendSegments(path, name, source)

	case "generic_type":
		base := node.ChildByFieldName("type")
		if base == nil || !appendSegments(path, base, source) {
			return false
		}
		if len(path.Segments) > 0 {
			path.Segments[len(path.Segments)-1].HasArgs = true
		}
		return true

	case "bracketed_type":
		// <T as Trait>::Assoc and <T>::Assoc
		path.QPath = hir.QPathTypeRelative
		path.Segments = append(path.Segments, hir.PathSegment{Name: node.Utf8Text(source)})
		return true

	default:
		return false
	}
}

func nodeSpan(node *sitter.Node) hir.Span {
	return hir.Span{Lo: uint32(node.StartByte()), Hi: uint32(node.EndByte())}
}

// syntaxError reports the first ERROR or MISSING node as a compile error.
func syntaxError(file string, root *sitter.Node, source []byte) *CompileError {
	bad := findError(root)
	d := Diagnostic{
		MessageType: "diagnostic",
		Level:       "error",
		Message:     "syntax error",
	}
	if bad != nil {
		pos := bad.StartPosition()
		d.Spans = []DiagnosticSpan{{
			FileName:    file,
			ByteStart:   int(bad.StartByte()),
			ByteEnd:     int(bad.EndByte()),
			LineStart:   int(pos.Row) + 1,
			ColumnStart: int(pos.Column) + 1,
			IsPrimary:   true,
		}}
		if bad.IsMissing() {
			d.Message = fmt.Sprintf("syntax error: missing %s", bad.Kind())
		} else {
			d.Message = fmt.Sprintf("syntax error near %q", truncate(bad.Utf8Text(source), 40))
		}
	}
	return &CompileError{File: file, Diagnostics: []Diagnostic{d}}
}

func findError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := findError(child); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

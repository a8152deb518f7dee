// Package hir models the analyzed item tree reported by the host compiler:
// every top-level declaration with its kind, name, span and, for records,
// its ordered members and their type nodes.
package hir

// Span is a host byte range into the checked file.
type Span struct {
	Lo uint32
	Hi uint32
}

// ItemKind identifies a top-level declaration.
type ItemKind int

const (
	ItemOther ItemKind = iota
	ItemStruct
	ItemTrait
	ItemImpl
	ItemEnum
	ItemUnion
	ItemFn
	ItemConst
	ItemStatic
	ItemTypeAlias
	ItemMod
	ItemUse
	ItemExternCrate
	ItemMacro
)

var itemKindNames = map[ItemKind]string{
	ItemOther:       "other",
	ItemStruct:      "struct",
	ItemTrait:       "trait",
	ItemImpl:        "impl",
	ItemEnum:        "enum",
	ItemUnion:       "union",
	ItemFn:          "fn",
	ItemConst:       "const",
	ItemStatic:      "static",
	ItemTypeAlias:   "type",
	ItemMod:         "mod",
	ItemUse:         "use",
	ItemExternCrate: "extern crate",
	ItemMacro:       "macro",
}

func (k ItemKind) String() string {
	if s, ok := itemKindNames[k]; ok {
		return s
	}
	return "other"
}

// Crate is one fully analyzed compilation unit.
type Crate struct {
	File   string
	Source []byte
	Items  []*Item
}

// Item is a top-level declaration.
type Item struct {
	Kind ItemKind
	// Name is empty for impl blocks and other anonymous items.
	Name string
	Span Span
	// Data is set for ItemStruct only.
	Data *VariantData
	// Generics is the raw parameter list, kept for when parameters are lowered.
	Generics []GenericParam
	// Trait and SelfTy are set for ItemImpl.
	Trait  *Path
	SelfTy *Ty
}

// Shape is the syntactic form of a record.
type Shape int

const (
	ShapeStruct Shape = iota // struct Foo { a: T }
	ShapeTuple               // struct Foo(T);
	ShapeUnit                // struct Foo;
)

func (s Shape) String() string {
	switch s {
	case ShapeTuple:
		return "tuple"
	case ShapeUnit:
		return "unit"
	default:
		return "struct"
	}
}

// VariantData holds the members of a record.
type VariantData struct {
	Shape  Shape
	Fields []*StructField
}

// StructField is one record member. Tuple members are named by position.
type StructField struct {
	Name string
	Span Span
	Ty   *Ty
}

// GenericParamKind distinguishes generic parameters.
type GenericParamKind int

const (
	GenericType GenericParamKind = iota
	GenericLifetime
	GenericConst
)

// GenericParam is one entry of a generic parameter list.
type GenericParam struct {
	Kind GenericParamKind
	Name string
	Span Span
}

// TyKind identifies a type node.
type TyKind int

const (
	// TyOther covers references, tuples, arrays, slices, pointers, fn
	// pointers, trait objects, never and macro types.
	TyOther TyKind = iota
	TyPath
)

// QPathKind distinguishes path forms.
type QPathKind int

const (
	// QPathResolved is a plain path such as Foo or std::string::String.
	QPathResolved QPathKind = iota
	// QPathTypeRelative is a path relative to a type such as <T as Trait>::Assoc or T::Assoc.
	QPathTypeRelative
)

// Ty is a type node as written in the source.
type Ty struct {
	Kind TyKind
	Path *Path
	Span Span
	// Text is the source text of the node, for diagnostics.
	Text string
}

// Path is a possibly qualified path.
type Path struct {
	QPath    QPathKind
	Segments []PathSegment
}

// PathSegment is one segment of a path.
type PathSegment struct {
	Name string
	// HasArgs is set when the segment carries generic arguments (Vec<T>).
	HasArgs bool
}

// HasArgs reports whether any segment carries generic arguments.
func (p *Path) HasArgs() bool {
	for _, s := range p.Segments {
		if s.HasArgs {
			return true
		}
	}
	return false
}

// Last returns the final segment.
func (p *Path) Last() (PathSegment, bool) {
	if len(p.Segments) == 0 {
		return PathSegment{}, false
	}
	return p.Segments[len(p.Segments)-1], true
}

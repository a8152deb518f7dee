package ast

// Item is a top-level declaration.
type Item interface {
	itemNode()
	// ItemName is the declared name.
	ItemName() Identifier
	// Kind is a short lowercase tag: "struct", "trait" or "impl".
	Kind() string
}

// Field is one member of a record.
type Field struct {
	Name Identifier
	Ty   Ty
}

// Equal compares name and type, ignoring spans.
func (f Field) Equal(other Field) bool {
	return f.Name.Equal(other.Name) && TyEqual(f.Ty, other.Ty)
}

// ParameterKind is a generic parameter. Not extracted yet.
type ParameterKind interface {
	parameterKindNode()
	ParamName() Identifier
}

// TyParam is a type parameter such as T.
type TyParam struct {
	Name Identifier
}

func (TyParam) parameterKindNode()      {}
func (p TyParam) ParamName() Identifier { return p.Name }

// LifetimeParam is a lifetime parameter such as 'a.
type LifetimeParam struct {
	Name Identifier
}

func (LifetimeParam) parameterKindNode()      {}
func (p LifetimeParam) ParamName() Identifier { return p.Name }

// WhereClause is a constraint on generic parameters. Not extracted yet.
type WhereClause interface {
	whereClauseNode()
}

// Implemented states that Ty implements Trait.
type Implemented struct {
	Ty    Ty
	Trait Identifier
}

func (Implemented) whereClauseNode() {}

// StructDefn is a record declaration.
type StructDefn struct {
	Name           Identifier
	Fields         []Field
	ParameterKinds []ParameterKind
	WhereClauses   []WhereClause
}

func (*StructDefn) itemNode()              {}
func (s *StructDefn) ItemName() Identifier { return s.Name }
func (*StructDefn) Kind() string           { return "struct" }

// Field returns the field named name.
func (s *StructDefn) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}

// Equal compares two struct definitions structurally.
func (s *StructDefn) Equal(other *StructDefn) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !s.Name.Equal(other.Name) || len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if !s.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return len(s.ParameterKinds) == len(other.ParameterKinds) &&
		len(s.WhereClauses) == len(other.WhereClauses)
}

// TraitDefn is a trait declaration. The extractor recognises traits but does
// not project them yet; the variant exists so consumers can tell "absent" from
// "unsupported".
type TraitDefn struct {
	Name           Identifier
	ParameterKinds []ParameterKind
	WhereClauses   []WhereClause
}

func (*TraitDefn) itemNode()              {}
func (t *TraitDefn) ItemName() Identifier { return t.Name }
func (*TraitDefn) Kind() string           { return "trait" }

// ImplDefn binds a trait to a self type. Not projected yet.
type ImplDefn struct {
	Name           Identifier
	Trait          *Identifier
	SelfTy         Ty
	ParameterKinds []ParameterKind
	WhereClauses   []WhereClause
}

func (*ImplDefn) itemNode()              {}
func (i *ImplDefn) ItemName() Identifier { return i.Name }
func (*ImplDefn) Kind() string           { return "impl" }

// SentinelItem returns the empty UnknownType record that opens every program.
// Field types that cannot be projected refer to it by name.
func SentinelItem() *StructDefn {
	return &StructDefn{
		Name:           NewIdentifier(UnknownTypeName, ZeroSpan),
		Fields:         []Field{},
		ParameterKinds: []ParameterKind{},
		WhereClauses:   []WhereClause{},
	}
}

// IsSentinel reports whether item is the sentinel record.
func IsSentinel(item Item) bool {
	s, ok := item.(*StructDefn)
	return ok && s.Name.Name() == UnknownTypeName && s.Name.Span.IsZero() &&
		len(s.Fields) == 0 && len(s.ParameterKinds) == 0 && len(s.WhereClauses) == 0
}

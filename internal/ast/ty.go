package ast

// UnknownTypeName is the reserved name of the placeholder type and of the
// sentinel item every program starts with.
const UnknownTypeName = "UnknownType"

// Ty is a type expression.
type Ty interface {
	tyNode()
	// Equal reports structural equality, ignoring spans.
	Equal(other Ty) bool
	String() string
}

// TyID is a reference to a named type.
type TyID struct {
	Name Identifier
}

func (TyID) tyNode() {}

// Equal reports whether other names the same type.
func (t TyID) Equal(other Ty) bool {
	o, ok := other.(TyID)
	return ok && t.Name.Equal(o.Name)
}

func (t TyID) String() string {
	return t.Name.String()
}

// TyUnknown stands in for a type reference the extractor cannot project yet.
// It is a separate variant so a real type called UnknownType is never
// mistaken for it.
type TyUnknown struct{}

func (TyUnknown) tyNode() {}

// Name is the identifier the placeholder is rendered as: the sentinel item's name.
func (TyUnknown) Name() Identifier {
	return NewIdentifier(UnknownTypeName, ZeroSpan)
}

// Equal reports whether other is also the placeholder.
func (TyUnknown) Equal(other Ty) bool {
	_, ok := other.(TyUnknown)
	return ok
}

func (TyUnknown) String() string {
	return UnknownTypeName
}

// IsUnknown reports whether ty is the placeholder type.
func IsUnknown(ty Ty) bool {
	_, ok := ty.(TyUnknown)
	return ok
}

// TyEqual compares two possibly nil type expressions.
func TyEqual(a, b Ty) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

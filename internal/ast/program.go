package ast

// Program is the extracted item list in traversal order.
type Program struct {
	Items []Item
}

// Structs returns the struct definitions in order, sentinel included.
func (p *Program) Structs() []*StructDefn {
	var out []*StructDefn
	for _, item := range p.Items {
		if s, ok := item.(*StructDefn); ok {
			out = append(out, s)
		}
	}
	return out
}

// Struct returns the first struct definition named name.
func (p *Program) Struct(name string) (*StructDefn, bool) {
	for _, s := range p.Structs() {
		if s.Name.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Equal reports whether both programs hold the same items in the same order.
func (p *Program) Equal(other *Program) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.Items) != len(other.Items) {
		return false
	}
	for i := range p.Items {
		if !itemEqual(p.Items[i], other.Items[i]) {
			return false
		}
	}
	return true
}

func itemEqual(a, b Item) bool {
	switch a := a.(type) {
	case *StructDefn:
		b, ok := b.(*StructDefn)
		return ok && a.Equal(b)
	case *TraitDefn:
		b, ok := b.(*TraitDefn)
		return ok && a.Name.Equal(b.Name)
	case *ImplDefn:
		b, ok := b.(*ImplDefn)
		if !ok || !a.Name.Equal(b.Name) || !TyEqual(a.SelfTy, b.SelfTy) {
			return false
		}
		if a.Trait == nil || b.Trait == nil {
			return a.Trait == nil && b.Trait == nil
		}
		return a.Trait.Equal(*b.Trait)
	default:
		return false
	}
}

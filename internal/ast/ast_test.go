package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the program model:
// - Identifier equality ignores spans
// - The placeholder type is distinct from a real type named UnknownType
// - SentinelItem is recognised by IsSentinel and has no members
// - Program.Equal compares items in order
// - Span helpers report containment and zero-ness

func TestIdentifier_EqualIgnoresSpan(t *testing.T) {
	t.Parallel()

	a := NewIdentifier("Foo", Span{Lo: 3, Hi: 6})
	b := NewIdentifier("Foo", Span{Lo: 40, Hi: 43})
	c := NewIdentifier("Bar", Span{Lo: 3, Hi: 6})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "Foo", a.Name())
}

func TestTyUnknown_DistinctFromNamedUnknownType(t *testing.T) {
	t.Parallel()

	named := TyID{Name: NewIdentifier(UnknownTypeName, ZeroSpan)}
	placeholder := TyUnknown{}

	assert.False(t, placeholder.Equal(named))
	assert.False(t, named.Equal(placeholder))
	assert.True(t, placeholder.Equal(TyUnknown{}))
	assert.True(t, IsUnknown(placeholder))
	assert.False(t, IsUnknown(named))

	// Rendered the same way so the sentinel item still resolves it.
	assert.Equal(t, named.String(), placeholder.String())
	assert.True(t, placeholder.Name().Span.IsZero())
}

func TestSentinelItem(t *testing.T) {
	t.Parallel()

	s := SentinelItem()

	assert.True(t, IsSentinel(s))
	assert.Equal(t, UnknownTypeName, s.Name.Name())
	assert.Equal(t, ZeroSpan, s.Name.Span)
	assert.Empty(t, s.Fields)
	assert.NotNil(t, s.Fields)
	assert.Empty(t, s.ParameterKinds)
	assert.Empty(t, s.WhereClauses)
	assert.Equal(t, "struct", s.Kind())

	declared := &StructDefn{Name: NewIdentifier(UnknownTypeName, Span{Lo: 7, Hi: 30})}
	assert.False(t, IsSentinel(declared))
}

func TestProgram_Equal(t *testing.T) {
	t.Parallel()

	foo := func(lo int) *StructDefn {
		return &StructDefn{
			Name: NewIdentifier("Foo", Span{Lo: lo, Hi: lo + 20}),
			Fields: []Field{
				{Name: NewIdentifier("bar", Span{Lo: lo + 5, Hi: lo + 10}), Ty: TyUnknown{}},
				{Name: NewIdentifier("baz", Span{Lo: lo + 11, Hi: lo + 19}), Ty: TyID{Name: NewIdentifier("u32", Span{})}},
			},
		}
	}

	a := &Program{Items: []Item{SentinelItem(), foo(0)}}
	b := &Program{Items: []Item{SentinelItem(), foo(100)}}
	assert.True(t, a.Equal(b))

	reordered := &Program{Items: []Item{foo(0), SentinelItem()}}
	assert.False(t, a.Equal(reordered))

	changed := foo(0)
	changed.Fields[1].Ty = TyUnknown{}
	assert.False(t, a.Equal(&Program{Items: []Item{SentinelItem(), changed}}))

	var nilProg *Program
	assert.True(t, nilProg.Equal(nil))
	assert.False(t, a.Equal(nil))
}

func TestProgram_StructLookup(t *testing.T) {
	t.Parallel()

	p := &Program{Items: []Item{
		SentinelItem(),
		&TraitDefn{Name: NewIdentifier("Show", Span{})},
		&StructDefn{Name: NewIdentifier("Point", Span{}), Fields: []Field{
			{Name: NewIdentifier("x", Span{}), Ty: TyID{Name: NewIdentifier("i64", Span{})}},
		}},
	}}

	require.Len(t, p.Structs(), 2)
	s, ok := p.Struct("Point")
	require.True(t, ok)
	f, ok := s.Field("x")
	require.True(t, ok)
	assert.Equal(t, "i64", f.Ty.String())

	_, ok = p.Struct("Show")
	assert.False(t, ok)
}

func TestSpan_Helpers(t *testing.T) {
	t.Parallel()

	assert.True(t, ZeroSpan.IsZero())
	assert.True(t, Span{Lo: 2, Hi: 5}.Within(5))
	assert.False(t, Span{Lo: 2, Hi: 6}.Within(5))
	assert.False(t, Span{Lo: 4, Hi: 2}.Within(5))
	assert.Equal(t, 3, Span{Lo: 2, Hi: 5}.Len())
	assert.Equal(t, "2..5", Span{Lo: 2, Hi: 5}.String())
}

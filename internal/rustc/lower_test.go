package rustc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/chalk-extract/internal/hir"
)

// Test Plan for Lowerer:
// - Struct-like records lower with named members in declaration order
// - Tuple-like records lower with positional members named 0, 1, ...
// - Unit-like and empty-brace records lower with no members
// - Item spans cover the whole item, member spans the whole member
// - Plain paths are resolved, generic paths carry args, T::Assoc is type-relative
// - References and other non-path types lower to TyOther
// - Traits, impls and other kinds are reported with their kind
// - Items inside inline modules follow the module item
// - Items inside fn bodies, method bodies and blocks follow their enclosing item
// - Associated fns of impls and traits are not reported as items
// - Syntax errors are reported as *CompileError
// - A cancelled context aborts before parsing

func lowerFixture(t *testing.T, name string) (*hir.Crate, []byte) {
	t.Helper()
	path, source := readFixture(t, name)
	crate, err := NewLowerer().Lower(context.Background(), path, source)
	require.NoError(t, err)
	require.NotNil(t, crate)
	return crate, source
}

func findItem(t *testing.T, crate *hir.Crate, kind hir.ItemKind, name string) *hir.Item {
	t.Helper()
	for _, item := range crate.Items {
		if item.Kind == kind && item.Name == name {
			return item
		}
	}
	require.Failf(t, "item not found", "%s %s", kind, name)
	return nil
}

func text(source []byte, span hir.Span) string {
	return string(source[span.Lo:span.Hi])
}

func TestLower_StructLikeRecord(t *testing.T) {
	t.Parallel()

	crate, source := lowerFixture(t, "records.rs")
	foo := findItem(t, crate, hir.ItemStruct, "Foo")

	require.NotNil(t, foo.Data)
	assert.Equal(t, hir.ShapeStruct, foo.Data.Shape)
	require.Len(t, foo.Data.Fields, 2)

	bar, baz := foo.Data.Fields[0], foo.Data.Fields[1]
	assert.Equal(t, "bar", bar.Name)
	assert.Equal(t, "baz", baz.Name)
	assert.Equal(t, "bar: SomeType", text(source, bar.Span))
	assert.Less(t, bar.Span.Hi, baz.Span.Lo)

	require.NotNil(t, bar.Ty)
	assert.Equal(t, hir.TyPath, bar.Ty.Kind)
	require.NotNil(t, bar.Ty.Path)
	assert.Equal(t, hir.QPathResolved, bar.Ty.Path.QPath)
	assert.Equal(t, []hir.PathSegment{{Name: "SomeType"}}, bar.Ty.Path.Segments)
	assert.Equal(t, "SomeType", text(source, bar.Ty.Span))

	assert.True(t, strings.HasPrefix(text(source, foo.Span), "pub struct Foo {"))
	assert.True(t, strings.HasSuffix(text(source, foo.Span), "}"))
}

func TestLower_TupleLikeRecord(t *testing.T) {
	t.Parallel()

	crate, source := lowerFixture(t, "records.rs")
	pair := findItem(t, crate, hir.ItemStruct, "Pair")

	assert.Equal(t, hir.ShapeTuple, pair.Data.Shape)
	require.Len(t, pair.Data.Fields, 2)
	assert.Equal(t, "0", pair.Data.Fields[0].Name)
	assert.Equal(t, "1", pair.Data.Fields[1].Name)
	assert.Equal(t, "u32", text(source, pair.Data.Fields[0].Span))
	assert.Equal(t, "pub String", text(source, pair.Data.Fields[1].Span))
	assert.Equal(t, "String", pair.Data.Fields[1].Ty.Text)
}

func TestLower_UnitLikeRecords(t *testing.T) {
	t.Parallel()

	crate, _ := lowerFixture(t, "records.rs")

	unit := findItem(t, crate, hir.ItemStruct, "Unit")
	assert.Equal(t, hir.ShapeUnit, unit.Data.Shape)
	assert.NotNil(t, unit.Data.Fields)
	assert.Empty(t, unit.Data.Fields)

	empty := findItem(t, crate, hir.ItemStruct, "Empty")
	assert.Equal(t, hir.ShapeStruct, empty.Data.Shape)
	assert.Empty(t, empty.Data.Fields)
}

func TestLower_TypeForms(t *testing.T) {
	t.Parallel()

	crate, _ := lowerFixture(t, "records.rs")
	w := findItem(t, crate, hir.ItemStruct, "Wrapper")

	require.Len(t, w.Generics, 1)
	assert.Equal(t, "T", w.Generics[0].Name)
	assert.Equal(t, hir.GenericType, w.Generics[0].Kind)

	fields := map[string]*hir.StructField{}
	for _, f := range w.Data.Fields {
		fields[f.Name] = f
	}

	inner := fields["inner"].Ty
	require.Equal(t, hir.TyPath, inner.Kind)
	assert.True(t, inner.Path.HasArgs())
	assert.Equal(t, "Vec", inner.Path.Segments[0].Name)

	item := fields["item"].Ty
	require.Equal(t, hir.TyPath, item.Kind)
	assert.Equal(t, hir.QPathTypeRelative, item.Path.QPath)

	raw := fields["raw"].Ty
	assert.Equal(t, hir.TyOther, raw.Kind)
	assert.Nil(t, raw.Path)
	assert.Equal(t, "&'static str", raw.Text)

	path := fields["path"].Ty
	require.Equal(t, hir.TyPath, path.Kind)
	assert.Equal(t, hir.QPathResolved, path.Path.QPath)
	last, ok := path.Path.Last()
	require.True(t, ok)
	assert.Equal(t, "String", last.Name)
	assert.Len(t, path.Path.Segments, 3)
}

func TestLower_ItemKindsAndOrder(t *testing.T) {
	t.Parallel()

	crate, _ := lowerFixture(t, "mixed.rs")

	var got []string
	for _, item := range crate.Items {
		got = append(got, item.Kind.String()+" "+item.Name)
	}

	assert.Equal(t, []string{
		"use ",
		"trait Named",
		"struct Point",
		"impl ",
		"impl ",
		"enum Shape",
		"const ORIGIN_X",
		"fn origin",
		"mod geometry",
		"struct Segment",
		"struct Line",
	}, got)
}

func TestLower_Impl(t *testing.T) {
	t.Parallel()

	crate, _ := lowerFixture(t, "mixed.rs")

	var impls []*hir.Item
	for _, item := range crate.Items {
		if item.Kind == hir.ItemImpl {
			impls = append(impls, item)
		}
	}
	require.Len(t, impls, 2)

	require.NotNil(t, impls[0].Trait)
	assert.Equal(t, "Named", impls[0].Trait.Segments[0].Name)
	require.NotNil(t, impls[0].SelfTy)
	assert.Equal(t, "Point", impls[0].SelfTy.Text)

	require.NotNil(t, impls[1].Trait)
	last, _ := impls[1].Trait.Last()
	assert.Equal(t, "Debug", last.Name)
}

func TestLower_NoModuleRecursion(t *testing.T) {
	t.Parallel()

	path, source := readFixture(t, "mixed.rs")
	l := NewLowerer()
	l.RecurseModules = false

	crate, err := l.Lower(context.Background(), path, source)
	require.NoError(t, err)
	for _, item := range crate.Items {
		assert.NotEqual(t, "Segment", item.Name)
	}
}

func itemList(crate *hir.Crate) []string {
	var got []string
	for _, item := range crate.Items {
		got = append(got, item.Kind.String()+" "+item.Name)
	}
	return got
}

func TestLower_NestedItems(t *testing.T) {
	t.Parallel()

	crate, source := lowerFixture(t, "nested.rs")

	assert.Equal(t, []string{
		"struct Outer",
		"fn build",
		"struct Inner",
		"struct InBlock",
		"impl ",
		"struct InMethod",
		"mod m",
		"struct InMod",
		"trait Describe",
		"struct InDefault",
	}, itemList(crate))

	inner := findItem(t, crate, hir.ItemStruct, "Inner")
	require.NotNil(t, inner.Data)
	require.Len(t, inner.Data.Fields, 1)
	assert.Equal(t, "x: u8", text(source, inner.Data.Fields[0].Span))

	tuple := findItem(t, crate, hir.ItemStruct, "InMethod")
	require.NotNil(t, tuple.Data)
	assert.Equal(t, hir.ShapeTuple, tuple.Data.Shape)
}

func TestLower_NoBodyRecursion(t *testing.T) {
	t.Parallel()

	path, source := readFixture(t, "nested.rs")
	l := NewLowerer()
	l.RecurseBodies = false

	crate, err := l.Lower(context.Background(), path, source)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"struct Outer",
		"fn build",
		"impl ",
		"mod m",
		"struct InMod",
		"trait Describe",
	}, itemList(crate))
}

func TestLower_SyntaxError(t *testing.T) {
	t.Parallel()

	path, source := readFixture(t, "broken.rs")

	crate, err := NewLowerer().Lower(context.Background(), path, source)
	require.Error(t, err)
	assert.Nil(t, crate)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	require.Len(t, compileErr.Diagnostics, 1)
	assert.True(t, compileErr.Diagnostics[0].IsError())
	assert.Contains(t, compileErr.Diagnostics[0].Message, "syntax error")
}

func TestLower_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path, source := readFixture(t, "records.rs")
	_, err := NewLowerer().Lower(ctx, path, source)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLower_SpansWithinSource(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"records.rs", "mixed.rs", "traits_only.rs"} {
		crate, source := lowerFixture(t, name)
		for _, item := range crate.Items {
			assert.LessOrEqual(t, item.Span.Lo, item.Span.Hi)
			assert.LessOrEqual(t, int(item.Span.Hi), len(source))
			if item.Data == nil {
				continue
			}
			for _, f := range item.Data.Fields {
				assert.LessOrEqual(t, f.Span.Lo, f.Span.Hi)
				assert.LessOrEqual(t, int(f.Span.Hi), len(source))
			}
		}
	}
}

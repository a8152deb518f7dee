// Package ast is the program model handed to the trait solver.
//
// It covers a subset of the host language: named records with typed
// fields, plus placeholder variants for the constructs that are recognised but
// not yet projected (traits, impls, generic parameters, where clauses).
// Every value in this package is immutable once built.
package ast

import "fmt"

// Span is a byte range [Lo, Hi) into the original source text.
type Span struct {
	Lo int
	Hi int
}

// ZeroSpan marks synthesized nodes that have no source location.
var ZeroSpan = Span{}

// IsZero reports whether s is the zero span.
func (s Span) IsZero() bool {
	return s.Lo == 0 && s.Hi == 0
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.Hi - s.Lo
}

// Within reports whether the span is well formed and fits in a source of size bytes.
func (s Span) Within(size int) bool {
	return 0 <= s.Lo && s.Lo <= s.Hi && s.Hi <= size
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Lo, s.Hi)
}

// Identifier is an interned name plus the span it was written at.
// Only the symbol takes part in equality; the span is diagnostic.
type Identifier struct {
	Str  Symbol
	Span Span
}

// NewIdentifier interns name and pairs it with span.
func NewIdentifier(name string, span Span) Identifier {
	return Identifier{Str: Intern(name), Span: span}
}

// Name returns the identifier text.
func (id Identifier) Name() string {
	return id.Str.String()
}

// Equal compares identifiers by symbol.
func (id Identifier) Equal(other Identifier) bool {
	return id.Str == other.Str
}

func (id Identifier) String() string {
	return id.Str.String()
}

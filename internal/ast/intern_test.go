package ast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Intern:
// - Same text interns to the same symbol
// - Different text interns to different symbols
// - Symbols round-trip back to their text
// - Empty string is the zero symbol
// - Concurrent interning of the same names agrees on one symbol per name

func TestIntern_SameTextSameSymbol(t *testing.T) {
	t.Parallel()

	a := Intern("Foo")
	b := Intern("Foo")

	assert.Equal(t, a, b)
	assert.Equal(t, "Foo", a.String())
}

func TestIntern_DifferentTextDifferentSymbol(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Intern("Foo"), Intern("Bar"))
	assert.NotEqual(t, Intern("foo"), Intern("Foo"))
}

func TestIntern_EmptyStringIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Symbol(0), Intern(""))
	assert.Equal(t, "", Symbol(0).String())
}

func TestLookup_DoesNotAdd(t *testing.T) {
	t.Parallel()

	_, ok := Lookup("never-interned-name-7f3a")
	assert.False(t, ok)

	sym := Intern("interned-for-lookup")
	got, ok := Lookup("interned-for-lookup")
	require.True(t, ok)
	assert.Equal(t, sym, got)
}

func TestIntern_Concurrent(t *testing.T) {
	t.Parallel()

	const workers = 16
	results := make([][]Symbol, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results[w] = append(results[w], Intern(fmt.Sprintf("concurrent_%d", i)))
			}
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		assert.Equal(t, results[0], results[w])
	}
	for i, sym := range results[0] {
		assert.Equal(t, fmt.Sprintf("concurrent_%d", i), sym.String())
	}
}

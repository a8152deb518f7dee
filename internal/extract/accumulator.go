package extract

import "github.com/mvp-joe/chalk-extract/internal/ast"

// Accumulator collects the items of one extraction run. It has a single
// writer and is drained exactly once per run, after which it is empty and may
// serve an unrelated run.
type Accumulator struct {
	items []ast.Item
}

// Append adds item at the end.
func (a *Accumulator) Append(item ast.Item) {
	a.items = append(a.items, item)
}

// Len returns the number of items collected so far.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Drain moves the collected items into a program and empties the accumulator.
func (a *Accumulator) Drain() *ast.Program {
	items := a.items
	a.items = nil
	if items == nil {
		items = []ast.Item{}
	}
	return &ast.Program{Items: items}
}

package ast

import "sync"

// Symbol is a handle into the process-wide name table. Equal names always
// intern to the same Symbol, and a Symbol stays valid for the life of the
// process. The zero Symbol is the empty string.
type Symbol uint32

type interner struct {
	mu      sync.RWMutex
	ids     map[string]Symbol
	strings []string
}

var names = &interner{
	ids:     map[string]Symbol{"": 0},
	strings: []string{""},
}

// Intern returns the symbol for s, adding it to the table on first use.
func Intern(s string) Symbol {
	return names.intern(s)
}

// Lookup returns the symbol for s without adding it.
func Lookup(s string) (Symbol, bool) {
	names.mu.RLock()
	defer names.mu.RUnlock()
	sym, ok := names.ids[s]
	return sym, ok
}

// String returns the text the symbol was interned from.
func (s Symbol) String() string {
	names.mu.RLock()
	defer names.mu.RUnlock()
	if int(s) >= len(names.strings) {
		return ""
	}
	return names.strings[s]
}

func (t *interner) intern(s string) Symbol {
	t.mu.RLock()
	sym, ok := t.ids[s]
	t.mu.RUnlock()
	if ok {
		return sym
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if sym, ok := t.ids[s]; ok {
		return sym
	}
	sym = Symbol(len(t.strings))
	t.strings = append(t.strings, s)
	t.ids[s] = sym
	return sym
}

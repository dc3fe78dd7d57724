// Package symtab implements the parent-linked scope tree that records every
// declaration the parser sees: globals, externs, string literals, function
// signatures, and per-function parameters and locals.
package symtab

import "github.com/gmofishsauce/tc/internal/types"

// Kind distinguishes what a Symbol denotes.
type Kind int

const (
	Func Kind = iota
	Global
	Local
	String
)

// Symbol is one declared name. Offset is a negative rbp-relative frame
// offset for Local, the LC<i> label index for String, and zero for
// Global/Func.
// ParamTypes holds a Func symbol's parameter types in declaration order, used
// for call-site argument checking.
type Symbol struct {
	Kind       Kind
	Type       types.Type
	Name       string
	Offset     int
	ParamTypes []types.Type
}

// NewFuncSymbol builds a Func symbol with room for params to be appended.
func NewFuncSymbol(name string, t types.Type) *Symbol {
	return &Symbol{Kind: Func, Name: name, Type: t, ParamTypes: make([]types.Type, 0, 6)}
}

// AddParam records one more parameter type on a Func symbol, in declaration
// order.
func (s *Symbol) AddParam(t types.Type) {
	s.ParamTypes = append(s.ParamTypes, t)
}

// Scope is one lexical scope: the root (globals/externs/strings/functions),
// a function's parameter scope, or a compound statement's local scope.
type Scope struct {
	parent *Scope
	syms   []*Symbol
}

// New allocates a scope nested inside parent. parent is nil only for the
// root scope of a translation unit.
func New(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Put appends sym to st. Insertion order is significant: it is a function's
// parameter order and the order of the root scope's data section.
func (st *Scope) Put(sym *Symbol) {
	st.syms = append(st.syms, sym)
}

// Get looks up name starting in st and walking to the root, returning the
// first match. It returns nil if no enclosing scope declares name.
func (st *Scope) Get(name string) *Symbol {
	for s := st; s != nil; s = s.parent {
		for _, sym := range s.syms {
			if sym.Name == name {
				return sym
			}
		}
	}
	return nil
}

// GetLastOffset walks st's full parent chain and returns the most-negative
// Local offset seen, or 0 if none. A function's next local is allocated at
// this value minus its alignment, so nested blocks share one frame instead of
// overlapping it.
func (st *Scope) GetLastOffset() int {
	offset := 0
	for s := st; s != nil; s = s.parent {
		for _, sym := range s.syms {
			if sym.Offset < offset {
				offset = sym.Offset
			}
		}
	}
	return offset
}

// Root walks up to and returns st's outermost ancestor.
func (st *Scope) Root() *Scope {
	s := st
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Parent returns st's enclosing scope, or nil at the root.
func (st *Scope) Parent() *Scope { return st.parent }

// Symbols returns st's own symbols in insertion order, excluding ancestors.
func (st *Scope) Symbols() []*Symbol { return st.syms }

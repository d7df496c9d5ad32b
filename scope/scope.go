// Package scope implements the lexically-chained environments Ore code
// runs in. A scope maps names to values and points at its parent; block
// scopes chain to the enclosing scope while function frames chain to the
// closure's captured environment, never to the caller.
package scope

import "ore/types"

// Kind distinguishes block scopes from function-call frames
type Kind int

const (
	KindBlock Kind = iota
	KindFunction
)

// Scope manages variable bindings with lexical scoping
type Scope struct {
	vars   map[string]types.Value
	parent *Scope
	kind   Kind
}

// New creates a root scope (the program/global scope)
func New() *Scope {
	return &Scope{
		vars: make(map[string]types.Value),
	}
}

// NewBlock creates a block scope nested in parent
func NewBlock(parent *Scope) *Scope {
	return &Scope{
		vars:   make(map[string]types.Value),
		parent: parent,
		kind:   KindBlock,
	}
}

// NewFrame creates a function-call frame whose parent is the closure's
// captured environment
func NewFrame(captured *Scope) *Scope {
	return &Scope{
		vars:   make(map[string]types.Value),
		parent: captured,
		kind:   KindFunction,
	}
}

// Kind returns the scope kind
func (s *Scope) Kind() Kind {
	return s.kind
}

// Parent returns the enclosing scope, nil at the root
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Root walks to the outermost (program) scope
func (s *Scope) Root() *Scope {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Lookup finds a name, walking parent scopes.
// Returns (value, true) if found, (nil, false) if not found.
func (s *Scope) Lookup(name string) (types.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if val, ok := sc.vars[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Declare creates or overwrites a binding in this scope only
func (s *Scope) Declare(name string, value types.Value) {
	s.vars[name] = value
}

// Assign rebinds name in the nearest scope that already defines it; if
// no ancestor defines it, a new binding is created in this scope.
func (s *Scope) Assign(name string, value types.Value) {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.vars[name]; ok {
			sc.vars[name] = value
			return
		}
	}
	s.vars[name] = value
}

// AssignGlobal rebinds or declares name in the root scope
func (s *Scope) AssignGlobal(name string, value types.Value) {
	s.Root().vars[name] = value
}

// Each visits every binding in this scope (not its parents).
// The garbage collector uses this to treat bindings as roots.
func (s *Scope) Each(fn func(name string, value types.Value)) {
	for name, value := range s.vars {
		fn(name, value)
	}
}

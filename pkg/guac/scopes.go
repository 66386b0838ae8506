package guac

import (
	"github.com/RaxoCoding/guacamole-lang/pkg/utils"
)

// ----------------------------------------------------------------------------
// Definitions

type DefKind int // Enum to manage what a scope entry stands for

const (
	DefAny  DefKind = iota // Plain entry, created by the checker for assignment targets and parameters
	DefInt                 // Integer value
	DefFunc                // Callable, either a builtin or a user 'funk'
)

// A Definition binds a name to either an integer value or a function. User
// functions borrow their Node from the root AST, which outlives every scope,
// builtins carry no node and are dispatched by name through the registry.
type Definition struct {
	Name    string
	Kind    DefKind
	Builtin bool
	Value   int64
	Node    *Node
}

// ----------------------------------------------------------------------------
// Scopes

// A Scope is the named-value environment shared by the checker (name
// resolution) and the evaluator (value lookup). Entries live on a stack so
// the most recent definition of a name wins, and the scope carries the
// register: the single mutable slot expression results flow through, which is
// what lets the evaluator thread values between recursive calls without
// allocating per node.
type Scope struct {
	defs     utils.Stack[Definition]
	register int64
}

// Initializes and returns to the caller a brand new empty 'Scope'.
func NewScope() *Scope { return &Scope{} }

// NewGlobalScope returns a scope pre-seeded with the builtin registry, the
// starting environment of both the checker and the evaluator.
func NewGlobalScope() *Scope {
	scope := NewScope()
	RegisterBuiltins(scope)
	return scope
}

// Register returns the value currently held by the result register.
func (s *Scope) Register() int64 { return s.register }

// Lookup resolves 'name' to its newest definition, or nil when undefined.
func (s *Scope) Lookup(name string) *Definition {
	for i := 0; i < s.defs.Count(); i++ {
		if def := s.defs.Ref(i); def.Name == name {
			return def
		}
	}

	return nil
}

// Define inserts or updates the entry for 'def.Name': an existing non-builtin
// entry is overwritten in place, an existing builtin silently absorbs the
// write, an unknown name is pushed as a fresh entry.
func (s *Scope) Define(def Definition) {
	if existing := s.Lookup(def.Name); existing != nil {
		if !existing.Builtin {
			existing.Kind = def.Kind
			existing.Value = def.Value
			existing.Node = def.Node
		}
		return
	}

	s.defs.Push(def)
}

// Duplicate returns a by-value copy of every entry, in the same order, with a
// zeroed register. Function calls evaluate their body in such a copy and
// commit named changes back on return.
func (s *Scope) Duplicate() *Scope {
	return &Scope{defs: s.defs.Clone()}
}

// Names lists every defined name, newest first. Feeds the "did you mean"
// suggestions on resolution failures.
func (s *Scope) Names() []string {
	names := make([]string, 0, s.defs.Count())
	for i := 0; i < s.defs.Count(); i++ {
		names = append(names, s.defs.Ref(i).Name)
	}

	return names
}

// Count returns the number of entries in the scope.
func (s *Scope) Count() int { return s.defs.Count() }

// At returns a pointer to the entry 'depth' positions below the newest one.
func (s *Scope) At(depth int) *Definition { return s.defs.Ref(depth) }

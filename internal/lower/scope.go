package lower

import (
	"github.com/ccirgen/ccirgen/internal/ctypes"
	"github.com/ccirgen/ccirgen/internal/ir"
	"github.com/ccirgen/ccirgen/internal/srcnorm"
)

// Term is (CType, IrValue): the universal result of lowering an
// expression or resolving an identifier (§3). The value for an l-value
// term is always a pointer to storage of Type; for an r-value term it is
// the direct IR value of Type, except that aggregates and functions are
// always carried as pointers.
type Term struct {
	Type     ctypes.CType
	Value    ir.Value
	IsLValue bool
}

// Binding is (name, Term, constant flag) — an enumerator binds a
// compile-time constant term (an immediate), every other binding denotes
// storage (an l-value term whose value is the slot's pointer), §3.
type Binding struct {
	Name     string
	Term     Term
	Constant bool
}

// Scope is an ordered list of bindings plus a parent link; lookup walks
// parents outward (global, function, each compound statement, a for's
// init clause), grounded on ailang's TypeEnv.Extend/Lookup chain.
type Scope struct {
	parent   *Scope
	bindings map[string]Binding
	order    []string
}

// NewScope opens a child scope of parent (nil for the translation unit's
// global scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: make(map[string]Binding)}
}

// Define adds a binding visible from this scope onward. Re-defining a
// name already bound in THIS scope (not a parent) is the caller's
// responsibility to reject as a duplicate-identifier error (§7).
func (s *Scope) Define(b Binding) {
	b.Name = srcnorm.String(b.Name)
	if _, exists := s.bindings[b.Name]; !exists {
		s.order = append(s.order, b.Name)
	}
	s.bindings[b.Name] = b
}

// DefinedHere reports whether name is bound directly in this scope
// (ignoring parents) — used to detect duplicate identifiers.
func (s *Scope) DefinedHere(name string) bool {
	_, ok := s.bindings[srcnorm.String(name)]
	return ok
}

// Lookup walks s and its parents, returning the nearest binding for name.
func (s *Scope) Lookup(name string) (Binding, bool) {
	name = srcnorm.String(name)
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Parent returns the enclosing scope, or nil at the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

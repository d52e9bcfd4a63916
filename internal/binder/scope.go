// Package binder implements the name binder and scope tree: a two-pass
// walker over internal/pyast that produces LEGB-scoped variable
// classification plus the static binding diagnostics spec by the error
// codes in codes.go.
package binder

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// ScopeKind distinguishes the scoping rules that apply within a Scope.
// Class scopes are the odd one out under LEGB: names bound directly in a
// class body are not visible to nested function scopes the way module- and
// function-scope names are.
type ScopeKind int

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeClass
	ScopeLambda
	ScopeComprehension
)

// BindingKind classifies how a name came to exist in a scope.
type BindingKind int

const (
	BindingAssignment BindingKind = iota
	BindingParameter
	BindingImport
	BindingFunctionDef
	BindingClassDef
	BindingFor
	BindingWith
	BindingComprehensionTarget
	BindingGlobalDecl   // declared `global` in this scope
	BindingNonlocalDecl // declared `nonlocal` in this scope
)

// Binding is one name's declaration site within a Scope.
type Binding struct {
	Name string
	Kind BindingKind
	Span pyast.Span
}

// ScopeID indexes into a ScopeTree's scope arena. Using an index instead of a
// pointer lets a Scope's parent link be a plain value — no parent/child
// reference cycle for the garbage collector to reason about, and a Scope
// tree can be copied or compared cheaply by ID.
type ScopeID int

const noParent ScopeID = -1

// Scope is one lexical scope: a module, a function/lambda body, a class
// body, or a comprehension. Children are owned by the arena (ScopeTree.scopes)
// by ID; Parent is also just an ID, never a pointer, so the whole tree lives
// in one slice with no cycles.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parent   ScopeID // noParent for the module scope
	Children []ScopeID
	Span     pyast.Span

	bindings  map[string]*Binding
	globals   map[string]bool // names declared `global` in this scope
	nonlocals map[string]bool // names declared `nonlocal` in this scope

	// Free contains names resolved to an enclosing function scope (not
	// module, not class) — Python's cell-variable mechanism.
	Free map[string]bool
	// Cell contains names in this scope that at least one nested function
	// scope captured as Free; these need cell storage at runtime.
	Cell map[string]bool
}

func newScope(id ScopeID, kind ScopeKind, parent ScopeID, span pyast.Span) *Scope {
	return &Scope{
		ID:        id,
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		bindings:  map[string]*Binding{},
		globals:   map[string]bool{},
		nonlocals: map[string]bool{},
		Free:      map[string]bool{},
		Cell:      map[string]bool{},
	}
}

// Bindings returns every name bound directly in this scope, not including
// free/cell classification.
func (s *Scope) Bindings() map[string]*Binding {
	return s.bindings
}

// Declares reports whether name has a direct binding in this scope.
func (s *Scope) Declares(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// ScopeTree is the arena of every Scope produced for one module, plus the
// root module scope's ID.
type ScopeTree struct {
	scopes []*Scope
	Root   ScopeID

	// byNode maps a scope-introducing AST node (FunctionDef, ClassDef,
	// Lambda, Comprehension) to the ScopeID pass 1 allocated for it. Pass 2
	// re-walks the identical *pyast.Module, so these same node pointers
	// recur there too; looking a node up in this map instead of keeping a
	// second, independently incrementing counter means the two passes can
	// never drift out of alignment with each other, even if one of them
	// visits an expression the other doesn't.
	byNode map[pyast.Node]ScopeID
}

func newScopeTree() *ScopeTree {
	return &ScopeTree{byNode: map[pyast.Node]ScopeID{}}
}

func (t *ScopeTree) alloc(kind ScopeKind, parent ScopeID, span pyast.Span) ScopeID {
	id := ScopeID(len(t.scopes))
	scope := newScope(id, kind, parent, span)
	t.scopes = append(t.scopes, scope)
	if parent != noParent {
		p := t.scopes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}

// allocFor is alloc plus recording the scope against the node that
// introduced it, for ScopeFor to recover in pass 2.
func (t *ScopeTree) allocFor(node pyast.Node, kind ScopeKind, parent ScopeID, span pyast.Span) ScopeID {
	id := t.alloc(kind, parent, span)
	t.byNode[node] = id
	return id
}

// ScopeFor returns the ScopeID pass 1 allocated for a scope-introducing node
// (FunctionDef, ClassDef, Lambda, or Comprehension). It panics if node was
// never declared, which would indicate pass 1 and pass 2 disagree about
// which nodes introduce scopes — a bug in the binder itself.
func (t *ScopeTree) ScopeFor(node pyast.Node) ScopeID {
	id, ok := t.byNode[node]
	if !ok {
		panic("binder: no scope declared for node")
	}
	return id
}

// Scope dereferences a ScopeID. Panics on an out-of-range ID, which would
// indicate a bug in the binder itself (every ID returned by the tree is
// valid for the lifetime of that tree).
func (t *ScopeTree) Scope(id ScopeID) *Scope {
	return t.scopes[id]
}

// All returns every scope in allocation order (module scope first).
func (t *ScopeTree) All() []*Scope {
	return t.scopes
}

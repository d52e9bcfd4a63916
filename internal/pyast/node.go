// Package pyast lowers a tree-sitter Python concrete syntax tree into a
// tagged-variant Node sum type that the rest of the analysis core walks by
// exhaustive type switch instead of reflecting over tree-sitter node types
// at every call site.
package pyast

// Span identifies a half-open source range, 1-indexed lines and columns to
// match editor conventions.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Contains reports whether line (1-indexed) falls within the span.
func (s Span) Contains(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// Node is the sum type every construct the binder or symbol worker cares
// about implements. It deliberately does not try to represent every
// tree-sitter-python grammar production — only the ones that introduce
// scopes, bindings, or call-site diagnostics.
type Node interface {
	Span() Span
	node()
}

type base struct {
	span Span
}

func (b base) Span() Span { return b.span }
func (base) node()        {}

// Module is the root of a file's syntax tree.
type Module struct {
	base
	Body []Node
}

// FunctionDef covers both `def` and `async def`.
type FunctionDef struct {
	base
	Name          string
	NameSpan      Span
	TypeParams    []string
	Params        []*Param
	Body          []Node
	Decorators    []Node
	ReturnsAnnot  Node
	IsAsync       bool
	IsLambda      bool // never set by the lowerer: a lambda lowers to its own Lambda node
}

// ClassDef is a `class` statement.
type ClassDef struct {
	base
	Name       string
	NameSpan   Span
	TypeParams []string
	Bases      []Node
	Keywords   []KeywordArg
	Body       []Node
	Decorators []Node
}

// Lambda is an anonymous function expression; it introduces its own scope
// exactly like FunctionDef but has a single expression body.
type Lambda struct {
	base
	Params []*Param
	Body   Node
}

// ComprehensionKind distinguishes the four comprehension forms; all four
// introduce their own scope under Python 3 semantics.
type ComprehensionKind int

const (
	ListComp ComprehensionKind = iota
	SetComp
	DictComp
	GeneratorExp
)

// Comprehension is a list/set/dict/generator comprehension.
type Comprehension struct {
	base
	Kind    ComprehensionKind
	Element Node   // for DictComp this is the key expression
	Value   Node   // DictComp only: the value expression
	Clauses []CompClause
}

// CompClause is one `for target in iter [if cond]*` clause of a comprehension.
type CompClause struct {
	Target Node // assignment target(s): Name, Tuple, List
	Iter   Node
	Ifs    []Node
	IsAsync bool
}

// ParamKind classifies a function parameter for arity/keyword diagnostics.
type ParamKind int

const (
	ParamPositionalOrKeyword ParamKind = iota
	ParamPositionalOnly                // left of a bare "/" marker
	ParamKeywordOnly                   // right of a bare "*" marker or *args
	ParamStarArgs                      // *args
	ParamStarStarKwargs                // **kwargs
)

// Param is one formal parameter.
type Param struct {
	base
	Name       string
	NameSpan   Span
	Kind       ParamKind
	Default    Node
	Annotation Node
}

// KeywordArg is a `name=value` argument or `**expr` in a call, or a class
// keyword like `metaclass=Foo`.
type KeywordArg struct {
	Name  string // empty for **expr
	Value Node
	Span  Span
}

// Arg is one positional call argument.
type Arg struct {
	Value     Node
	IsStar    bool // *expr
	IsDStar   bool // **expr
}

// Call is a call expression.
type Call struct {
	base
	Func     Node
	Args     []Arg
	Keywords []KeywordArg
}

// Name is an identifier reference (load, store, or del context determined
// by where it appears, not encoded here — the binder decides from position).
type Name struct {
	base
	Identifier string
}

// StrLiteral is a single string literal with no interpolation (not an
// f-string, not an implicitly concatenated run of adjacent literals). Its
// Value has quoting and any string-prefix letters (r/b/u/f) already
// stripped. Anything more dynamic than that — f-strings, concatenation —
// isn't a statically-known string and lowers to Raw instead.
type StrLiteral struct {
	base
	Value string
}

// Attribute is `value.attr`.
type Attribute struct {
	base
	Value Node
	Attr  string
}

// Subscript is `value[index]`.
type Subscript struct {
	base
	Value Node
	Index Node
}

// TargetList is a tuple/list assignment target: `a, b = ...` or `[a, b] = ...`.
type TargetList struct {
	base
	Elements []Node
	IsList   bool
}

// StarTarget is `*rest` inside a TargetList.
type StarTarget struct {
	base
	Target Node
}

// Assign is a simple or chained assignment: `a = b = rhs`.
type Assign struct {
	base
	Targets    []Node
	Value      Node
	Annotation Node // non-nil for annotated assignment `x: T = v` / `x: T`
}

// AugAssign is `a += b` and friends; the target is also a reference.
type AugAssign struct {
	base
	Target Node
	Op     string
	Value  Node
}

// Import is `import a.b.c [as alias]`.
type ImportAlias struct {
	DottedName string
	AsName     string // empty if no alias
	Span       Span
}

type Import struct {
	base
	Names []ImportAlias
}

// ImportFrom is `from [dots][module] import name [as alias], ...` or
// `from . import *`.
type ImportFrom struct {
	base
	DotCount   int
	Module     string // dotted name after the dots, may be empty
	Names      []ImportAlias
	IsWildcard bool
	ModuleSpan Span
}

// Global / Nonlocal statements.
type Global struct {
	base
	Names []string
	Spans []Span
}

type Nonlocal struct {
	base
	Names []string
	Spans []Span
}

// For is a `for target in iter: body` statement (not a comprehension).
type For struct {
	base
	Target Node
	Iter   Node
	Body   []Node
	Orelse []Node
	IsAsync bool
}

// With is a `with item [as target], ...: body` statement.
type WithItem struct {
	Context Node
	Target  Node // nil if no `as`
}

type With struct {
	base
	Items   []WithItem
	Body    []Node
	IsAsync bool
}

// Return is a `return [value]` statement.
type Return struct {
	base
	Value Node
}

// TypeParam is a PEP 695 generic type parameter on a def/class/type alias.
type TypeParam struct {
	Name string
	Span Span
}

// ExecCall marks a call to the builtin `exec`/`eval` without attribute
// qualification, relevant to the `unqualified exec` static error.
type ExecCall struct {
	base
	Qualified bool
}

// Raw wraps any construct the lowerer doesn't special-case; it still
// carries its children so name references inside it are found by a
// generic walk, but it introduces no scope and declares no bindings.
type Raw struct {
	base
	Children []Node
}

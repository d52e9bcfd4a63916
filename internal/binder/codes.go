package binder

// Code is a stable diagnostic identifier the publisher maps to a severity
// and a client-facing message. Values never change once shipped: clients
// persist per-code suppression settings (diagnosticSeverityOverrides) keyed
// on these strings.
type Code string

const (
	// CodeUndefinedVariable: a Name reference resolved to no binding in any
	// enclosing scope and is not a known builtin.
	CodeUndefinedVariable Code = "undefined-variable"
	// CodeVariableNotDefinedGlobally: `global x` names a binding that does
	// not exist at module scope and is not a builtin either — distinct from
	// CodeUndefinedVariable because the name is explicitly declared global
	// rather than simply unresolved through LEGB lookup.
	CodeVariableNotDefinedGlobally Code = "variable-not-defined-globally"
	// CodeUnresolvedImport: an Import/ImportFrom's dotted name did not
	// resolve against the path resolver snapshot.
	CodeUnresolvedImport Code = "unresolved-import"
	// CodeVariableNotDefinedNonlocal: `nonlocal x` with no enclosing
	// function scope binding x (Python raises SyntaxError for this at
	// compile time).
	CodeVariableNotDefinedNonlocal Code = "variable-not-defined-nonlocal"
	// CodeGlobalAfterUse: a name is declared `global`/`nonlocal` after it
	// was already used or assigned earlier in the same scope.
	CodeGlobalAfterUse Code = "global-after-use"
	// CodeNonlocalAtModuleScope: a `nonlocal` or `global` declaration
	// appears directly in a module or class scope rather than inside a
	// function or lambda.
	CodeNonlocalAtModuleScope Code = "nonlocal-at-module-scope"
	// CodeUnqualifiedExec: a bare `exec(...)`/`eval(...)` call inside a
	// function that also contains free variables, where CPython's own
	// semantics make the set of free variables unreliable.
	CodeUnqualifiedExec Code = "unqualified-exec"
	// CodeDuplicateParameter: the same parameter name appears twice in one
	// function's parameter list.
	CodeDuplicateParameter Code = "duplicate-parameter"
	// CodeWildcardImportUncertain: `from x import *` at function scope,
	// which CPython itself forbids and which also makes every unresolved
	// name in that scope unreliable to flag as undefined.
	CodeWildcardImportUncertain Code = "wildcard-import-uncertain"

	// The remaining codes are call-site diagnostics: they check a Call
	// against the FunctionDef/ClassDef it resolves to, rather than
	// resolving a Name against a scope.

	// CodeTooManyFunctionArguments: a call passes more positional arguments
	// than the callee accepts (no *args to absorb the excess).
	CodeTooManyFunctionArguments Code = "too-many-function-arguments"
	// CodeParameterMissing: a call omits an argument for a required
	// parameter that has no default and wasn't supplied by keyword either.
	CodeParameterMissing Code = "parameter-missing"
	// CodeNoSelfArgument: an instance method's parameter list has no first
	// parameter to bind `self` to.
	CodeNoSelfArgument Code = "no-self-argument"
	// CodeNoClsArgument: a classmethod's parameter list has no first
	// parameter to bind `cls` to.
	CodeNoClsArgument Code = "no-cls-argument"
	// CodeNoMethodArgument: a method defined with zero parameters at all
	// (neither self nor cls has anywhere to bind).
	CodeNoMethodArgument Code = "no-method-argument"
	// CodeReturnInInit: `__init__` contains a `return <value>` — CPython
	// raises TypeError at call time for a non-None return from __init__.
	CodeReturnInInit Code = "return-in-init"
	// CodeInheritNonClass: a class statement's base expression resolves to
	// something that plainly isn't a class (a string literal, or any
	// expression that lowers to pyast.Raw such as an operator expression).
	CodeInheritNonClass Code = "inherit-non-class"
	// CodePositionalArgumentAfterKeyword: a call supplies a positional
	// argument after a keyword argument, which CPython's grammar forbids.
	CodePositionalArgumentAfterKeyword Code = "positional-argument-after-keyword"
	// CodeUnknownParameterName: a call's keyword argument name doesn't
	// match any parameter the callee declares, and the callee has no
	// **kwargs to absorb it.
	CodeUnknownParameterName Code = "unknown-parameter-name"
	// CodeParameterAlreadySpecified: a call binds the same parameter twice
	// (once positionally, once by keyword, or twice by keyword).
	CodeParameterAlreadySpecified Code = "parameter-already-specified"
	// CodePositionalOnlyNamed: a call passes by keyword a parameter the
	// callee declared positional-only (left of a bare `/`).
	CodePositionalOnlyNamed Code = "positional-only-named"
	// CodeTypingGenericArguments: `typing.Generic[...]` is used with an
	// argument list that isn't a tuple of distinct type variables.
	CodeTypingGenericArguments Code = "typing-generic-arguments"
	// CodeTypingTypeVarArguments: `typing.TypeVar(...)` is called with an
	// argument shape the runtime itself would reject (missing name, or a
	// name argument that isn't a string literal).
	CodeTypingTypeVarArguments Code = "typing-typevar-arguments"
	// CodeTypingNewTypeArguments: `typing.NewType(...)` is called with
	// fewer than its two required arguments, or a non-literal name.
	CodeTypingNewTypeArguments Code = "typing-newtype-arguments"
	// CodeTooManyPositionalArgumentsBeforeStar: a call that also unpacks a
	// `*expr` argument passes more plain positional arguments before the
	// unpack than the callee has positional parameters, and the callee has
	// no `*args` to absorb them.
	CodeTooManyPositionalArgumentsBeforeStar Code = "too-many-positional-arguments-before-star"
	// CodeTypeVarLinter: a TypeVar assigned to a name other than the one
	// its own first argument names, e.g. `T = TypeVar("U")`, which every
	// type checker treats as ill-formed.
	CodeTypeVarLinter Code = "typevar-linter"
)

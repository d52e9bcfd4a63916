package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/python-language-server-sub014/internal/pyast"
)

func bindSource(t *testing.T, src string) (*ScopeTree, []Diagnostic) {
	t.Helper()
	mod, err := pyast.Parse([]byte(src))
	require.NoError(t, err)
	return Bind(mod, "/project/mod.py", NoResolver{})
}

func codesOf(diags []Diagnostic) []Code {
	out := make([]Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestBind_SimpleAssignmentHasNoUndefinedName(t *testing.T) {
	_, diags := bindSource(t, "x = 1\nprint(x)\n")
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_UndefinedNameFlagged(t *testing.T) {
	_, diags := bindSource(t, "print(totally_unbound)\n")
	assert.Contains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_FunctionParamsVisibleInBody(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\n")
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_ClassBodyNotVisibleToNestedMethod(t *testing.T) {
	_, diags := bindSource(t, `
class Widget:
    size = 10
    def area(self):
        return size * size
`)
	assert.Contains(t, codesOf(diags), CodeUndefinedVariable, "class attributes aren't in a method's LEGB chain")
}

func TestBind_NestedFunctionSeesEnclosingLocal(t *testing.T) {
	_, diags := bindSource(t, `
def outer():
    x = 1
    def inner():
        return x
    return inner
`)
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_NestedFunctionMarksFreeAndCell(t *testing.T) {
	tree, _ := bindSource(t, `
def outer():
    x = 1
    def inner():
        return x
    return inner
`)
	var outerScope, innerScope *Scope
	for _, s := range tree.All() {
		if s.Kind == ScopeFunction && s.Declares("x") {
			outerScope = s
		}
		if s.Kind == ScopeFunction && s.Free["x"] {
			innerScope = s
		}
	}
	require.NotNil(t, outerScope)
	require.NotNil(t, innerScope)
	assert.True(t, outerScope.Cell["x"])
}

func TestBind_NonlocalWithNoEnclosingBindingFails(t *testing.T) {
	_, diags := bindSource(t, `
def outer():
    def inner():
        nonlocal missing
        missing = 1
    return inner
`)
	assert.Contains(t, codesOf(diags), CodeVariableNotDefinedNonlocal)
}

func TestBind_NonlocalAtModuleScopeFails(t *testing.T) {
	_, diags := bindSource(t, "nonlocal x\n")
	assert.Contains(t, codesOf(diags), CodeNonlocalAtModuleScope)
}

func TestBind_NonlocalResolvesAgainstEnclosingFunction(t *testing.T) {
	_, diags := bindSource(t, `
def outer():
    x = 1
    def inner():
        nonlocal x
        x = 2
    return inner
`)
	assert.NotContains(t, codesOf(diags), CodeVariableNotDefinedNonlocal)
}

func TestBind_DuplicateParameterFlagged(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b, a):\n    return a\n")
	assert.Contains(t, codesOf(diags), CodeDuplicateParameter)
}

func TestBind_WildcardImportInFunctionFlagged(t *testing.T) {
	_, diags := bindSource(t, `
def f():
    from os import *
    return path
`)
	assert.Contains(t, codesOf(diags), CodeWildcardImportUncertain)
}

func TestBind_WildcardImportAtModuleScopeAllowed(t *testing.T) {
	_, diags := bindSource(t, "from os import *\n")
	assert.NotContains(t, codesOf(diags), CodeWildcardImportUncertain)
}

func TestBind_ComprehensionTargetIsScopedToItself(t *testing.T) {
	_, diags := bindSource(t, "squares = [x * x for x in range(10)]\nprint(x)\n")
	assert.Contains(t, codesOf(diags), CodeUndefinedVariable, "comprehension targets don't leak into the enclosing scope")
}

func TestBind_ComprehensionNestedInCallArgumentDoesNotPanic(t *testing.T) {
	_, diags := bindSource(t, "total = sum(x * x for x in range(10))\n")
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_LambdaNestedInAssignmentValueDoesNotPanic(t *testing.T) {
	_, diags := bindSource(t, "double = lambda x: x * 2\nprint(double(3))\n")
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_ComprehensionInsideDecoratorArgumentDoesNotPanic(t *testing.T) {
	_, diags := bindSource(t, `
def register(names):
    return lambda f: f

@register(name for name in ["a", "b"])
def handler():
    pass
`)
	assert.NotContains(t, codesOf(diags), CodeUndefinedVariable)
}

func TestBind_UnresolvedImportUsesResolver(t *testing.T) {
	mod, err := pyast.Parse([]byte("import nonexistent_package\n"))
	require.NoError(t, err)
	_, diags := Bind(mod, "/project/mod.py", stubResolver{resolvesAbsolute: false})
	assert.Contains(t, codesOf(diags), CodeUnresolvedImport)
}

func TestBind_ResolvedImportProducesNoDiagnostic(t *testing.T) {
	mod, err := pyast.Parse([]byte("import sibling\n"))
	require.NoError(t, err)
	_, diags := Bind(mod, "/project/mod.py", stubResolver{resolvesAbsolute: true})
	assert.NotContains(t, codesOf(diags), CodeUnresolvedImport)
}

func TestBind_RelativeImportUsesResolver(t *testing.T) {
	mod, err := pyast.Parse([]byte("from . import helper\n"))
	require.NoError(t, err)
	_, diags := Bind(mod, "/project/pkg/mod.py", stubResolver{resolvesRelative: false})
	assert.Contains(t, codesOf(diags), CodeUnresolvedImport)
}

type stubResolver struct {
	resolvesAbsolute bool
	resolvesRelative bool
}

func (s stubResolver) ResolveAbsolute(string, string) bool          { return s.resolvesAbsolute }
func (s stubResolver) ResolveRelative(string, int, string) bool { return s.resolvesRelative }

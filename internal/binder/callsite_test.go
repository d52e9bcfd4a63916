package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallSite_TooManyPositionalArguments(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(1, 2, 3)\n")
	assert.Contains(t, codesOf(diags), CodeTooManyFunctionArguments)
}

func TestCallSite_CorrectArityNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(1, 2)\n")
	assert.NotContains(t, codesOf(diags), CodeTooManyFunctionArguments)
	assert.NotContains(t, codesOf(diags), CodeParameterMissing)
}

func TestCallSite_StarArgsAbsorbsExtraPositionalArguments(t *testing.T) {
	_, diags := bindSource(t, "def f(a, *rest):\n    return a\nf(1, 2, 3, 4)\n")
	assert.NotContains(t, codesOf(diags), CodeTooManyFunctionArguments)
}

func TestCallSite_ParameterMissing(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(1)\n")
	assert.Contains(t, codesOf(diags), CodeParameterMissing)
}

func TestCallSite_ParameterMissingSatisfiedByDefault(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b=2):\n    return a + b\nf(1)\n")
	assert.NotContains(t, codesOf(diags), CodeParameterMissing)
}

func TestCallSite_ParameterMissingSatisfiedByKeyword(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(1, b=2)\n")
	assert.NotContains(t, codesOf(diags), CodeParameterMissing)
}

func TestCallSite_UnknownParameterName(t *testing.T) {
	_, diags := bindSource(t, "def f(a):\n    return a\nf(a=1, b=2)\n")
	assert.Contains(t, codesOf(diags), CodeUnknownParameterName)
}

func TestCallSite_UnknownParameterNameAbsorbedByKwargs(t *testing.T) {
	_, diags := bindSource(t, "def f(a, **rest):\n    return a\nf(a=1, b=2)\n")
	assert.NotContains(t, codesOf(diags), CodeUnknownParameterName)
}

func TestCallSite_ParameterAlreadySpecified(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(1, a=2)\n")
	assert.Contains(t, codesOf(diags), CodeParameterAlreadySpecified)
}

func TestCallSite_PositionalOnlyNamed(t *testing.T) {
	_, diags := bindSource(t, "def f(a, /, b):\n    return a + b\nf(a=1, b=2)\n")
	assert.Contains(t, codesOf(diags), CodePositionalOnlyNamed)
}

func TestCallSite_PositionalArgumentAfterKeyword(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nf(b=2, 1)\n")
	assert.Contains(t, codesOf(diags), CodePositionalArgumentAfterKeyword)
}

func TestCallSite_TooManyPositionalArgumentsBeforeStarUnpack(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nextra = [1, 2]\nf(1, 2, 3, *extra)\n")
	assert.Contains(t, codesOf(diags), CodeTooManyPositionalArgumentsBeforeStar)
}

func TestCallSite_StarUnpackNotFlaggedWhenWithinArity(t *testing.T) {
	_, diags := bindSource(t, "def f(a, b):\n    return a + b\nargs = [1, 2]\nf(*args)\n")
	assert.NotContains(t, codesOf(diags), CodeTooManyPositionalArgumentsBeforeStar)
}

func TestCallSite_NoSelfArgument(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    def area(*, scale):\n        return scale\n")
	assert.Contains(t, codesOf(diags), CodeNoSelfArgument)
}

func TestCallSite_SelfArgumentPresentNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    def area(self):\n        return 1\n")
	assert.NotContains(t, codesOf(diags), CodeNoSelfArgument)
}

func TestCallSite_NoMethodArgumentWhenNoParamsAtAll(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    def area():\n        return 1\n")
	assert.Contains(t, codesOf(diags), CodeNoMethodArgument)
}

func TestCallSite_StaticmethodDoesNotRequireSelf(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    @staticmethod\n    def area():\n        return 1\n")
	assert.NotContains(t, codesOf(diags), CodeNoSelfArgument)
	assert.NotContains(t, codesOf(diags), CodeNoMethodArgument)
}

func TestCallSite_NoClsArgumentForClassmethod(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    @classmethod\n    def make(*, count):\n        return count\n")
	assert.Contains(t, codesOf(diags), CodeNoClsArgument)
}

func TestCallSite_ClsArgumentPresentNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    @classmethod\n    def make(cls):\n        return cls()\n")
	assert.NotContains(t, codesOf(diags), CodeNoClsArgument)
}

func TestCallSite_ReturnInInit(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    def __init__(self):\n        return 1\n")
	assert.Contains(t, codesOf(diags), CodeReturnInInit)
}

func TestCallSite_BareReturnInInitNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "class Widget:\n    def __init__(self):\n        return\n")
	assert.NotContains(t, codesOf(diags), CodeReturnInInit)
}

func TestCallSite_ReturnInNestedFunctionInsideInitNotFlagged(t *testing.T) {
	_, diags := bindSource(t, `
class Widget:
    def __init__(self):
        def helper():
            return 1
        helper()
`)
	assert.NotContains(t, codesOf(diags), CodeReturnInInit)
}

func TestCallSite_InheritNonClass(t *testing.T) {
	_, diags := bindSource(t, "class Widget(\"not a class\"):\n    pass\n")
	assert.Contains(t, codesOf(diags), CodeInheritNonClass)
}

func TestCallSite_InheritFromNameNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "class Base:\n    pass\nclass Widget(Base):\n    pass\n")
	assert.NotContains(t, codesOf(diags), CodeInheritNonClass)
}

func TestCallSite_TypingGenericSingleTypeVarNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "from typing import Generic, TypeVar\nT = TypeVar(\"T\")\nclass Box(Generic[T]):\n    pass\n")
	assert.NotContains(t, codesOf(diags), CodeTypingGenericArguments)
}

func TestCallSite_TypeVarMissingNameArgument(t *testing.T) {
	_, diags := bindSource(t, "from typing import TypeVar\nT = TypeVar()\n")
	assert.Contains(t, codesOf(diags), CodeTypingTypeVarArguments)
}

func TestCallSite_TypeVarNonLiteralNameArgument(t *testing.T) {
	_, diags := bindSource(t, "from typing import TypeVar\nname = \"T\"\nT = TypeVar(name)\n")
	assert.Contains(t, codesOf(diags), CodeTypingTypeVarArguments)
}

func TestCallSite_NewTypeMissingArguments(t *testing.T) {
	_, diags := bindSource(t, "from typing import NewType\nUserId = NewType(\"UserId\")\n")
	assert.Contains(t, codesOf(diags), CodeTypingNewTypeArguments)
}

func TestCallSite_NewTypeWellFormedNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "from typing import NewType\nUserId = NewType(\"UserId\", int)\n")
	assert.NotContains(t, codesOf(diags), CodeTypingNewTypeArguments)
}

func TestCallSite_TypeVarLinterMismatchedName(t *testing.T) {
	_, diags := bindSource(t, "from typing import TypeVar\nT = TypeVar(\"U\")\n")
	assert.Contains(t, codesOf(diags), CodeTypeVarLinter)
}

func TestCallSite_TypeVarLinterMatchingNameNotFlagged(t *testing.T) {
	_, diags := bindSource(t, "from typing import TypeVar\nT = TypeVar(\"T\")\n")
	assert.NotContains(t, codesOf(diags), CodeTypeVarLinter)
}

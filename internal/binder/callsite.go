package binder

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// checkCallSites walks mod looking for the call-site and definition-site
// errors spec by the codes in codes.go beyond plain name resolution:
// argument-count/keyword mismatches against a statically known callee,
// malformed method shapes (missing self/cls, a value-returning __init__, a
// non-class base), and common typing-module misuse (Generic/TypeVar/
// NewType called with a shape the runtime itself would reject). It's a
// separate, self-contained pass from declare/resolve's scope analysis —
// nothing here touches the ScopeTree.
func checkCallSites(mod *pyast.Module) []Diagnostic {
	c := &callSiteChecker{funcs: map[string]*pyast.FunctionDef{}}
	c.collectModuleFunctions(mod.Body)
	c.walkBody(mod.Body, nil)
	return c.diags
}

type callSiteChecker struct {
	diags []Diagnostic
	// funcs holds every module-scope function, by name, so a plain call to
	// one of them can be checked for arity/keyword mismatches. Calls to
	// methods, nested functions, or anything resolved dynamically aren't
	// checked — a callee has to be a statically known FunctionDef.
	funcs map[string]*pyast.FunctionDef
}

func (c *callSiteChecker) report(code Code, span pyast.Span, msg string) {
	c.diags = append(c.diags, Diagnostic{Code: code, Span: span, Message: msg})
}

func (c *callSiteChecker) collectModuleFunctions(body []pyast.Node) {
	for _, n := range body {
		if fd, ok := n.(*pyast.FunctionDef); ok && fd.Name != "" {
			if _, exists := c.funcs[fd.Name]; !exists {
				c.funcs[fd.Name] = fd
			}
		}
	}
}

// walkBody visits every statement in body, recursing into nested
// constructs. class is the innermost enclosing ClassDef, or nil outside any
// class body, used for method-shape checks (self/cls, __init__'s return).
func (c *callSiteChecker) walkBody(body []pyast.Node, class *pyast.ClassDef) {
	for _, n := range body {
		c.walkStmt(n, class)
	}
}

func (c *callSiteChecker) walkStmt(n pyast.Node, class *pyast.ClassDef) {
	switch t := n.(type) {
	case *pyast.FunctionDef:
		c.checkMethodShape(t, class)
		c.walkExprs(t.Decorators)
		for _, p := range t.Params {
			c.walkExpr(p.Default)
			c.walkExpr(p.Annotation)
		}
		c.walkExpr(t.ReturnsAnnot)
		// A function nested inside a method is not itself a method of the
		// enclosing class, even though it's lexically inside the class body.
		c.walkBody(t.Body, nil)

	case *pyast.ClassDef:
		c.checkBases(t)
		c.walkExprs(t.Decorators)
		c.walkExprs(t.Bases)
		for _, kw := range t.Keywords {
			c.walkExpr(kw.Value)
		}
		c.walkBody(t.Body, t)

	case *pyast.Assign:
		c.walkExpr(t.Value)
		c.walkExpr(t.Annotation)
		c.checkTypeVarLinter(t)

	case *pyast.AugAssign:
		c.walkExpr(t.Value)

	case *pyast.For:
		c.walkExpr(t.Iter)
		c.walkBody(t.Body, class)
		c.walkBody(t.Orelse, class)

	case *pyast.With:
		for _, item := range t.Items {
			c.walkExpr(item.Context)
		}
		c.walkBody(t.Body, class)

	case *pyast.Return:
		c.walkExpr(t.Value)

	case *pyast.Raw:
		for _, child := range t.Children {
			c.walkStmt(child, class)
		}

	default:
		c.walkExpr(n)
	}
}

func (c *callSiteChecker) walkExprs(nodes []pyast.Node) {
	for _, n := range nodes {
		c.walkExpr(n)
	}
}

func (c *callSiteChecker) walkExpr(n pyast.Node) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *pyast.Call:
		c.checkCall(t)
		c.walkExpr(t.Func)
		for _, a := range t.Args {
			c.walkExpr(a.Value)
		}
		for _, kw := range t.Keywords {
			c.walkExpr(kw.Value)
		}

	case *pyast.Attribute:
		c.walkExpr(t.Value)

	case *pyast.Subscript:
		c.checkGenericSubscript(t)
		c.walkExpr(t.Value)
		c.walkExpr(t.Index)

	case *pyast.Lambda:
		for _, p := range t.Params {
			c.walkExpr(p.Default)
		}
		c.walkExpr(t.Body)

	case *pyast.Comprehension:
		for _, clause := range t.Clauses {
			c.walkExpr(clause.Iter)
			c.walkExprs(clause.Ifs)
		}
		c.walkExpr(t.Element)
		c.walkExpr(t.Value)

	case *pyast.Raw:
		c.walkExprs(t.Children)
	}
}

// checkMethodShape flags a method (a FunctionDef directly in a class body)
// that has nowhere to bind self/cls, and an __init__ that returns a value.
func (c *callSiteChecker) checkMethodShape(fn *pyast.FunctionDef, class *pyast.ClassDef) {
	if class == nil {
		return
	}
	isStatic, isClassMethod := decoratorKind(fn.Decorators)
	if fn.Name == "__new__" {
		isClassMethod = true // CPython implicitly treats __new__ as taking cls
	}

	if !isStatic {
		switch {
		case len(fn.Params) == 0:
			c.report(CodeNoMethodArgument, fn.NameSpan, "method \""+fn.Name+"\" has no parameters to bind self/cls to")
		case !bindsFirstPositionally(fn.Params[0]):
			if isClassMethod {
				c.report(CodeNoClsArgument, fn.NameSpan, "classmethod \""+fn.Name+"\" has no positional parameter to bind cls to")
			} else {
				c.report(CodeNoSelfArgument, fn.NameSpan, "method \""+fn.Name+"\" has no positional parameter to bind self to")
			}
		}
	}

	if fn.Name == "__init__" {
		if ret := findReturnWithValue(fn.Body); ret != nil {
			c.report(CodeReturnInInit, ret.Span(), "__init__ must not return a value")
		}
	}
}

func bindsFirstPositionally(p *pyast.Param) bool {
	return p.Kind == pyast.ParamPositionalOrKeyword || p.Kind == pyast.ParamPositionalOnly
}

func decoratorKind(decorators []pyast.Node) (isStatic, isClassMethod bool) {
	for _, d := range decorators {
		switch decoratorName(d) {
		case "staticmethod":
			isStatic = true
		case "classmethod":
			isClassMethod = true
		}
	}
	return
}

func decoratorName(n pyast.Node) string {
	switch t := n.(type) {
	case *pyast.Name:
		return t.Identifier
	case *pyast.Attribute:
		return t.Attr
	case *pyast.Call:
		return decoratorName(t.Func)
	}
	return ""
}

// findReturnWithValue looks for a `return <value>` directly in body,
// without descending into a nested function/lambda/class — a return inside
// one of those belongs to that inner scope, not to the function body being
// scanned.
func findReturnWithValue(body []pyast.Node) *pyast.Return {
	var found *pyast.Return
	visit := func(n pyast.Node) bool {
		if found != nil {
			return false
		}
		switch t := n.(type) {
		case *pyast.Return:
			if t.Value != nil {
				found = t
			}
			return false
		case *pyast.FunctionDef, *pyast.Lambda, *pyast.ClassDef:
			return false
		}
		return true
	}
	for _, n := range body {
		pyast.Walk(n, visit)
		if found != nil {
			return found
		}
	}
	return nil
}

// checkBases flags a base-class expression that plainly can't be a class:
// a literal, or anything else that lowers to a generic Raw expression
// (binary/boolean/comparison operators, f-strings, conditional expressions)
// rather than a name, attribute, subscript, or call.
func (c *callSiteChecker) checkBases(cd *pyast.ClassDef) {
	for _, b := range cd.Bases {
		switch b.(type) {
		case *pyast.StrLiteral, *pyast.Raw:
			c.report(CodeInheritNonClass, b.Span(), "class \""+cd.Name+"\" inherits from an expression that cannot be a class")
		}
	}
}

// checkCall runs every call-site check that applies to call.
func (c *callSiteChecker) checkCall(call *pyast.Call) {
	c.checkArgOrder(call)
	c.checkTypingCall(call)

	name, ok := call.Func.(*pyast.Name)
	if !ok {
		return
	}
	fn, ok := c.funcs[name.Identifier]
	if !ok {
		return
	}
	c.checkArity(call, fn)
}

// checkArgOrder flags a positional argument appearing (by source position)
// after the call's earliest keyword argument, which CPython's own grammar
// forbids.
func (c *callSiteChecker) checkArgOrder(call *pyast.Call) {
	if len(call.Keywords) == 0 || len(call.Args) == 0 {
		return
	}
	earliestKw := call.Keywords[0].Span
	for _, kw := range call.Keywords[1:] {
		if spanBefore(kw.Span, earliestKw) {
			earliestKw = kw.Span
		}
	}
	for _, a := range call.Args {
		if a.Value == nil {
			continue
		}
		if spanBefore(earliestKw, a.Value.Span()) {
			c.report(CodePositionalArgumentAfterKeyword, a.Value.Span(), "positional argument follows a keyword argument")
		}
	}
}

func spanBefore(a, b pyast.Span) bool {
	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}
	return a.StartColumn < b.StartColumn
}

// checkArity compares call against fn's declared parameters. Any `*expr` or
// `**expr` argument makes the true argument count unknowable statically, so
// those bail out early rather than risk a false positive — except the
// narrower "too many positional arguments before the star-unpack" case,
// which only needs the plain positional arguments preceding the unpack.
func (c *callSiteChecker) checkArity(call *pyast.Call, fn *pyast.FunctionDef) {
	var positional []*pyast.Param
	byName := map[string]*pyast.Param{}
	hasStarArgs, hasStarStarKwargs := false, false
	for _, p := range fn.Params {
		switch p.Kind {
		case pyast.ParamStarArgs:
			hasStarArgs = true
		case pyast.ParamStarStarKwargs:
			hasStarStarKwargs = true
		case pyast.ParamPositionalOnly, pyast.ParamPositionalOrKeyword:
			positional = append(positional, p)
		}
		if p.Name != "" {
			byName[p.Name] = p
		}
	}

	for _, kw := range call.Keywords {
		if kw.Name == "" { // **expr defeats static keyword checking entirely
			return
		}
	}

	plainPositional := 0
	sawStarArg := false
	for _, a := range call.Args {
		if a.IsStar {
			sawStarArg = true
			continue
		}
		if !sawStarArg {
			plainPositional++
		}
	}

	if sawStarArg {
		if !hasStarArgs && plainPositional > len(positional) {
			c.report(CodeTooManyPositionalArgumentsBeforeStar, call.Span(), "too many positional arguments before the unpacked argument for \""+fn.Name+"\"")
		}
		return
	}

	if !hasStarArgs && plainPositional > len(positional) {
		extra := call.Args[len(positional)]
		c.report(CodeTooManyFunctionArguments, extra.Value.Span(), "too many positional arguments for \""+fn.Name+"\"")
	}

	bound := map[string]bool{}
	for i := range call.Args {
		if i >= len(positional) {
			break
		}
		bound[positional[i].Name] = true
	}

	for _, kw := range call.Keywords {
		p, ok := byName[kw.Name]
		if !ok {
			if !hasStarStarKwargs {
				c.report(CodeUnknownParameterName, kw.Span, "\""+fn.Name+"\" has no parameter named \""+kw.Name+"\"")
			}
			continue
		}
		if p.Kind == pyast.ParamPositionalOnly {
			c.report(CodePositionalOnlyNamed, kw.Span, "parameter \""+kw.Name+"\" of \""+fn.Name+"\" is positional-only")
			continue
		}
		if bound[kw.Name] {
			c.report(CodeParameterAlreadySpecified, kw.Span, "parameter \""+kw.Name+"\" of \""+fn.Name+"\" is already specified")
			continue
		}
		bound[kw.Name] = true
	}

	for _, p := range fn.Params {
		if p.Kind != pyast.ParamPositionalOnly && p.Kind != pyast.ParamPositionalOrKeyword && p.Kind != pyast.ParamKeywordOnly {
			continue
		}
		if p.Default != nil || bound[p.Name] {
			continue
		}
		c.report(CodeParameterMissing, call.Span(), "missing required argument \""+p.Name+"\" for \""+fn.Name+"\"")
	}
}

// checkTypingCall flags typing.TypeVar/NewType calls with an argument shape
// the runtime itself would reject.
func (c *callSiteChecker) checkTypingCall(call *pyast.Call) {
	switch calleeName(call.Func) {
	case "TypeVar":
		c.checkTypeVarCall(call)
	case "NewType":
		c.checkNewTypeCall(call)
	}
}

func calleeName(n pyast.Node) string {
	switch t := n.(type) {
	case *pyast.Name:
		return t.Identifier
	case *pyast.Attribute:
		return t.Attr
	}
	return ""
}

func (c *callSiteChecker) checkTypeVarCall(call *pyast.Call) {
	if len(call.Args) == 0 {
		c.report(CodeTypingTypeVarArguments, call.Span(), "TypeVar requires a name argument")
		return
	}
	if _, ok := call.Args[0].Value.(*pyast.StrLiteral); !ok {
		c.report(CodeTypingTypeVarArguments, call.Args[0].Value.Span(), "TypeVar's name argument must be a string literal")
	}
}

func (c *callSiteChecker) checkNewTypeCall(call *pyast.Call) {
	if len(call.Args) < 2 {
		c.report(CodeTypingNewTypeArguments, call.Span(), "NewType requires a name and a base type")
		return
	}
	if _, ok := call.Args[0].Value.(*pyast.StrLiteral); !ok {
		c.report(CodeTypingNewTypeArguments, call.Args[0].Value.Span(), "NewType's name argument must be a string literal")
	}
}

// checkGenericSubscript flags `Generic[...]` used with an empty argument
// list, a duplicate type variable, or an argument that isn't a bare name
// (and so can't be a type variable at all).
func (c *callSiteChecker) checkGenericSubscript(sub *pyast.Subscript) {
	if !isGenericBase(sub.Value) {
		return
	}
	elems := subscriptElements(sub.Index)
	if len(elems) == 0 {
		c.report(CodeTypingGenericArguments, sub.Span(), "Generic[] requires at least one type variable")
		return
	}
	seen := map[string]bool{}
	for _, e := range elems {
		name, ok := e.(*pyast.Name)
		if !ok {
			c.report(CodeTypingGenericArguments, e.Span(), "Generic[...] arguments must be type variables")
			continue
		}
		if seen[name.Identifier] {
			c.report(CodeTypingGenericArguments, e.Span(), "Generic[...] lists \""+name.Identifier+"\" more than once")
		}
		seen[name.Identifier] = true
	}
}

func isGenericBase(n pyast.Node) bool {
	switch t := n.(type) {
	case *pyast.Name:
		return t.Identifier == "Generic"
	case *pyast.Attribute:
		return t.Attr == "Generic"
	}
	return false
}

func subscriptElements(index pyast.Node) []pyast.Node {
	if index == nil {
		return nil
	}
	if raw, ok := index.(*pyast.Raw); ok {
		return raw.Children
	}
	return []pyast.Node{index}
}

// checkTypeVarLinter flags `T = TypeVar("U")`, where the name the TypeVar
// was given doesn't match the variable it's assigned to — every type
// checker treats this as ill-formed, since the two names diverging is
// almost always a copy-paste mistake.
func (c *callSiteChecker) checkTypeVarLinter(assign *pyast.Assign) {
	if len(assign.Targets) != 1 {
		return
	}
	target, ok := assign.Targets[0].(*pyast.Name)
	if !ok {
		return
	}
	call, ok := assign.Value.(*pyast.Call)
	if !ok || calleeName(call.Func) != "TypeVar" {
		return
	}
	if len(call.Args) == 0 {
		return
	}
	lit, ok := call.Args[0].Value.(*pyast.StrLiteral)
	if !ok {
		return
	}
	if lit.Value != target.Identifier {
		c.report(CodeTypeVarLinter, assign.Span(), "TypeVar \""+lit.Value+"\" assigned to \""+target.Identifier+"\"; names should match")
	}
}

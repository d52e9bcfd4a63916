package binder

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// resolver runs the binder's second pass. It re-walks the same *pyast.Module
// declare.go already walked and recovers each FunctionDef/ClassDef/Lambda/
// Comprehension's scope by looking the node up in tree.ScopeFor — the same
// node pointers recur in both passes, so identity, not allocation order,
// ties a pass-2 visit back to the scope pass 1 built for it.
type resolver struct {
	tree        *ScopeTree
	filePath    string
	imports     ImportResolver
	diags       []Diagnostic
	suspect     map[ScopeID]bool // scope saw a wildcard import; suppress undefined-name noise there
	execPending []pendingExecCheck
}

// Bind runs both binder passes over mod and returns the finished scope tree
// plus every static diagnostic found along the way.
func Bind(mod *pyast.Module, filePath string, imports ImportResolver) (*ScopeTree, []Diagnostic) {
	if imports == nil {
		imports = NoResolver{}
	}
	tree := Declare(mod)
	r := &resolver{tree: tree, filePath: filePath, imports: imports, suspect: map[ScopeID]bool{}}
	r.checkDuplicateParams(tree.Root, nil)
	r.resolveBody(tree.Root, mod.Body)
	r.finishExecChecks()
	r.diags = append(r.diags, checkCallSites(mod)...)
	return tree, r.diags
}

func (r *resolver) report(code Code, span pyast.Span, msg string) {
	r.diags = append(r.diags, Diagnostic{Code: code, Span: span, Message: msg})
}

func (r *resolver) resolveBody(scope ScopeID, body []pyast.Node) {
	for _, n := range body {
		r.resolveStmt(scope, n)
	}
}

func (r *resolver) resolveStmt(scope ScopeID, n pyast.Node) {
	switch t := n.(type) {
	case *pyast.FunctionDef:
		for _, dec := range t.Decorators {
			r.resolveExpr(scope, dec)
		}
		for _, p := range t.Params {
			if p.Default != nil {
				r.resolveExpr(scope, p.Default)
			}
			if p.Annotation != nil {
				r.resolveExpr(scope, p.Annotation)
			}
		}
		if t.ReturnsAnnot != nil {
			r.resolveExpr(scope, t.ReturnsAnnot)
		}
		fnScope := r.tree.ScopeFor(t)
		r.checkDuplicateParams(fnScope, t.Params)
		r.checkExecInFunction(fnScope, t.Body)
		r.resolveBody(fnScope, t.Body)

	case *pyast.ClassDef:
		for _, dec := range t.Decorators {
			r.resolveExpr(scope, dec)
		}
		for _, b := range t.Bases {
			r.resolveExpr(scope, b)
		}
		for _, kw := range t.Keywords {
			r.resolveExpr(scope, kw.Value)
		}
		classScope := r.tree.ScopeFor(t)
		r.resolveBody(classScope, t.Body)

	case *pyast.Assign:
		if t.Value != nil {
			r.resolveExpr(scope, t.Value)
		}
		if t.Annotation != nil {
			r.resolveExpr(scope, t.Annotation)
		}
		for _, target := range t.Targets {
			r.resolveTargetRefs(scope, target)
		}

	case *pyast.AugAssign:
		r.resolveTargetRefs(scope, t.Target)
		r.resolveExpr(scope, t.Value)
		r.resolveName(scope, asName(t.Target))

	case *pyast.Import:
		for _, alias := range t.Names {
			if !r.imports.ResolveAbsolute(alias.DottedName, r.filePath) {
				r.report(CodeUnresolvedImport, alias.Span, "import \""+alias.DottedName+"\" could not be resolved")
			}
		}

	case *pyast.ImportFrom:
		r.resolveImportFrom(scope, t)

	case *pyast.Global:
		s := r.tree.Scope(scope)
		for i, name := range t.Names {
			if s.Kind != ScopeFunction && s.Kind != ScopeLambda {
				r.report(CodeNonlocalAtModuleScope, t.Spans[i], "global declaration outside a function has no effect")
			}
		}

	case *pyast.Nonlocal:
		r.checkNonlocalBindings(scope, t)

	case *pyast.For:
		r.resolveExpr(scope, t.Iter)
		r.resolveTargetRefs(scope, t.Target)
		r.resolveBody(scope, t.Body)
		r.resolveBody(scope, t.Orelse)

	case *pyast.With:
		for _, item := range t.Items {
			r.resolveExpr(scope, item.Context)
			if item.Target != nil {
				r.resolveTargetRefs(scope, item.Target)
			}
		}
		r.resolveBody(scope, t.Body)

	case *pyast.Return:
		if t.Value != nil {
			r.resolveExpr(scope, t.Value)
		}

	case *pyast.Raw:
		for _, child := range t.Children {
			r.resolveStmt(scope, child)
		}

	default:
		r.resolveExpr(scope, n)
	}
}

// resolveTargetRefs resolves the non-binding parts of an assignment target
// (the object in `obj.attr = v`, the collection in `obj[i] = v`) without
// treating the bound Name itself as a reference needing lookup.
func (r *resolver) resolveTargetRefs(scope ScopeID, target pyast.Node) {
	switch t := target.(type) {
	case *pyast.Name:
		// bound here, not a reference
	case *pyast.TargetList:
		for _, el := range t.Elements {
			r.resolveTargetRefs(scope, el)
		}
	case *pyast.StarTarget:
		r.resolveTargetRefs(scope, t.Target)
	case *pyast.Attribute:
		r.resolveExpr(scope, t.Value)
	case *pyast.Subscript:
		r.resolveExpr(scope, t.Value)
		r.resolveExpr(scope, t.Index)
	}
}

func asName(n pyast.Node) string {
	if name, ok := n.(*pyast.Name); ok {
		return name.Identifier
	}
	return ""
}

func (r *resolver) resolveImportFrom(scope ScopeID, t *pyast.ImportFrom) {
	ok := true
	if t.DotCount > 0 {
		ok = r.imports.ResolveRelative(r.filePath, t.DotCount, t.Module)
	} else {
		ok = r.imports.ResolveAbsolute(t.Module, r.filePath)
	}
	if !ok {
		label := t.Module
		for i := 0; i < t.DotCount; i++ {
			label = "." + label
		}
		r.report(CodeUnresolvedImport, t.ModuleSpan, "import \""+label+"\" could not be resolved")
	}
	if t.IsWildcard {
		s := r.tree.Scope(scope)
		if s.Kind == ScopeFunction || s.Kind == ScopeLambda {
			r.report(CodeWildcardImportUncertain, t.Span(), "wildcard import inside a function makes name resolution in this scope unreliable")
			r.suspect[scope] = true
		}
	}
}

func (r *resolver) resolveExpr(scope ScopeID, n pyast.Node) {
	switch t := n.(type) {
	case *pyast.Name:
		r.resolveName(scope, t.Identifier)
	case *pyast.Attribute:
		r.resolveExpr(scope, t.Value)
	case *pyast.Subscript:
		r.resolveExpr(scope, t.Value)
		r.resolveExpr(scope, t.Index)
	case *pyast.Call:
		r.resolveExpr(scope, t.Func)
		for _, a := range t.Args {
			r.resolveExpr(scope, a.Value)
		}
		for _, kw := range t.Keywords {
			r.resolveExpr(scope, kw.Value)
		}
	case *pyast.ExecCall:
		// handled by checkExecInFunction at the enclosing function; a bare
		// ExecCall reached here (module/class scope) raises nothing extra.
	case *pyast.Lambda:
		for _, p := range t.Params {
			if p.Default != nil {
				r.resolveExpr(scope, p.Default)
			}
		}
		lamScope := r.tree.ScopeFor(t)
		r.checkDuplicateParams(lamScope, t.Params)
		r.resolveExpr(lamScope, t.Body)
	case *pyast.Comprehension:
		compScope := r.tree.ScopeFor(t)
		for i, clause := range t.Clauses {
			if i == 0 {
				// The outermost iterable is evaluated in the enclosing
				// scope under Python 3 semantics; inner iterables are
				// evaluated inside the comprehension's own scope.
				r.resolveExpr(scope, clause.Iter)
			} else {
				r.resolveExpr(compScope, clause.Iter)
			}
			for _, ifExpr := range clause.Ifs {
				r.resolveExpr(compScope, ifExpr)
			}
		}
		r.resolveExpr(compScope, t.Element)
		r.resolveExpr(compScope, t.Value)
	case *pyast.Raw:
		for _, child := range t.Children {
			r.resolveExpr(scope, child)
		}
	}
}

// resolveName performs LEGB lookup starting at scope: Local, then Enclosing
// function scopes (class scopes are skipped — not visible to nested
// functions), then Global (module scope), then Builtins.
func (r *resolver) resolveName(scope ScopeID, name string) {
	if name == "" || r.suspect[scope] {
		return
	}
	s := r.tree.Scope(scope)

	if s.nonlocals[name] {
		if owner := r.findEnclosingFunctionBinding(scope, name); owner != noParent {
			r.tree.Scope(owner).Cell[name] = true
			s.Free[name] = true
		}
		return
	}
	if s.globals[name] {
		if module := r.tree.Scope(r.tree.Root); module.Declares(name) {
			return
		}
		if builtinNames[name] {
			return
		}
		r.report(CodeVariableNotDefinedGlobally, pyast.Span{}, "name \""+name+"\" is not defined at module scope")
		return
	}

	if s.Declares(name) {
		return
	}

	if owner := r.findEnclosingFunctionBinding(scope, name); owner != noParent {
		r.tree.Scope(owner).Cell[name] = true
		s.Free[name] = true
		return
	}

	module := r.tree.Scope(r.tree.Root)
	if module.Declares(name) {
		return
	}
	if builtinNames[name] {
		return
	}
	r.report(CodeUndefinedVariable, pyast.Span{}, "name \""+name+"\" is not defined")
}

// findEnclosingFunctionBinding walks parent scopes (skipping class scopes,
// which LEGB does not search for nested functions) looking for the nearest
// function/lambda scope that directly binds name.
func (r *resolver) findEnclosingFunctionBinding(scope ScopeID, name string) ScopeID {
	s := r.tree.Scope(scope)
	parent := s.Parent
	for parent != noParent && parent != r.tree.Root {
		ps := r.tree.Scope(parent)
		if (ps.Kind == ScopeFunction || ps.Kind == ScopeLambda) && ps.Declares(name) {
			return parent
		}
		parent = ps.Parent
	}
	return noParent
}

func (r *resolver) checkDuplicateParams(scope ScopeID, params []*pyast.Param) {
	seen := map[string]bool{}
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if seen[p.Name] {
			r.report(CodeDuplicateParameter, p.NameSpan, "duplicate parameter \""+p.Name+"\"")
			continue
		}
		seen[p.Name] = true
	}
}

// checkExecInFunction flags a bare exec/eval call within a function whose
// scope also has at least one free variable — CPython's own documentation
// calls this combination unreliable, since exec can inject names that
// shadow the compiler's free-variable analysis.
func (r *resolver) checkExecInFunction(scope ScopeID, body []pyast.Node) {
	var hasExec bool
	pyast.Walk(&pyast.Module{Body: body}, func(n pyast.Node) bool {
		switch n.(type) {
		case *pyast.ExecCall:
			hasExec = true
		case *pyast.FunctionDef, *pyast.Lambda, *pyast.ClassDef:
			return false // don't descend into nested scopes from here
		}
		return true
	})
	if hasExec {
		s := r.tree.Scope(scope)
		r.execPending = append(r.execPending, pendingExecCheck{scope: s, span: s.Span})
	}
}

type pendingExecCheck struct {
	scope *Scope
	span  pyast.Span
}

// finishExecChecks resolves each pending exec/eval check once the whole
// tree has been walked and every scope's Free set is final: a function
// containing a bare exec/eval is only flagged when it also closes over at
// least one free variable, since that's the combination CPython's own
// compiler can't reliably analyze around an injected exec namespace.
func (r *resolver) finishExecChecks() {
	for _, pending := range r.execPending {
		if len(pending.scope.Free) > 0 {
			r.report(CodeUnqualifiedExec, pending.span, "unqualified exec/eval in a function with free variables makes name resolution unreliable")
		}
	}
}

func (r *resolver) checkNonlocalBindings(scope ScopeID, t *pyast.Nonlocal) {
	s := r.tree.Scope(scope)
	for i, name := range t.Names {
		s.nonlocals[name] = true
		if s.Kind != ScopeFunction && s.Kind != ScopeLambda {
			r.report(CodeNonlocalAtModuleScope, t.Spans[i], "nonlocal declaration outside a function has no effect")
			continue
		}
		if owner := r.findEnclosingFunctionBinding(scope, name); owner == noParent {
			r.report(CodeVariableNotDefinedNonlocal, t.Spans[i], "no binding for nonlocal \""+name+"\" found in an enclosing function")
		}
	}
}

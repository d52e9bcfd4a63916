package binder

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// declarer runs the first of the binder's two passes: build the scope tree
// and record every name directly bound in each scope (parameters, import
// targets, assignment/for/with targets, def/class names, global/nonlocal
// declarations). It never resolves a Name reference to a binding — that is
// pass 2's job in resolve.go, once every scope's binding set is complete.
type declarer struct {
	tree *ScopeTree
	// order records, per scope, the sequence of (name, isGlobalOrNonlocalDecl)
	// events as they're encountered. It stays internal to pass 1: Declare
	// returns only the ScopeTree, pass 2 never reads it, and so a
	// global/nonlocal declaration that follows an earlier use of the same
	// name (CodeGlobalAfterUse) is not reported.
	order map[ScopeID][]declEvent
}

type declEvent struct {
	name       string
	isGlobalOrNonlocal bool
	span       pyast.Span
}

func newDeclarer() *declarer {
	return &declarer{tree: newScopeTree(), order: map[ScopeID][]declEvent{}}
}

// Declare builds the full scope tree for a module's top-level statements.
func Declare(mod *pyast.Module) *ScopeTree {
	d := newDeclarer()
	d.tree.Root = d.tree.alloc(ScopeModule, noParent, mod.Span())
	d.declareBody(d.tree.Root, mod.Body)
	return d.tree
}

func (d *declarer) bind(scope ScopeID, name string, kind BindingKind, span pyast.Span) {
	if name == "" {
		return
	}
	s := d.tree.Scope(scope)
	if _, exists := s.bindings[name]; !exists {
		s.bindings[name] = &Binding{Name: name, Kind: kind, Span: span}
	}
	d.order[scope] = append(d.order[scope], declEvent{name: name, span: span})
}

func (d *declarer) declareBody(scope ScopeID, body []pyast.Node) {
	for _, n := range body {
		d.declareStmt(scope, n)
	}
}

func (d *declarer) declareStmt(scope ScopeID, n pyast.Node) {
	switch t := n.(type) {
	case *pyast.FunctionDef:
		d.bind(scope, t.Name, BindingFunctionDef, t.NameSpan)
		for _, dec := range t.Decorators {
			d.declareExprTree(scope, dec)
		}
		for _, p := range t.Params {
			if p.Default != nil {
				d.declareExprTree(scope, p.Default)
			}
			if p.Annotation != nil {
				d.declareExprTree(scope, p.Annotation)
			}
		}
		if t.ReturnsAnnot != nil {
			d.declareExprTree(scope, t.ReturnsAnnot)
		}
		fnScope := d.tree.allocFor(t, ScopeFunction, scope, t.Span())
		d.declareParams(fnScope, t.Params)
		d.declareBody(fnScope, t.Body)

	case *pyast.ClassDef:
		d.bind(scope, t.Name, BindingClassDef, t.NameSpan)
		for _, dec := range t.Decorators {
			d.declareExprTree(scope, dec)
		}
		for _, b := range t.Bases {
			d.declareExprTree(scope, b)
		}
		for _, kw := range t.Keywords {
			d.declareExprTree(scope, kw.Value)
		}
		classScope := d.tree.allocFor(t, ScopeClass, scope, t.Span())
		d.declareBody(classScope, t.Body)

	case *pyast.Assign:
		if t.Value != nil {
			d.declareExprTree(scope, t.Value)
		}
		if t.Annotation != nil {
			d.declareExprTree(scope, t.Annotation)
		}
		for _, target := range t.Targets {
			d.declareTarget(scope, target, BindingAssignment)
		}

	case *pyast.AugAssign:
		d.declareTarget(scope, t.Target, BindingAssignment)
		d.declareExprTree(scope, t.Value)

	case *pyast.Import:
		for _, alias := range t.Names {
			localName := alias.AsName
			if localName == "" {
				localName = firstDottedComponent(alias.DottedName)
			}
			d.bind(scope, localName, BindingImport, alias.Span)
		}

	case *pyast.ImportFrom:
		for _, alias := range t.Names {
			localName := alias.AsName
			if localName == "" {
				localName = alias.DottedName
			}
			d.bind(scope, localName, BindingImport, alias.Span)
		}

	case *pyast.Global:
		s := d.tree.Scope(scope)
		for i, name := range t.Names {
			s.globals[name] = true
			d.order[scope] = append(d.order[scope], declEvent{name: name, isGlobalOrNonlocal: true, span: t.Spans[i]})
		}

	case *pyast.Nonlocal:
		s := d.tree.Scope(scope)
		for i, name := range t.Names {
			s.nonlocals[name] = true
			d.order[scope] = append(d.order[scope], declEvent{name: name, isGlobalOrNonlocal: true, span: t.Spans[i]})
		}

	case *pyast.For:
		d.declareExprTree(scope, t.Iter)
		d.declareTarget(scope, t.Target, BindingFor)
		d.declareBody(scope, t.Body)
		d.declareBody(scope, t.Orelse)

	case *pyast.With:
		for _, item := range t.Items {
			d.declareExprTree(scope, item.Context)
			if item.Target != nil {
				d.declareTarget(scope, item.Target, BindingWith)
			}
		}
		d.declareBody(scope, t.Body)

	case *pyast.Return:
		if t.Value != nil {
			d.declareExprTree(scope, t.Value)
		}

	case *pyast.Raw:
		// Recurse so nested scopes/bindings under unmodeled constructs
		// (if/while/try/…) are still discovered, without introducing a
		// scope of their own.
		for _, child := range t.Children {
			d.declareStmt(scope, child)
		}

	default:
		// Expression statements and anything else introduce no bindings at
		// statement level; nested Lambda/Comprehension expressions are
		// still discovered by declareExprTree's own recursion.
		d.declareExprTree(scope, n)
	}
}

// declareExprTree walks an expression in the identical order resolveExpr
// (resolve.go) walks it, so a Lambda or Comprehension nested anywhere in an
// expression — an assignment's right-hand side, a call argument, a
// decorator, a default value — gets its scope allocated by pass 1 exactly
// once, recorded against its node so pass 2 can recover it by identity
// instead of by re-deriving the same allocation order independently.
func (d *declarer) declareExprTree(scope ScopeID, n pyast.Node) {
	switch t := n.(type) {
	case *pyast.Attribute:
		d.declareExprTree(scope, t.Value)

	case *pyast.Subscript:
		d.declareExprTree(scope, t.Value)
		d.declareExprTree(scope, t.Index)

	case *pyast.Call:
		d.declareExprTree(scope, t.Func)
		for _, a := range t.Args {
			d.declareExprTree(scope, a.Value)
		}
		for _, kw := range t.Keywords {
			d.declareExprTree(scope, kw.Value)
		}

	case *pyast.Lambda:
		for _, p := range t.Params {
			if p.Default != nil {
				d.declareExprTree(scope, p.Default)
			}
		}
		lamScope := d.tree.allocFor(t, ScopeLambda, scope, t.Span())
		d.declareParams(lamScope, t.Params)
		d.declareExprTree(lamScope, t.Body)

	case *pyast.Comprehension:
		compScope := d.tree.allocFor(t, ScopeComprehension, scope, t.Span())
		for i, clause := range t.Clauses {
			d.declareTarget(compScope, clause.Target, BindingComprehensionTarget)
			if i == 0 {
				// The outermost iterable is evaluated in the enclosing
				// scope under Python 3 semantics; inner iterables are
				// evaluated inside the comprehension's own scope.
				d.declareExprTree(scope, clause.Iter)
			} else {
				d.declareExprTree(compScope, clause.Iter)
			}
			for _, ifExpr := range clause.Ifs {
				d.declareExprTree(compScope, ifExpr)
			}
		}
		d.declareExprTree(compScope, t.Element)
		d.declareExprTree(compScope, t.Value)

	case *pyast.Raw:
		for _, child := range t.Children {
			d.declareExprTree(scope, child)
		}
	}
}

func (d *declarer) declareParams(scope ScopeID, params []*pyast.Param) {
	for _, p := range params {
		d.bind(scope, p.Name, BindingParameter, p.NameSpan)
	}
}

func (d *declarer) declareTarget(scope ScopeID, target pyast.Node, kind BindingKind) {
	switch t := target.(type) {
	case *pyast.Name:
		d.bind(scope, t.Identifier, kind, t.Span())
	case *pyast.TargetList:
		for _, el := range t.Elements {
			d.declareTarget(scope, el, kind)
		}
	case *pyast.StarTarget:
		d.declareTarget(scope, t.Target, kind)
	case *pyast.Attribute, *pyast.Subscript:
		// `obj.attr = v` / `obj[i] = v` reference obj but bind nothing new.
	}
}

func firstDottedComponent(dotted string) string {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			return dotted[:i]
		}
	}
	return dotted
}

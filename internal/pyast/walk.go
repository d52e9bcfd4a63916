package pyast

// Visitor is called once per node during Walk. Returning false prevents Walk
// from descending into that node's children; the node itself has already
// been visited.
type Visitor func(n Node) bool

// Walk performs a depth-first pre-order traversal of n, invoking visit on n
// and every descendant it carries. Composite fields (Params, Body, Targets,
// …) are visited in declaration order so diagnostics a caller accumulates
// during the walk come out in source order.
func Walk(n Node, visit Visitor) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	switch t := n.(type) {
	case *Module:
		walkAll(t.Body, visit)
	case *FunctionDef:
		walkAll(t.Decorators, visit)
		for _, p := range t.Params {
			walkParam(p, visit)
		}
		Walk(t.ReturnsAnnot, visit)
		walkAll(t.Body, visit)
	case *ClassDef:
		walkAll(t.Decorators, visit)
		walkAll(t.Bases, visit)
		for _, kw := range t.Keywords {
			Walk(kw.Value, visit)
		}
		walkAll(t.Body, visit)
	case *Lambda:
		for _, p := range t.Params {
			walkParam(p, visit)
		}
		Walk(t.Body, visit)
	case *Comprehension:
		Walk(t.Element, visit)
		Walk(t.Value, visit)
		for _, c := range t.Clauses {
			Walk(c.Target, visit)
			Walk(c.Iter, visit)
			walkAll(c.Ifs, visit)
		}
	case *Call:
		Walk(t.Func, visit)
		for _, a := range t.Args {
			Walk(a.Value, visit)
		}
		for _, kw := range t.Keywords {
			Walk(kw.Value, visit)
		}
	case *Attribute:
		Walk(t.Value, visit)
	case *Subscript:
		Walk(t.Value, visit)
		Walk(t.Index, visit)
	case *TargetList:
		walkAll(t.Elements, visit)
	case *StarTarget:
		Walk(t.Target, visit)
	case *Assign:
		walkAll(t.Targets, visit)
		Walk(t.Annotation, visit)
		Walk(t.Value, visit)
	case *AugAssign:
		Walk(t.Target, visit)
		Walk(t.Value, visit)
	case *For:
		Walk(t.Target, visit)
		Walk(t.Iter, visit)
		walkAll(t.Body, visit)
		walkAll(t.Orelse, visit)
	case *With:
		for _, item := range t.Items {
			Walk(item.Context, visit)
			Walk(item.Target, visit)
		}
		walkAll(t.Body, visit)
	case *Return:
		Walk(t.Value, visit)
	case *Raw:
		walkAll(t.Children, visit)
	case *Name, *StrLiteral, *Import, *ImportFrom, *Global, *Nonlocal, *ExecCall:
		// leaves: nothing further to descend into
	}
}

func walkAll(nodes []Node, visit Visitor) {
	for _, n := range nodes {
		Walk(n, visit)
	}
}

func walkParam(p *Param, visit Visitor) {
	if p == nil {
		return
	}
	Walk(p.Default, visit)
	Walk(p.Annotation, visit)
}

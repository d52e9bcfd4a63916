package pyast

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parse parses Python source and lowers it into a Module. The caller owns
// the returned tree-sitter tree only indirectly: Parse closes it before
// returning, since every piece of information the binder needs has already
// been copied into the pyast.Node tree.
func Parse(source []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	l := &lowerer{src: source}
	body := l.block(tree.RootNode())
	return &Module{base: base{span: spanOf(tree.RootNode())}, Body: body}, nil
}

type lowerer struct {
	src []byte
}

func spanOf(n *sitter.Node) Span {
	start := n.StartPoint()
	end := n.EndPoint()
	return Span{
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

// block lowers every named child of a container node (module, function
// body, class body, …) into a flat statement list.
func (l *lowerer) block(n *sitter.Node) []Node {
	if n == nil {
		return nil
	}
	out := make([]Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		out = append(out, l.stmt(child))
	}
	return out
}

func (l *lowerer) stmt(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "function_definition":
		return l.functionDef(n, nil)
	case "class_definition":
		return l.classDef(n, nil)
	case "decorated_definition":
		return l.decoratedDef(n)
	case "expression_statement":
		// An expression statement wraps exactly one child: an expression, or
		// an assignment/augmented_assignment handled by the cases below.
		if n.NamedChildCount() == 1 {
			child := n.NamedChild(0)
			if child.Type() == "assignment" || child.Type() == "augmented_assignment" {
				return l.stmt(child)
			}
			return l.expr(child)
		}
		return l.genericRaw(n)
	case "assignment":
		return l.assignment(n)
	case "augmented_assignment":
		return l.augAssignment(n)
	case "import_statement":
		return l.importStatement(n)
	case "import_from_statement":
		return l.importFromStatement(n)
	case "global_statement":
		return l.global(n)
	case "nonlocal_statement":
		return l.nonlocal(n)
	case "for_statement":
		return l.forStmt(n)
	case "with_statement":
		return l.withStmt(n)
	case "return_statement":
		return l.returnStmt(n)
	case "if_statement", "while_statement", "try_statement", "with_clause":
		return l.genericRaw(n)
	default:
		return l.genericRaw(n)
	}
}

// genericRaw recurses into every named child so nested scopes, assignments,
// and references anywhere under an unmodeled construct (if/while/try/match/…)
// are still discovered by the binder's walk.
func (l *lowerer) genericRaw(n *sitter.Node) Node {
	children := make([]Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		children = append(children, l.stmt(child))
	}
	return &Raw{base: base{span: spanOf(n)}, Children: children}
}

func (l *lowerer) decoratedDef(n *sitter.Node) Node {
	var decorators []Node
	var defNode *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "decorator":
			if child.NamedChildCount() > 0 {
				decorators = append(decorators, l.expr(child.NamedChild(0)))
			}
		case "function_definition":
			defNode = child
		case "class_definition":
			defNode = child
		}
	}
	if defNode == nil {
		return l.genericRaw(n)
	}
	if defNode.Type() == "class_definition" {
		cd := l.classDef(defNode, decorators)
		return cd
	}
	return l.functionDef(defNode, decorators)
}

func (l *lowerer) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(tp.NamedChildCount()); i++ {
		names = append(names, l.text(tp.NamedChild(i)))
	}
	return names
}

func (l *lowerer) functionDef(n *sitter.Node, decorators []Node) *FunctionDef {
	nameNode := n.ChildByFieldName("name")
	paramsNode := n.ChildByFieldName("parameters")
	bodyNode := n.ChildByFieldName("body")
	returnsNode := n.ChildByFieldName("return_type")

	isAsync := false
	if n.ChildCount() > 0 && n.Child(0).Type() == "async" {
		isAsync = true
	}

	fd := &FunctionDef{
		base:       base{span: spanOf(n)},
		Name:       l.text(nameNode),
		TypeParams: l.typeParams(n),
		Params:     l.params(paramsNode),
		Body:       l.block(bodyNode),
		Decorators: decorators,
		IsAsync:    isAsync,
	}
	if nameNode != nil {
		fd.NameSpan = spanOf(nameNode)
	}
	if returnsNode != nil {
		fd.ReturnsAnnot = l.expr(returnsNode)
	}
	return fd
}

func (l *lowerer) params(n *sitter.Node) []*Param {
	if n == nil {
		return nil
	}
	var out []*Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		p := l.param(child)
		if p != nil {
			out = append(out, p)
		} else if child.Type() == "keyword_separator" {
			// Marks every following parameter as keyword-only; encoded by
			// the binder re-deriving kind from position, so nothing to do
			// here beyond skipping the marker node itself.
			_ = child
		}
	}
	// Re-derive positional-only / keyword-only kinds from "/" and "*" markers.
	return markParamKinds(n, out, l)
}

func markParamKinds(n *sitter.Node, params []*Param, l *lowerer) []*Param {
	seenStar := false
	idx := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "positional_separator":
			for j := 0; j < idx; j++ {
				params[j].Kind = ParamPositionalOnly
			}
		case "list_splat_pattern":
			seenStar = true
			idx++ // *args is itself one of params
		case "keyword_separator":
			seenStar = true
		default:
			if idx < len(params) {
				if seenStar && params[idx].Kind != ParamStarArgs && params[idx].Kind != ParamStarStarKwargs {
					params[idx].Kind = ParamKeywordOnly
				}
				idx++
			}
		}
	}
	return params
}

func (l *lowerer) param(n *sitter.Node) *Param {
	switch n.Type() {
	case "identifier":
		return &Param{base: base{span: spanOf(n)}, Name: l.text(n), NameSpan: spanOf(n), Kind: ParamPositionalOrKeyword}
	case "typed_parameter":
		nameNode := n.NamedChild(0)
		p := &Param{base: base{span: spanOf(n)}, Kind: ParamPositionalOrKeyword}
		if nameNode != nil {
			p.Name = l.text(nameNode)
			p.NameSpan = spanOf(nameNode)
		}
		if t := n.ChildByFieldName("type"); t != nil {
			p.Annotation = l.expr(t)
		}
		return p
	case "default_parameter", "typed_default_parameter":
		nameNode := n.ChildByFieldName("name")
		p := &Param{base: base{span: spanOf(n)}, Kind: ParamPositionalOrKeyword}
		if nameNode != nil {
			p.Name = l.text(nameNode)
			p.NameSpan = spanOf(nameNode)
		}
		if v := n.ChildByFieldName("value"); v != nil {
			p.Default = l.expr(v)
		}
		if t := n.ChildByFieldName("type"); t != nil {
			p.Annotation = l.expr(t)
		}
		return p
	case "list_splat_pattern":
		inner := n.NamedChild(0)
		p := &Param{base: base{span: spanOf(n)}, Kind: ParamStarArgs}
		if inner != nil {
			p.Name = l.text(inner)
			p.NameSpan = spanOf(inner)
		}
		return p
	case "dictionary_splat_pattern":
		inner := n.NamedChild(0)
		p := &Param{base: base{span: spanOf(n)}, Kind: ParamStarStarKwargs}
		if inner != nil {
			p.Name = l.text(inner)
			p.NameSpan = spanOf(inner)
		}
		return p
	default:
		return nil
	}
}

func (l *lowerer) classDef(n *sitter.Node, decorators []Node) *ClassDef {
	nameNode := n.ChildByFieldName("name")
	bodyNode := n.ChildByFieldName("body")
	superclasses := n.ChildByFieldName("superclasses")

	cd := &ClassDef{
		base:       base{span: spanOf(n)},
		Name:       l.text(nameNode),
		TypeParams: l.typeParams(n),
		Body:       l.block(bodyNode),
		Decorators: decorators,
	}
	if nameNode != nil {
		cd.NameSpan = spanOf(nameNode)
	}
	if superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			arg := superclasses.NamedChild(i)
			if arg.Type() == "keyword_argument" {
				kw := arg.ChildByFieldName("name")
				val := arg.ChildByFieldName("value")
				cd.Keywords = append(cd.Keywords, KeywordArg{Name: l.text(kw), Value: l.expr(val), Span: spanOf(arg)})
			} else {
				cd.Bases = append(cd.Bases, l.expr(arg))
			}
		}
	}
	return cd
}

func (l *lowerer) assignment(n *sitter.Node) Node {
	leftNode := n.ChildByFieldName("left")
	rightNode := n.ChildByFieldName("right")
	typeNode := n.ChildByFieldName("type")

	a := &Assign{base: base{span: spanOf(n)}}
	a.Targets = append(a.Targets, l.target(leftNode))
	// `a = b = rhs` nests the second assignment as the right-hand side;
	// flatten it so every target lands in Targets and Value is rhs.
	for rightNode != nil && rightNode.Type() == "assignment" {
		a.Targets = append(a.Targets, l.target(rightNode.ChildByFieldName("left")))
		rightNode = rightNode.ChildByFieldName("right")
	}
	if rightNode != nil {
		a.Value = l.expr(rightNode)
	}
	if typeNode != nil {
		a.Annotation = l.expr(typeNode)
	}
	return a
}

func (l *lowerer) augAssignment(n *sitter.Node) Node {
	leftNode := n.ChildByFieldName("left")
	rightNode := n.ChildByFieldName("right")
	opNode := n.ChildByFieldName("operator")
	return &AugAssign{
		base:   base{span: spanOf(n)},
		Target: l.target(leftNode),
		Op:     l.text(opNode),
		Value:  l.expr(rightNode),
	}
}

// target lowers an assignment-target expression (identifier, tuple/list
// pattern, attribute, subscript, starred).
func (l *lowerer) target(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "pattern_list", "tuple_pattern", "tuple":
		tl := &TargetList{base: base{span: spanOf(n)}}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			tl.Elements = append(tl.Elements, l.target(n.NamedChild(i)))
		}
		return tl
	case "list_pattern", "list":
		tl := &TargetList{base: base{span: spanOf(n)}, IsList: true}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			tl.Elements = append(tl.Elements, l.target(n.NamedChild(i)))
		}
		return tl
	case "list_splat_pattern":
		inner := n.NamedChild(0)
		return &StarTarget{base: base{span: spanOf(n)}, Target: l.target(inner)}
	default:
		return l.expr(n)
	}
}

func (l *lowerer) expr(n *sitter.Node) Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier":
		return &Name{base: base{span: spanOf(n)}, Identifier: l.text(n)}
	case "attribute":
		return &Attribute{
			base:  base{span: spanOf(n)},
			Value: l.expr(n.ChildByFieldName("object")),
			Attr:  l.text(n.ChildByFieldName("attribute")),
		}
	case "subscript":
		sub := &Subscript{base: base{span: spanOf(n)}, Value: l.expr(n.ChildByFieldName("value"))}
		if n.NamedChildCount() > 2 {
			// `x[a, b]` carries one "subscript" child per element; keep them
			// all, as Raw children, rather than only the first.
			elems := make([]Node, 0, n.NamedChildCount()-1)
			for i := 1; i < int(n.NamedChildCount()); i++ {
				elems = append(elems, l.expr(n.NamedChild(i)))
			}
			sub.Index = &Raw{base: base{span: spanOf(n)}, Children: elems}
		} else {
			sub.Index = l.expr(n.ChildByFieldName("subscript"))
		}
		return sub
	case "call":
		return l.call(n)
	case "lambda":
		return l.lambda(n)
	case "list_comprehension":
		return l.comprehension(n, ListComp)
	case "set_comprehension":
		return l.comprehension(n, SetComp)
	case "dictionary_comprehension":
		return l.comprehension(n, DictComp)
	case "generator_expression":
		return l.comprehension(n, GeneratorExp)
	case "string":
		if !hasInterpolation(n) {
			return &StrLiteral{base: base{span: spanOf(n)}, Value: unquoteString(l.text(n))}
		}
		fallthrough
	default:
		// Fall back to a Raw node carrying named children so references
		// nested in binary/boolean/comparison operators, literals,
		// f-strings, etc. are still visited.
		children := make([]Node, 0, n.NamedChildCount())
		for i := 0; i < int(n.NamedChildCount()); i++ {
			children = append(children, l.expr(n.NamedChild(i)))
		}
		return &Raw{base: base{span: spanOf(n)}, Children: children}
	}
}

func (l *lowerer) call(n *sitter.Node) Node {
	fn := n.ChildByFieldName("function")
	argsNode := n.ChildByFieldName("arguments")
	c := &Call{base: base{span: spanOf(n)}, Func: l.expr(fn)}
	if argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			arg := argsNode.NamedChild(i)
			switch arg.Type() {
			case "keyword_argument":
				kw := arg.ChildByFieldName("name")
				val := arg.ChildByFieldName("value")
				c.Keywords = append(c.Keywords, KeywordArg{Name: l.text(kw), Value: l.expr(val), Span: spanOf(arg)})
			case "dictionary_splat":
				inner := arg.NamedChild(0)
				c.Keywords = append(c.Keywords, KeywordArg{Name: "", Value: l.expr(inner), Span: spanOf(arg)})
			case "list_splat":
				inner := arg.NamedChild(0)
				c.Args = append(c.Args, Arg{Value: l.expr(inner), IsStar: true})
			default:
				c.Args = append(c.Args, Arg{Value: l.expr(arg)})
			}
		}
	}
	if name, ok := c.Func.(*Name); ok && (name.Identifier == "exec" || name.Identifier == "eval") {
		return &ExecCall{base: base{span: spanOf(n)}, Qualified: false}
	}
	return c
}

func (l *lowerer) lambda(n *sitter.Node) Node {
	paramsNode := n.ChildByFieldName("parameters")
	bodyNode := n.ChildByFieldName("body")
	return &Lambda{
		base:   base{span: spanOf(n)},
		Params: l.params(paramsNode),
		Body:   l.expr(bodyNode),
	}
}

func (l *lowerer) comprehension(n *sitter.Node, kind ComprehensionKind) Node {
	c := &Comprehension{base: base{span: spanOf(n)}, Kind: kind}
	var bodyNodes []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "for_in_clause" || child.Type() == "if_clause" {
			continue
		}
		bodyNodes = append(bodyNodes, child)
	}
	if kind == DictComp && len(bodyNodes) > 0 {
		pair := bodyNodes[0]
		if pair.Type() == "pair" {
			c.Element = l.expr(pair.ChildByFieldName("key"))
			c.Value = l.expr(pair.ChildByFieldName("value"))
		}
	} else if len(bodyNodes) > 0 {
		c.Element = l.expr(bodyNodes[0])
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "for_in_clause" {
			continue
		}
		clause := CompClause{}
		if child.ChildCount() > 0 && child.Child(0).Type() == "async" {
			clause.IsAsync = true
		}
		leftNode := child.ChildByFieldName("left")
		rightNode := child.ChildByFieldName("right")
		clause.Target = l.target(leftNode)
		clause.Iter = l.expr(rightNode)
		c.Clauses = append(c.Clauses, clause)
	}
	// `if` clauses attach to the most recently appended for-clause.
	idx := -1
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "for_in_clause" {
			idx++
		} else if child.Type() == "if_clause" && idx >= 0 && idx < len(c.Clauses) {
			if child.NamedChildCount() > 0 {
				c.Clauses[idx].Ifs = append(c.Clauses[idx].Ifs, l.expr(child.NamedChild(0)))
			}
		}
	}
	return c
}

func (l *lowerer) importStatement(n *sitter.Node) Node {
	imp := &Import{base: base{span: spanOf(n)}}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		imp.Names = append(imp.Names, l.importAlias(child))
	}
	return imp
}

func (l *lowerer) importAlias(n *sitter.Node) ImportAlias {
	if n.Type() == "aliased_import" {
		nameNode := n.ChildByFieldName("name")
		aliasNode := n.ChildByFieldName("alias")
		return ImportAlias{DottedName: l.text(nameNode), AsName: l.text(aliasNode), Span: spanOf(n)}
	}
	return ImportAlias{DottedName: l.text(n), Span: spanOf(n)}
}

func (l *lowerer) importFromStatement(n *sitter.Node) Node {
	imf := &ImportFrom{base: base{span: spanOf(n)}}

	moduleNameNode := n.ChildByFieldName("module_name")
	var relNode *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "relative_import" {
			relNode = child
			break
		}
	}
	if relNode != nil {
		for j := 0; j < int(relNode.NamedChildCount()); j++ {
			sub := relNode.NamedChild(j)
			switch sub.Type() {
			case "import_prefix":
				imf.DotCount = strings.Count(l.text(sub), ".")
			case "dotted_name":
				imf.Module = l.text(sub)
				imf.ModuleSpan = spanOf(sub)
			}
		}
	} else if moduleNameNode != nil {
		imf.Module = l.text(moduleNameNode)
		imf.ModuleSpan = spanOf(moduleNameNode)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == moduleNameNode || child == relNode {
			continue
		}
		switch child.Type() {
		case "wildcard_import":
			imf.IsWildcard = true
		case "aliased_import", "dotted_name", "identifier":
			imf.Names = append(imf.Names, l.importAlias(child))
		}
	}
	return imf
}

func (l *lowerer) global(n *sitter.Node) Node {
	g := &Global{base: base{span: spanOf(n)}}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		g.Names = append(g.Names, l.text(child))
		g.Spans = append(g.Spans, spanOf(child))
	}
	return g
}

func (l *lowerer) nonlocal(n *sitter.Node) Node {
	nl := &Nonlocal{base: base{span: spanOf(n)}}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		nl.Names = append(nl.Names, l.text(child))
		nl.Spans = append(nl.Spans, spanOf(child))
	}
	return nl
}

func (l *lowerer) forStmt(n *sitter.Node) Node {
	isAsync := n.ChildCount() > 0 && n.Child(0).Type() == "async"
	f := &For{
		base:    base{span: spanOf(n)},
		Target:  l.target(n.ChildByFieldName("left")),
		Iter:    l.expr(n.ChildByFieldName("right")),
		Body:    l.block(n.ChildByFieldName("body")),
		IsAsync: isAsync,
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		f.Orelse = l.block(alt)
	}
	return f
}

func (l *lowerer) withStmt(n *sitter.Node) Node {
	isAsync := n.ChildCount() > 0 && n.Child(0).Type() == "async"
	w := &With{base: base{span: spanOf(n)}, IsAsync: isAsync}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "with_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			item := child.NamedChild(j)
			if item.Type() != "with_item" {
				continue
			}
			wi := WithItem{}
			value := item.NamedChild(0)
			if value != nil && value.Type() == "as_pattern" {
				wi.Context = l.expr(value.ChildByFieldName("value"))
				if alias := value.ChildByFieldName("alias"); alias != nil {
					wi.Target = l.target(alias)
				} else if value.NamedChildCount() > 1 {
					wi.Target = l.target(value.NamedChild(1))
				}
			} else {
				wi.Context = l.expr(value)
			}
			w.Items = append(w.Items, wi)
		}
	}
	w.Body = l.block(n.ChildByFieldName("body"))
	return w
}

func (l *lowerer) returnStmt(n *sitter.Node) Node {
	r := &Return{base: base{span: spanOf(n)}}
	if n.NamedChildCount() > 0 {
		r.Value = l.expr(n.NamedChild(0))
	}
	return r
}

// hasInterpolation reports whether a "string" node contains an f-string
// interpolation, which means its value can't be known statically.
func hasInterpolation(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "interpolation" {
			return true
		}
	}
	return false
}

// unquoteString strips a string literal's prefix letters (r/b/u/f, any
// case) and its matching quote run (triple or single) from raw source text.
// It's a lexical unquote, not an escape-sequence decoder — good enough for
// the one thing callers need it for: reading back a string literal a
// diagnostic wants to compare against an identifier, like TypeVar's name
// argument.
func unquoteString(raw string) string {
	i := 0
	for i < len(raw) && (raw[i] == 'r' || raw[i] == 'R' || raw[i] == 'b' || raw[i] == 'B' || raw[i] == 'u' || raw[i] == 'U' || raw[i] == 'f' || raw[i] == 'F') {
		i++
	}
	rest := raw[i:]
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if len(rest) >= 2*len(q) && rest[:len(q)] == q && rest[len(rest)-len(q):] == q {
			return rest[len(q) : len(rest)-len(q)]
		}
	}
	return rest
}

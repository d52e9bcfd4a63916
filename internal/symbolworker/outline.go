package symbolworker

import "github.com/microsoft/python-language-server-sub014/internal/pyast"

// SymbolKind classifies one outline entry for client-side icon/filter
// purposes.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolClass
	SymbolVariable
	SymbolConstant
)

// Symbol is one node of a document's hierarchical outline: a function,
// class, or variable bound by a single-name assignment, along with its
// nested children (methods and variables inside a class, nested functions
// and local variables inside a function).
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Span       pyast.Span
	NameSpan   pyast.Span
	Detail     string // e.g. a function's parameter list rendered as text
	Children   []*Symbol
	IsAsync    bool
	HasDecorators bool
}

// Outline is the finished symbol tree for one document.
type Outline struct {
	URI     string
	Symbols []*Symbol
}

// BuildOutline walks mod and produces its hierarchical outline. Leading
// underscore names at module scope are still included — "user vs library"
// filtering (omitting underscore-prefixed names) only applies when this
// outline describes a dependency the user doesn't own, decided by the
// caller via FilterLibrarySymbols, not by this function.
func BuildOutline(uri string, mod *pyast.Module) *Outline {
	return &Outline{URI: uri, Symbols: buildSymbols(mod.Body, false)}
}

func buildSymbols(body []pyast.Node, inClass bool) []*Symbol {
	var out []*Symbol
	for _, n := range body {
		if sym := buildSymbol(n, inClass); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

func buildSymbol(n pyast.Node, inClass bool) *Symbol {
	switch t := n.(type) {
	case *pyast.FunctionDef:
		kind := SymbolFunction
		if inClass {
			kind = SymbolMethod
		}
		return &Symbol{
			Name:          t.Name,
			Kind:          kind,
			Span:          t.Span(),
			NameSpan:      t.NameSpan,
			Detail:        paramSummary(t.Params),
			Children:      buildSymbols(t.Body, false),
			IsAsync:       t.IsAsync,
			HasDecorators: len(t.Decorators) > 0,
		}
	case *pyast.ClassDef:
		return &Symbol{
			Name:          t.Name,
			Kind:          SymbolClass,
			Span:          t.Span(),
			NameSpan:      t.NameSpan,
			Children:      buildSymbols(t.Body, true),
			HasDecorators: len(t.Decorators) > 0,
		}
	case *pyast.Assign:
		return buildAssignSymbol(t)
	default:
		return nil
	}
}

func buildAssignSymbol(a *pyast.Assign) *Symbol {
	if len(a.Targets) != 1 {
		return nil
	}
	name, ok := a.Targets[0].(*pyast.Name)
	if !ok {
		return nil
	}
	kind := SymbolVariable
	if isConstantName(name.Identifier) {
		kind = SymbolConstant
	}
	return &Symbol{Name: name.Identifier, Kind: kind, Span: a.Span(), NameSpan: name.Span()}
}

func isConstantName(name string) bool {
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

func paramSummary(params []*pyast.Param) string {
	out := "("
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		switch p.Kind {
		case pyast.ParamStarArgs:
			out += "*" + p.Name
		case pyast.ParamStarStarKwargs:
			out += "**" + p.Name
		default:
			out += p.Name
		}
	}
	return out + ")"
}

// FilterLibrarySymbols drops underscore-prefixed (conventionally private)
// top-level symbols, used when building an outline for a dependency the
// user doesn't own rather than their own open document.
func FilterLibrarySymbols(symbols []*Symbol) []*Symbol {
	out := make([]*Symbol, 0, len(symbols))
	for _, s := range symbols {
		if len(s.Name) > 0 && s.Name[0] == '_' {
			continue
		}
		out = append(out, s)
	}
	return out
}

package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gocribo/cribo/internal/pyast"
)

func (b *builder) importStatement(n *tree_sitter.Node) pyast.Stmt {
	var names []pyast.Alias
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "dotted_name":
			names = append(names, pyast.Alias{Name: b.text(c), Local: firstDottedComponent(b.text(c))})
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			name := ""
			if nameNode != nil {
				name = b.text(nameNode)
			}
			alias := ""
			if aliasNode != nil {
				alias = b.text(aliasNode)
			}
			names = append(names, pyast.Alias{Name: name, AsOf: alias, Local: alias})
		}
	}
	return b.withSpan(&pyast.Import{Names: names}, n)
}

func (b *builder) importFromStatement(n *tree_sitter.Node) pyast.Stmt {
	moduleNode := n.ChildByFieldName("module_name")
	module := ""
	level := 0
	if moduleNode != nil {
		if moduleNode.Kind() == "relative_import" {
			module, level = relativeImportParts(b, moduleNode)
		} else {
			module = b.text(moduleNode)
		}
	}

	var names []pyast.Alias
	wildcard := false
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "wildcard_import":
			wildcard = true
		case "dotted_name":
			if moduleNode != nil && c == moduleNode {
				continue
			}
			names = append(names, pyast.Alias{Name: b.text(c), Local: b.text(c)})
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			aliasNode := c.ChildByFieldName("alias")
			name, alias := "", ""
			if nameNode != nil {
				name = b.text(nameNode)
			}
			if aliasNode != nil {
				alias = b.text(aliasNode)
			}
			names = append(names, pyast.Alias{Name: name, AsOf: alias, Local: alias})
		}
	}
	if wildcard {
		names = append(names, pyast.Alias{Name: "*", Local: "*"})
	}
	return b.withSpan(&pyast.ImportFrom{Module: module, Names: names, Level: level}, n)
}

// relativeImportParts splits a "relative_import" node (the leading dots of
// `from . import x` / `from ..pkg import y`) into the dotted remainder and
// the dot count.
func relativeImportParts(b *builder, n *tree_sitter.Node) (module string, level int) {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "import_prefix" {
			level = len(b.text(c))
		}
		if c.Kind() == "dotted_name" {
			module = b.text(c)
		}
	}
	return module, level
}

func firstDottedComponent(dotted string) string {
	for i, r := range dotted {
		if r == '.' {
			return dotted[:i]
		}
	}
	return dotted
}

func (b *builder) functionDef(n *tree_sitter.Node, decorators []pyast.Expr, isAsync bool) pyast.Stmt {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = b.text(nameNode)
	}
	var params []pyast.Parameter
	if paramsNode := n.ChildByFieldName("parameters"); paramsNode != nil {
		params = b.parameters(paramsNode)
	}
	var returns pyast.Expr
	if retNode := n.ChildByFieldName("return_type"); retNode != nil {
		returns = b.expr(retNode)
	}
	body := b.block(n, "body")
	return b.withSpan(&pyast.FunctionDef{
		Name: name, Params: params, Decorators: decorators, Returns: returns, Body: body, IsAsync: isAsync,
	}, n)
}

func (b *builder) parameters(n *tree_sitter.Node) []pyast.Parameter {
	var out []pyast.Parameter
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			out = append(out, pyast.Parameter{Name: b.text(c), Kind: pyast.ParamPositional})
		case "typed_parameter":
			if id := firstChildOfKind(c, "identifier"); id != nil {
				out = append(out, pyast.Parameter{Name: b.text(id), Kind: pyast.ParamPositional})
			}
		case "default_parameter", "typed_default_parameter":
			nameNode := c.ChildByFieldName("name")
			valNode := c.ChildByFieldName("value")
			p := pyast.Parameter{Kind: pyast.ParamPositional}
			if nameNode != nil {
				p.Name = b.text(nameNode)
			}
			if valNode != nil {
				p.Default = b.expr(valNode)
			}
			out = append(out, p)
		case "list_splat_pattern":
			if id := firstChildOfKind(c, "identifier"); id != nil {
				out = append(out, pyast.Parameter{Name: b.text(id), Kind: pyast.ParamVarArgs})
			}
		case "dictionary_splat_pattern":
			if id := firstChildOfKind(c, "identifier"); id != nil {
				out = append(out, pyast.Parameter{Name: b.text(id), Kind: pyast.ParamKwArgs})
			}
		case "keyword_separator", "positional_separator":
			// Bare "*" / "/" markers carry no identifier of their own;
			// parameters after a bare "*" are keyword-only, tracked below.
		}
	}
	markKeywordOnly(n, out)
	return out
}

// markKeywordOnly flips every parameter following a bare "*" separator to
// ParamKeywordOnly, matching Python's keyword-only-argument syntax.
func markKeywordOnly(n *tree_sitter.Node, params []pyast.Parameter) {
	sawStar := false
	idx := 0
	for _, c := range namedChildren(n) {
		if c.Kind() == "positional_separator" {
			continue
		}
		if c.Kind() == "keyword_separator" || c.Kind() == "list_splat_pattern" {
			sawStar = true
			if c.Kind() == "list_splat_pattern" {
				idx++
			}
			continue
		}
		if c.Kind() == "dictionary_splat_pattern" {
			idx++
			continue
		}
		if idx >= len(params) {
			break
		}
		if sawStar {
			params[idx].Kind = pyast.ParamKeywordOnly
		}
		idx++
	}
}

func firstChildOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for _, c := range namedChildren(n) {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

func (b *builder) classDef(n *tree_sitter.Node, decorators []pyast.Expr) pyast.Stmt {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = b.text(nameNode)
	}
	var bases []pyast.Expr
	var keywords []pyast.Keyword
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, c := range namedChildren(supers) {
			if c.Kind() == "keyword_argument" {
				keywords = append(keywords, b.keywordArgument(c))
				continue
			}
			bases = append(bases, b.expr(c))
		}
	}
	body := b.block(n, "body")
	return b.withSpan(&pyast.ClassDef{Name: name, Bases: bases, Keywords: keywords, Decorators: decorators, Body: body}, n)
}

func (b *builder) decoratedDef(n *tree_sitter.Node) pyast.Stmt {
	var decorators []pyast.Expr
	var inner *tree_sitter.Node
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "decorator":
			if e := firstNamedChild(c); e != nil {
				decorators = append(decorators, b.expr(e))
			}
		case "function_definition":
			inner = c
		case "class_definition":
			inner = c
		}
	}
	if inner == nil {
		return b.withSpan(&pyast.Pass{}, n)
	}
	if inner.Kind() == "class_definition" {
		return b.classDef(inner, decorators)
	}
	return b.functionDef(inner, decorators, isAsyncDef(inner))
}

func isAsyncDef(n *tree_sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == "async" {
			return true
		}
	}
	return false
}

func (b *builder) expressionStatement(n *tree_sitter.Node) pyast.Stmt {
	inner := firstNamedChild(n)
	if inner == nil {
		return b.withSpan(&pyast.Pass{}, n)
	}
	switch inner.Kind() {
	case "assignment":
		return b.assignment(n, inner)
	case "augmented_assignment":
		return b.augmentedAssignment(n, inner)
	default:
		return b.withSpan(&pyast.ExprStmt{Value: b.expr(inner)}, n)
	}
}

// assignment handles `target = value`, `target: type = value`, and the
// annotation-only `target: type` form, unwrapping chained assignment
// (`a = b = value`) into one multi-target Assign.
func (b *builder) assignment(stmt, n *tree_sitter.Node) pyast.Stmt {
	typeNode := n.ChildByFieldName("type")
	leftNode := n.ChildByFieldName("left")
	rightNode := n.ChildByFieldName("right")

	if typeNode != nil {
		var value pyast.Expr
		if rightNode != nil {
			value = b.expr(rightNode)
		}
		return b.withSpan(&pyast.AnnAssign{
			Target: b.expr(leftNode), Annotation: b.expr(typeNode), Value: value,
		}, stmt)
	}

	targets := []pyast.Expr{b.expr(leftNode)}
	cur := rightNode
	for cur != nil && cur.Kind() == "assignment" && cur.ChildByFieldName("type") == nil {
		targets = append(targets, b.expr(cur.ChildByFieldName("left")))
		cur = cur.ChildByFieldName("right")
	}
	var value pyast.Expr
	if cur != nil {
		value = b.expr(cur)
	}
	return b.withSpan(&pyast.Assign{Targets: targets, Value: value}, stmt)
}

func (b *builder) augmentedAssignment(stmt, n *tree_sitter.Node) pyast.Stmt {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	op := ""
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		op = b.text(opNode)
	}
	return b.withSpan(&pyast.AugAssign{Target: b.expr(left), Op: op, Value: b.expr(right)}, stmt)
}

func (b *builder) ifStatement(n *tree_sitter.Node) pyast.Stmt {
	test := b.expr(n.ChildByFieldName("condition"))
	body := b.block(n, "consequence")
	var orelse []pyast.Stmt
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "elif_clause":
			orelse = []pyast.Stmt{b.elifClause(c)}
		case "else_clause":
			if len(orelse) == 0 {
				orelse = b.block(c, "body")
			}
		}
	}
	return b.withSpan(&pyast.If{Test: test, Body: body, Orelse: orelse}, n)
}

func (b *builder) elifClause(n *tree_sitter.Node) pyast.Stmt {
	test := b.expr(n.ChildByFieldName("condition"))
	body := b.block(n, "consequence")
	return &pyast.If{Test: test, Body: body}
}

func (b *builder) forStatement(n *tree_sitter.Node) pyast.Stmt {
	target := b.expr(n.ChildByFieldName("left"))
	iter := b.expr(n.ChildByFieldName("right"))
	body := b.block(n, "body")
	var orelse []pyast.Stmt
	if elseN := firstChildOfKind(n, "else_clause"); elseN != nil {
		orelse = b.block(elseN, "body")
	}
	return b.withSpan(&pyast.For{Target: target, Iter: iter, Body: body, Orelse: orelse, IsAsync: isAsyncDef(n)}, n)
}

func (b *builder) whileStatement(n *tree_sitter.Node) pyast.Stmt {
	test := b.expr(n.ChildByFieldName("condition"))
	body := b.block(n, "body")
	var orelse []pyast.Stmt
	if elseN := firstChildOfKind(n, "else_clause"); elseN != nil {
		orelse = b.block(elseN, "body")
	}
	return b.withSpan(&pyast.While{Test: test, Body: body, Orelse: orelse}, n)
}

func (b *builder) withStatement(n *tree_sitter.Node) pyast.Stmt {
	var items []pyast.WithItem
	for _, c := range namedChildren(n) {
		if c.Kind() != "with_clause" {
			continue
		}
		for _, item := range namedChildren(c) {
			if item.Kind() != "with_item" {
				continue
			}
			ctxNode := firstNamedChild(item)
			if ctxNode == nil {
				continue
			}
			if ctxNode.Kind() == "as_pattern" {
				valueNode := firstNamedChild(ctxNode)
				aliasNode := namedChildren(ctxNode)
				var alias pyast.Expr
				if len(aliasNode) > 1 {
					alias = b.expr(aliasNode[1])
				}
				items = append(items, pyast.WithItem{ContextExpr: b.expr(valueNode), OptionalVar: alias})
			} else {
				items = append(items, pyast.WithItem{ContextExpr: b.expr(ctxNode)})
			}
		}
	}
	body := b.block(n, "body")
	return b.withSpan(&pyast.With{Items: items, Body: body, IsAsync: isAsyncDef(n)}, n)
}

func (b *builder) tryStatement(n *tree_sitter.Node) pyast.Stmt {
	body := b.block(n, "body")
	var handlers []pyast.ExceptHandler
	var orelse, finally []pyast.Stmt
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "except_clause":
			handlers = append(handlers, b.exceptClause(c))
		case "else_clause":
			orelse = b.block(c, "body")
		case "finally_clause":
			finally = b.block(c, "body")
		}
	}
	return b.withSpan(&pyast.Try{Body: body, Handlers: handlers, Orelse: orelse, Finally: finally}, n)
}

func (b *builder) exceptClause(n *tree_sitter.Node) pyast.ExceptHandler {
	children := namedChildren(n)
	var typeExpr pyast.Expr
	var name string
	var body []pyast.Stmt
	for _, c := range children {
		switch c.Kind() {
		case "as_pattern":
			inner := namedChildren(c)
			if len(inner) > 0 {
				typeExpr = b.expr(inner[0])
			}
			if len(inner) > 1 {
				name = b.text(inner[1])
			}
		case "block":
			body = b.statements(c)
		default:
			if typeExpr == nil && c.Kind() != "block" {
				typeExpr = b.expr(c)
			}
		}
	}
	return pyast.ExceptHandler{Type: typeExpr, Name: name, Body: body}
}

func (b *builder) matchStatement(n *tree_sitter.Node) pyast.Stmt {
	subject := b.expr(n.ChildByFieldName("subject"))
	var cases []pyast.MatchCase
	for _, c := range namedChildren(n) {
		if c.Kind() != "case_clause" {
			continue
		}
		var guard, pattern pyast.Expr
		if g := c.ChildByFieldName("guard"); g != nil {
			guard = b.expr(g)
		}
		if p := firstChildOfKind(c, "case_pattern"); p != nil {
			pattern = b.expr(p)
		}
		body := b.block(c, "consequence")
		cases = append(cases, pyast.MatchCase{Pattern: pattern, Guard: guard, Body: body})
	}
	return b.withSpan(&pyast.Match{Subject: subject, Cases: cases}, n)
}

package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/gocribo/cribo/internal/pyast"
)

// expr builds the pyast.Expr for a tree-sitter expression node. Node kinds
// outside this switch (walrus targets inside rare grammar corners, the
// newest match-pattern forms) fall back to a Name carrying the node's raw
// text verbatim: the bundler's rename/hoist passes only ever need to find
// and rewrite *known* Name/Attribute shapes, so an unrecognized expression
// degrades to inert, unrenamable text rather than aborting the parse.
func (b *builder) expr(n *tree_sitter.Node) pyast.Expr {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "identifier":
		return b.withExprSpan(&pyast.Name{Id: b.text(n)}, n)
	case "attribute":
		obj := b.expr(n.ChildByFieldName("object"))
		attr := ""
		if a := n.ChildByFieldName("attribute"); a != nil {
			attr = b.text(a)
		}
		return b.withExprSpan(&pyast.Attribute{Value: obj, Attr: attr}, n)
	case "call":
		fn := b.expr(n.ChildByFieldName("function"))
		args, keywords := b.argumentList(n.ChildByFieldName("arguments"))
		return b.withExprSpan(&pyast.Call{Func: fn, Args: args, Keywords: keywords}, n)
	case "integer":
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstInt, Value: b.text(n)}, n)
	case "float":
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstFloat, Value: b.text(n)}, n)
	case "true", "false":
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstBool, Value: b.text(n)}, n)
	case "none":
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstNone, Value: "None"}, n)
	case "ellipsis":
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstEllipsis, Value: "..."}, n)
	case "string":
		return b.stringLiteral(n)
	case "concatenated_string":
		return b.concatenatedString(n)
	case "list":
		return b.withExprSpan(&pyast.ListExpr{Elts: b.exprList(n)}, n)
	case "tuple":
		return b.withExprSpan(&pyast.Tuple{Elts: b.exprList(n)}, n)
	case "set":
		return b.withExprSpan(&pyast.SetExpr{Elts: b.exprList(n)}, n)
	case "dictionary":
		return b.dictionary(n)
	case "parenthesized_expression":
		if c := firstNamedChild(n); c != nil {
			return b.expr(c)
		}
		return b.withExprSpan(&pyast.Tuple{}, n)
	case "binary_operator":
		left := b.expr(n.ChildByFieldName("left"))
		right := b.expr(n.ChildByFieldName("right"))
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = b.text(o)
		}
		return b.withExprSpan(&pyast.BinOp{Left: left, Op: op, Right: right}, n)
	case "boolean_operator":
		left := b.expr(n.ChildByFieldName("left"))
		right := b.expr(n.ChildByFieldName("right"))
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = b.text(o)
		}
		return b.withExprSpan(&pyast.BoolOp{Op: op, Values: []pyast.Expr{left, right}}, n)
	case "unary_operator":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = b.text(o)
		}
		arg := b.expr(n.ChildByFieldName("argument"))
		return b.withExprSpan(&pyast.UnaryOp{Op: op, Operand: arg}, n)
	case "not_operator":
		arg := b.expr(n.ChildByFieldName("argument"))
		return b.withExprSpan(&pyast.UnaryOp{Op: "not", Operand: arg}, n)
	case "comparison_operator":
		return b.comparison(n)
	case "lambda":
		var params []pyast.Parameter
		if p := n.ChildByFieldName("parameters"); p != nil {
			params = b.parameters(p)
		}
		body := b.expr(n.ChildByFieldName("body"))
		return b.withExprSpan(&pyast.Lambda{Params: params, Body: body}, n)
	case "conditional_expression":
		children := namedChildren(n)
		if len(children) != 3 {
			if len(children) > 0 {
				return b.expr(children[0])
			}
			return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstNone}, n)
		}
		return b.withExprSpan(&pyast.IfExp{Body: b.expr(children[0]), Test: b.expr(children[1]), Orelse: b.expr(children[2])}, n)
	case "subscript":
		valueNode := n.ChildByFieldName("value")
		value := b.expr(valueNode)
		var subs []*tree_sitter.Node
		for _, c := range namedChildren(n) {
			if c == valueNode {
				continue
			}
			subs = append(subs, c)
		}
		var slice pyast.Expr
		switch len(subs) {
		case 0:
			slice = nil
		case 1:
			slice = b.expr(subs[0])
		default:
			var elts []pyast.Expr
			for _, s := range subs {
				elts = append(elts, b.expr(s))
			}
			slice = &pyast.Tuple{Elts: elts}
		}
		return b.withExprSpan(&pyast.Subscript{Value: value, Slice: slice}, n)
	case "slice":
		return b.sliceExpr(n)
	case "list_splat":
		if c := firstNamedChild(n); c != nil {
			return b.withExprSpan(&pyast.Starred{Value: b.expr(c)}, n)
		}
	case "list_comprehension":
		return b.withExprSpan(&pyast.ListComp{Elt: b.expr(n.ChildByFieldName("body")), Generators: b.comprehensions(n)}, n)
	case "set_comprehension":
		return b.withExprSpan(&pyast.SetComp{Elt: b.expr(n.ChildByFieldName("body")), Generators: b.comprehensions(n)}, n)
	case "generator_expression":
		return b.withExprSpan(&pyast.GeneratorExp{Elt: b.expr(n.ChildByFieldName("body")), Generators: b.comprehensions(n)}, n)
	case "dictionary_comprehension":
		body := n.ChildByFieldName("body")
		var key, value pyast.Expr
		if body != nil && body.Kind() == "pair" {
			key = b.expr(body.ChildByFieldName("key"))
			value = b.expr(body.ChildByFieldName("value"))
		}
		return b.withExprSpan(&pyast.DictComp{Key: key, Value: value, Generators: b.comprehensions(n)}, n)
	case "await":
		if c := firstNamedChild(n); c != nil {
			return b.expr(c)
		}
	case "yield":
		if c := firstNamedChild(n); c != nil {
			return b.expr(c)
		}
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstNone}, n)
	case "named_expression":
		// walrus `target := value`; the bundler only needs the value's
		// identity for read/write tracking, so this degrades to its value.
		return b.expr(n.ChildByFieldName("value"))
	case "keyword_argument":
		return b.expr(n.ChildByFieldName("value"))
	}
	return b.withExprSpan(&pyast.Name{Id: b.text(n)}, n)
}

func (b *builder) stringLiteral(n *tree_sitter.Node) pyast.Expr {
	kind := pyast.ConstStr
	hasInterpolation := false
	var parts []pyast.Expr
	for _, c := range namedChildren(n) {
		if c.Kind() == "interpolation" {
			hasInterpolation = true
			if e := firstNamedChild(c); e != nil {
				parts = append(parts, &pyast.FormattedValue{Value: b.expr(e)})
			}
			continue
		}
		if c.Kind() == "string_content" {
			parts = append(parts, &pyast.Constant{Kind: pyast.ConstStr, Value: b.text(c)})
		}
	}
	if hasInterpolation {
		return b.withExprSpan(&pyast.JoinedStr{Values: parts}, n)
	}
	if isBytesLiteral(b.text(n)) {
		kind = pyast.ConstBytes
	}
	return b.withExprSpan(&pyast.Constant{Kind: kind, Value: b.text(n)}, n)
}

func isBytesLiteral(raw string) bool {
	for _, r := range raw {
		switch r {
		case 'b', 'B':
			return true
		case '\'', '"':
			return false
		default:
			continue
		}
	}
	return false
}

func (b *builder) concatenatedString(n *tree_sitter.Node) pyast.Expr {
	var values []pyast.Expr
	joined := false
	for _, c := range namedChildren(n) {
		v := b.stringLiteral(c)
		if _, ok := v.(*pyast.JoinedStr); ok {
			joined = true
		}
		values = append(values, v)
	}
	if joined {
		return b.withExprSpan(&pyast.JoinedStr{Values: values}, n)
	}
	return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstStr, Value: b.text(n)}, n)
}

func (b *builder) exprList(n *tree_sitter.Node) []pyast.Expr {
	var out []pyast.Expr
	for _, c := range namedChildren(n) {
		out = append(out, b.expr(c))
	}
	return out
}

func (b *builder) dictionary(n *tree_sitter.Node) pyast.Expr {
	var keys, values []pyast.Expr
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "pair":
			keys = append(keys, b.expr(c.ChildByFieldName("key")))
			values = append(values, b.expr(c.ChildByFieldName("value")))
		case "dictionary_splat":
			keys = append(keys, nil)
			if e := firstNamedChild(c); e != nil {
				values = append(values, b.expr(e))
			} else {
				values = append(values, nil)
			}
		}
	}
	return b.withExprSpan(&pyast.DictExpr{Keys: keys, Values: values}, n)
}

func (b *builder) comparison(n *tree_sitter.Node) pyast.Expr {
	var operands []*tree_sitter.Node
	var ops []string
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.IsNamed() {
			operands = append(operands, c)
		} else {
			switch c.Kind() {
			case "<", ">", "<=", ">=", "==", "!=", "in", "not in", "is", "is not":
				ops = append(ops, c.Kind())
			}
		}
	}
	if len(operands) == 0 {
		return b.withExprSpan(&pyast.Constant{Kind: pyast.ConstNone}, n)
	}
	left := b.expr(operands[0])
	var comparators []pyast.Expr
	for _, o := range operands[1:] {
		comparators = append(comparators, b.expr(o))
	}
	return b.withExprSpan(&pyast.Compare{Left: left, Ops: ops, Comparators: comparators}, n)
}

func (b *builder) sliceExpr(n *tree_sitter.Node) pyast.Expr {
	parts := namedChildren(n)
	var elts []pyast.Expr
	for _, p := range parts {
		elts = append(elts, b.expr(p))
	}
	// Slices (lower:upper:step) have no direct pyast node; represented as
	// a Tuple of the present components so Subscript.Slice stays printable
	// and the bundler's read-tracking still sees every contained Name.
	return b.withExprSpan(&pyast.Tuple{Elts: elts}, n)
}

func (b *builder) comprehensions(n *tree_sitter.Node) []pyast.Comprehension {
	var out []pyast.Comprehension
	for _, c := range namedChildren(n) {
		if c.Kind() != "for_in_clause" {
			continue
		}
		comp := pyast.Comprehension{}
		for i := uint(0); i < c.ChildCount(); i++ {
			cc := c.Child(i)
			if cc != nil && !cc.IsNamed() && cc.Kind() == "async" {
				comp.Async = true
			}
		}
		left := c.ChildByFieldName("left")
		right := c.ChildByFieldName("right")
		if left != nil {
			comp.Target = b.expr(left)
		}
		if right != nil {
			comp.Iter = b.expr(right)
		}
		out = append(out, comp)
	}
	for _, c := range namedChildren(n) {
		if c.Kind() != "if_clause" {
			continue
		}
		if len(out) == 0 {
			continue
		}
		if cond := firstNamedChild(c); cond != nil {
			out[len(out)-1].Ifs = append(out[len(out)-1].Ifs, b.expr(cond))
		}
	}
	return out
}

func (b *builder) keywordArgument(n *tree_sitter.Node) pyast.Keyword {
	name := ""
	if nm := n.ChildByFieldName("name"); nm != nil {
		name = b.text(nm)
	}
	return pyast.Keyword{Name: name, Value: b.expr(n.ChildByFieldName("value"))}
}

func (b *builder) argumentList(n *tree_sitter.Node) ([]pyast.Expr, []pyast.Keyword) {
	if n == nil {
		return nil, nil
	}
	var args []pyast.Expr
	var keywords []pyast.Keyword
	for _, c := range namedChildren(n) {
		switch c.Kind() {
		case "keyword_argument":
			keywords = append(keywords, b.keywordArgument(c))
		case "dictionary_splat":
			if e := firstNamedChild(c); e != nil {
				keywords = append(keywords, pyast.Keyword{Value: b.expr(e)})
			}
		case "list_splat":
			if e := firstNamedChild(c); e != nil {
				args = append(args, b.withExprSpan(&pyast.Starred{Value: b.expr(e)}, c))
			}
		default:
			args = append(args, b.expr(c))
		}
	}
	return args, keywords
}

package printer

import (
	"strings"

	"github.com/gocribo/cribo/internal/pyast"
)

// exprString renders e as a single-line Python expression. Sub-expressions
// that are themselves operators (BinOp, BoolOp, Compare, Lambda, IfExp,
// UnaryOp) are always parenthesized when nested: Python tolerates the
// redundant parens, and tracking full operator precedence/associativity
// for minimal-parens output isn't needed for round-tripping a bundle.
func exprString(e pyast.Expr) string {
	if e == nil {
		return ""
	}
	switch e := e.(type) {
	case *pyast.Name:
		return e.Id
	case *pyast.Attribute:
		return maybeParen(e.Value) + "." + e.Attr
	case *pyast.Call:
		return maybeParen(e.Func) + "(" + callArgs(e.Args, e.Keywords) + ")"
	case *pyast.Constant:
		return constantString(e)
	case *pyast.Tuple:
		if len(e.Elts) == 1 {
			return "(" + exprString(e.Elts[0]) + ",)"
		}
		return "(" + exprList(e.Elts) + ")"
	case *pyast.ListExpr:
		return "[" + exprList(e.Elts) + "]"
	case *pyast.SetExpr:
		if len(e.Elts) == 0 {
			return "set()"
		}
		return "{" + exprList(e.Elts) + "}"
	case *pyast.DictExpr:
		return dictString(e)
	case *pyast.BinOp:
		return maybeParen(e.Left) + " " + e.Op + " " + maybeParen(e.Right)
	case *pyast.BoolOp:
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = maybeParen(v)
		}
		return strings.Join(parts, " "+e.Op+" ")
	case *pyast.UnaryOp:
		if e.Op == "not" {
			return "not " + maybeParen(e.Operand)
		}
		return e.Op + maybeParen(e.Operand)
	case *pyast.Compare:
		var sb strings.Builder
		sb.WriteString(maybeParen(e.Left))
		for i, op := range e.Ops {
			sb.WriteString(" ")
			sb.WriteString(op)
			sb.WriteString(" ")
			if i < len(e.Comparators) {
				sb.WriteString(maybeParen(e.Comparators[i]))
			}
		}
		return sb.String()
	case *pyast.Lambda:
		body := exprString(e.Body)
		if len(e.Params) == 0 {
			return "lambda: " + body
		}
		return "lambda " + lambdaParams(e.Params) + ": " + body
	case *pyast.IfExp:
		return exprString(e.Body) + " if " + exprString(e.Test) + " else " + exprString(e.Orelse)
	case *pyast.Subscript:
		if e.Slice == nil {
			return maybeParen(e.Value) + "[]"
		}
		return maybeParen(e.Value) + "[" + sliceString(e.Slice) + "]"
	case *pyast.Starred:
		return "*" + exprString(e.Value)
	case *pyast.ListComp:
		return "[" + exprString(e.Elt) + generators(e.Generators) + "]"
	case *pyast.SetComp:
		return "{" + exprString(e.Elt) + generators(e.Generators) + "}"
	case *pyast.GeneratorExp:
		return "(" + exprString(e.Elt) + generators(e.Generators) + ")"
	case *pyast.DictComp:
		return "{" + exprString(e.Key) + ": " + exprString(e.Value) + generators(e.Generators) + "}"
	case *pyast.JoinedStr:
		return joinedStrString(e)
	case *pyast.FormattedValue:
		return "{" + exprString(e.Value) + "}"
	default:
		return ""
	}
}

// sliceString renders a Subscript's Slice. internal/parser/treesitter
// represents a `lower:upper:step` slice as a Tuple of its present parts
// (there is no dedicated pyast.Slice node), so colon-join a bare Tuple
// here instead of printing it as a parenthesized tuple literal.
func sliceString(slice pyast.Expr) string {
	if t, ok := slice.(*pyast.Tuple); ok && len(t.Elts) > 1 {
		parts := make([]string, len(t.Elts))
		for i, el := range t.Elts {
			parts[i] = exprString(el)
		}
		return strings.Join(parts, ":")
	}
	return exprString(slice)
}

func isOperatorExpr(e pyast.Expr) bool {
	switch e.(type) {
	case *pyast.BinOp, *pyast.BoolOp, *pyast.Compare, *pyast.Lambda, *pyast.IfExp, *pyast.UnaryOp:
		return true
	default:
		return false
	}
}

func maybeParen(e pyast.Expr) string {
	s := exprString(e)
	if isOperatorExpr(e) {
		return "(" + s + ")"
	}
	return s
}

func exprList(es []pyast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = exprString(e)
	}
	return strings.Join(parts, ", ")
}

func callArgs(args []pyast.Expr, keywords []pyast.Keyword) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, exprString(a))
	}
	for _, kw := range keywords {
		parts = append(parts, keywordString(kw))
	}
	return strings.Join(parts, ", ")
}

func keywordString(kw pyast.Keyword) string {
	if kw.Name == "" {
		return "**" + exprString(kw.Value)
	}
	return kw.Name + "=" + exprString(kw.Value)
}

func dictString(e *pyast.DictExpr) string {
	var parts []string
	for i, k := range e.Keys {
		v := ""
		if i < len(e.Values) {
			v = exprString(e.Values[i])
		}
		if k == nil {
			parts = append(parts, "**"+v)
			continue
		}
		parts = append(parts, exprString(k)+": "+v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func lambdaParams(params []pyast.Parameter) string {
	var parts []string
	emittedStar := false
	for _, param := range params {
		switch param.Kind {
		case pyast.ParamVarArgs:
			parts = append(parts, "*"+param.Name)
			emittedStar = true
		case pyast.ParamKwArgs:
			parts = append(parts, "**"+param.Name)
		case pyast.ParamKeywordOnly:
			if !emittedStar {
				parts = append(parts, "*")
				emittedStar = true
			}
			parts = append(parts, param.Name)
		default:
			parts = append(parts, param.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func generators(gens []pyast.Comprehension) string {
	var sb strings.Builder
	for _, g := range gens {
		kw := " for "
		if g.Async {
			kw = " async for "
		}
		sb.WriteString(kw)
		sb.WriteString(exprString(g.Target))
		sb.WriteString(" in ")
		sb.WriteString(exprString(g.Iter))
		for _, ifExpr := range g.Ifs {
			sb.WriteString(" if ")
			sb.WriteString(exprString(ifExpr))
		}
	}
	return sb.String()
}

func constantString(c *pyast.Constant) string {
	switch c.Kind {
	case pyast.ConstNone:
		return "None"
	default:
		return c.Value
	}
}

func joinedStrString(e *pyast.JoinedStr) string {
	var sb strings.Builder
	sb.WriteString(`f"`)
	for _, v := range e.Values {
		switch v := v.(type) {
		case *pyast.Constant:
			sb.WriteString(v.Value)
		case *pyast.FormattedValue:
			sb.WriteString("{")
			sb.WriteString(exprString(v.Value))
			sb.WriteString("}")
		}
	}
	sb.WriteString(`"`)
	return sb.String()
}

package pyast

// Visit calls fn for n and then recurses into every child node in source
// order. fn returning false skips n's children but not its siblings.
func Visit(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Module:
		visitStmts(v.Body, fn)
	case *Import:
		// leaf
	case *ImportFrom:
		// leaf
	case *FunctionDef:
		for _, d := range v.Decorators {
			Visit(d, fn)
		}
		for _, p := range v.Params {
			if p.Default != nil {
				Visit(p.Default, fn)
			}
		}
		if v.Returns != nil {
			Visit(v.Returns, fn)
		}
		visitStmts(v.Body, fn)
	case *ClassDef:
		for _, d := range v.Decorators {
			Visit(d, fn)
		}
		for _, b := range v.Bases {
			Visit(b, fn)
		}
		for _, k := range v.Keywords {
			Visit(k.Value, fn)
		}
		visitStmts(v.Body, fn)
	case *Assign:
		for _, t := range v.Targets {
			Visit(t, fn)
		}
		Visit(v.Value, fn)
	case *AnnAssign:
		Visit(v.Target, fn)
		Visit(v.Annotation, fn)
		if v.Value != nil {
			Visit(v.Value, fn)
		}
	case *AugAssign:
		Visit(v.Target, fn)
		Visit(v.Value, fn)
	case *ExprStmt:
		Visit(v.Value, fn)
	case *Return:
		if v.Value != nil {
			Visit(v.Value, fn)
		}
	case *Pass:
	case *Global:
	case *Nonlocal:
	case *Delete:
		for _, t := range v.Targets {
			Visit(t, fn)
		}
	case *Raise:
		if v.Exc != nil {
			Visit(v.Exc, fn)
		}
		if v.Cause != nil {
			Visit(v.Cause, fn)
		}
	case *Assert:
		Visit(v.Test, fn)
		if v.Msg != nil {
			Visit(v.Msg, fn)
		}
	case *If:
		Visit(v.Test, fn)
		visitStmts(v.Body, fn)
		visitStmts(v.Orelse, fn)
	case *For:
		Visit(v.Target, fn)
		Visit(v.Iter, fn)
		visitStmts(v.Body, fn)
		visitStmts(v.Orelse, fn)
	case *While:
		Visit(v.Test, fn)
		visitStmts(v.Body, fn)
		visitStmts(v.Orelse, fn)
	case *With:
		for _, it := range v.Items {
			Visit(it.ContextExpr, fn)
			if it.OptionalVar != nil {
				Visit(it.OptionalVar, fn)
			}
		}
		visitStmts(v.Body, fn)
	case *Try:
		visitStmts(v.Body, fn)
		for _, h := range v.Handlers {
			if h.Type != nil {
				Visit(h.Type, fn)
			}
			visitStmts(h.Body, fn)
		}
		visitStmts(v.Orelse, fn)
		visitStmts(v.Finally, fn)
	case *Match:
		Visit(v.Subject, fn)
		for _, c := range v.Cases {
			if c.Pattern != nil {
				Visit(c.Pattern, fn)
			}
			if c.Guard != nil {
				Visit(c.Guard, fn)
			}
			visitStmts(c.Body, fn)
		}
	case *Name, *Constant:
		// leaves
	case *Attribute:
		Visit(v.Value, fn)
	case *Call:
		Visit(v.Func, fn)
		for _, a := range v.Args {
			Visit(a, fn)
		}
		for _, k := range v.Keywords {
			Visit(k.Value, fn)
		}
	case *Tuple:
		visitExprs(v.Elts, fn)
	case *ListExpr:
		visitExprs(v.Elts, fn)
	case *SetExpr:
		visitExprs(v.Elts, fn)
	case *DictExpr:
		for _, k := range v.Keys {
			if k != nil {
				Visit(k, fn)
			}
		}
		visitExprs(v.Values, fn)
	case *BinOp:
		Visit(v.Left, fn)
		Visit(v.Right, fn)
	case *BoolOp:
		visitExprs(v.Values, fn)
	case *UnaryOp:
		Visit(v.Operand, fn)
	case *Compare:
		Visit(v.Left, fn)
		visitExprs(v.Comparators, fn)
	case *Lambda:
		for _, p := range v.Params {
			if p.Default != nil {
				Visit(p.Default, fn)
			}
		}
		Visit(v.Body, fn)
	case *IfExp:
		Visit(v.Test, fn)
		Visit(v.Body, fn)
		Visit(v.Orelse, fn)
	case *Subscript:
		Visit(v.Value, fn)
		Visit(v.Slice, fn)
	case *Starred:
		Visit(v.Value, fn)
	case *ListComp:
		Visit(v.Elt, fn)
		visitComprehensions(v.Generators, fn)
	case *SetComp:
		Visit(v.Elt, fn)
		visitComprehensions(v.Generators, fn)
	case *DictComp:
		Visit(v.Key, fn)
		Visit(v.Value, fn)
		visitComprehensions(v.Generators, fn)
	case *GeneratorExp:
		Visit(v.Elt, fn)
		visitComprehensions(v.Generators, fn)
	case *JoinedStr:
		visitExprs(v.Values, fn)
	case *FormattedValue:
		Visit(v.Value, fn)
		if v.FormatSpec != nil {
			Visit(v.FormatSpec, fn)
		}
	}
}

func visitStmts(stmts []Stmt, fn func(Node) bool) {
	for _, s := range stmts {
		Visit(s, fn)
	}
}

func visitExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Visit(e, fn)
	}
}

func visitComprehensions(gens []Comprehension, fn func(Node) bool) {
	for _, g := range gens {
		Visit(g.Target, fn)
		Visit(g.Iter, fn)
		visitExprs(g.Ifs, fn)
	}
}

package vm

import (
	"github.com/gocribo/cribo/internal/bundler"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

// cloneStmt deep-copies stmt, renaming any Name reference whose span is in
// renames and, when the statement's own span names a renamed definition,
// rewriting the bound identifier itself (spec.md §4.11's rename_clone).
//
// A definition's rename key is keyed by the *statement's* span (matching
// how internal/semantic records a binding's Span), so a statement that
// binds more than one name at once (a multi-target assign, a multi-name
// import) can only ever have its first bound name disambiguated this way;
// this mirrors internal/semantic's own accepted simplification of
// recording one span per binding rather than per-identifier-token spans,
// and in practice conflict-renames land on single-target definitions.
func cloneStmt(s pyast.Stmt, module registry.ModuleId, renames map[bundler.RenameKey]string) pyast.Stmt {
	if s == nil {
		return nil
	}
	defSpan := pyast.SpanOf(s)
	defName, renamed := renameLookup(renames, module, defSpan)

	switch v := s.(type) {
	case *pyast.Import:
		names := make([]pyast.Alias, len(v.Names))
		copy(names, v.Names)
		if renamed && len(names) > 0 {
			names[0].Local = defName
		}
		return &pyast.Import{Names: names}
	case *pyast.ImportFrom:
		names := make([]pyast.Alias, len(v.Names))
		copy(names, v.Names)
		if renamed && len(names) > 0 {
			names[0].Local = defName
		}
		return &pyast.ImportFrom{Module: v.Module, Names: names, Level: v.Level}
	case *pyast.FunctionDef:
		name := v.Name
		if renamed {
			name = defName
		}
		params := make([]pyast.Parameter, len(v.Params))
		for i, p := range v.Params {
			params[i] = pyast.Parameter{Name: p.Name, Default: cloneExpr(p.Default, module, renames), Kind: p.Kind}
		}
		decorators := make([]pyast.Expr, len(v.Decorators))
		for i, d := range v.Decorators {
			decorators[i] = cloneExpr(d, module, renames)
		}
		body := cloneBody(v.Body, module, renames)
		return &pyast.FunctionDef{
			Name: name, Params: params, Decorators: decorators,
			Returns: cloneExpr(v.Returns, module, renames), Body: body, IsAsync: v.IsAsync,
		}
	case *pyast.ClassDef:
		name := v.Name
		if renamed {
			name = defName
		}
		bases := make([]pyast.Expr, len(v.Bases))
		for i, b := range v.Bases {
			bases[i] = cloneExpr(b, module, renames)
		}
		keywords := make([]pyast.Keyword, len(v.Keywords))
		for i, k := range v.Keywords {
			keywords[i] = pyast.Keyword{Name: k.Name, Value: cloneExpr(k.Value, module, renames)}
		}
		decorators := make([]pyast.Expr, len(v.Decorators))
		for i, d := range v.Decorators {
			decorators[i] = cloneExpr(d, module, renames)
		}
		return &pyast.ClassDef{
			Name: name, Bases: bases, Keywords: keywords, Decorators: decorators,
			Body: cloneBody(v.Body, module, renames),
		}
	case *pyast.Assign:
		targets := make([]pyast.Expr, len(v.Targets))
		for i, t := range v.Targets {
			targets[i] = cloneTarget(t, module, renames, i == 0 && renamed, defName)
		}
		return &pyast.Assign{Targets: targets, Value: cloneExpr(v.Value, module, renames)}
	case *pyast.AnnAssign:
		return &pyast.AnnAssign{
			Target:     cloneTarget(v.Target, module, renames, renamed, defName),
			Annotation: cloneExpr(v.Annotation, module, renames),
			Value:      cloneExpr(v.Value, module, renames),
		}
	case *pyast.AugAssign:
		return &pyast.AugAssign{
			Target: cloneExpr(v.Target, module, renames),
			Op:     v.Op,
			Value:  cloneExpr(v.Value, module, renames),
		}
	case *pyast.ExprStmt:
		return &pyast.ExprStmt{Value: cloneExpr(v.Value, module, renames)}
	case *pyast.Return:
		return &pyast.Return{Value: cloneExpr(v.Value, module, renames)}
	case *pyast.Pass:
		return &pyast.Pass{}
	case *pyast.Global:
		return &pyast.Global{Names: append([]string(nil), v.Names...)}
	case *pyast.Nonlocal:
		return &pyast.Nonlocal{Names: append([]string(nil), v.Names...)}
	case *pyast.Delete:
		targets := make([]pyast.Expr, len(v.Targets))
		for i, t := range v.Targets {
			targets[i] = cloneExpr(t, module, renames)
		}
		return &pyast.Delete{Targets: targets}
	case *pyast.Raise:
		return &pyast.Raise{Exc: cloneExpr(v.Exc, module, renames), Cause: cloneExpr(v.Cause, module, renames)}
	case *pyast.Assert:
		return &pyast.Assert{Test: cloneExpr(v.Test, module, renames), Msg: cloneExpr(v.Msg, module, renames)}
	case *pyast.If:
		return &pyast.If{
			Test: cloneExpr(v.Test, module, renames), Body: cloneBody(v.Body, module, renames),
			Orelse: cloneBody(v.Orelse, module, renames),
		}
	case *pyast.For:
		return &pyast.For{
			Target: cloneTarget(v.Target, module, renames, false, ""), Iter: cloneExpr(v.Iter, module, renames),
			Body: cloneBody(v.Body, module, renames), Orelse: cloneBody(v.Orelse, module, renames), IsAsync: v.IsAsync,
		}
	case *pyast.While:
		return &pyast.While{
			Test: cloneExpr(v.Test, module, renames), Body: cloneBody(v.Body, module, renames),
			Orelse: cloneBody(v.Orelse, module, renames),
		}
	case *pyast.With:
		items := make([]pyast.WithItem, len(v.Items))
		for i, it := range v.Items {
			items[i] = pyast.WithItem{
				ContextExpr: cloneExpr(it.ContextExpr, module, renames),
				OptionalVar: cloneExpr(it.OptionalVar, module, renames),
			}
		}
		return &pyast.With{Items: items, Body: cloneBody(v.Body, module, renames), IsAsync: v.IsAsync}
	case *pyast.Try:
		handlers := make([]pyast.ExceptHandler, len(v.Handlers))
		for i, h := range v.Handlers {
			handlers[i] = pyast.ExceptHandler{Type: cloneExpr(h.Type, module, renames), Name: h.Name, Body: cloneBody(h.Body, module, renames)}
		}
		return &pyast.Try{
			Body: cloneBody(v.Body, module, renames), Handlers: handlers,
			Orelse: cloneBody(v.Orelse, module, renames), Finally: cloneBody(v.Finally, module, renames),
		}
	case *pyast.Match:
		cases := make([]pyast.MatchCase, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = pyast.MatchCase{Pattern: cloneExpr(c.Pattern, module, renames), Guard: cloneExpr(c.Guard, module, renames), Body: cloneBody(c.Body, module, renames)}
		}
		return &pyast.Match{Subject: cloneExpr(v.Subject, module, renames), Cases: cases}
	default:
		return s
	}
}

func cloneBody(body []pyast.Stmt, module registry.ModuleId, renames map[bundler.RenameKey]string) []pyast.Stmt {
	if body == nil {
		return nil
	}
	out := make([]pyast.Stmt, len(body))
	for i, s := range body {
		out[i] = cloneStmt(s, module, renames)
	}
	return out
}

// cloneTarget clones an assignment/for/with target, applying a
// definition-level rename directly to a bare Name target; compound
// targets (tuple/list/starred unpacking) only carry reference-level
// renames via cloneExpr, since a multi-name binding can't be
// disambiguated from one statement-wide rename key.
func cloneTarget(e pyast.Expr, module registry.ModuleId, renames map[bundler.RenameKey]string, forceRename bool, newName string) pyast.Expr {
	if forceRename {
		if _, ok := e.(*pyast.Name); ok {
			return &pyast.Name{Id: newName}
		}
	}
	return cloneExpr(e, module, renames)
}

func cloneExpr(e pyast.Expr, module registry.ModuleId, renames map[bundler.RenameKey]string) pyast.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *pyast.Name:
		id := v.Id
		if newName, ok := renameLookup(renames, module, pyast.SpanOf(e)); ok {
			id = newName
		}
		return &pyast.Name{Id: id}
	case *pyast.Attribute:
		return &pyast.Attribute{Value: cloneExpr(v.Value, module, renames), Attr: v.Attr}
	case *pyast.Call:
		args := make([]pyast.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = cloneExpr(a, module, renames)
		}
		keywords := make([]pyast.Keyword, len(v.Keywords))
		for i, k := range v.Keywords {
			keywords[i] = pyast.Keyword{Name: k.Name, Value: cloneExpr(k.Value, module, renames)}
		}
		return &pyast.Call{Func: cloneExpr(v.Func, module, renames), Args: args, Keywords: keywords}
	case *pyast.Constant:
		return &pyast.Constant{Kind: v.Kind, Value: v.Value}
	case *pyast.Tuple:
		return &pyast.Tuple{Elts: cloneExprs(v.Elts, module, renames)}
	case *pyast.ListExpr:
		return &pyast.ListExpr{Elts: cloneExprs(v.Elts, module, renames)}
	case *pyast.SetExpr:
		return &pyast.SetExpr{Elts: cloneExprs(v.Elts, module, renames)}
	case *pyast.DictExpr:
		keys := make([]pyast.Expr, len(v.Keys))
		for i, k := range v.Keys {
			keys[i] = cloneExpr(k, module, renames)
		}
		return &pyast.DictExpr{Keys: keys, Values: cloneExprs(v.Values, module, renames)}
	case *pyast.BinOp:
		return &pyast.BinOp{Left: cloneExpr(v.Left, module, renames), Op: v.Op, Right: cloneExpr(v.Right, module, renames)}
	case *pyast.BoolOp:
		return &pyast.BoolOp{Op: v.Op, Values: cloneExprs(v.Values, module, renames)}
	case *pyast.UnaryOp:
		return &pyast.UnaryOp{Op: v.Op, Operand: cloneExpr(v.Operand, module, renames)}
	case *pyast.Compare:
		return &pyast.Compare{Left: cloneExpr(v.Left, module, renames), Ops: append([]string(nil), v.Ops...), Comparators: cloneExprs(v.Comparators, module, renames)}
	case *pyast.Lambda:
		params := make([]pyast.Parameter, len(v.Params))
		for i, p := range v.Params {
			params[i] = pyast.Parameter{Name: p.Name, Default: cloneExpr(p.Default, module, renames), Kind: p.Kind}
		}
		return &pyast.Lambda{Params: params, Body: cloneExpr(v.Body, module, renames)}
	case *pyast.IfExp:
		return &pyast.IfExp{Test: cloneExpr(v.Test, module, renames), Body: cloneExpr(v.Body, module, renames), Orelse: cloneExpr(v.Orelse, module, renames)}
	case *pyast.Subscript:
		return &pyast.Subscript{Value: cloneExpr(v.Value, module, renames), Slice: cloneExpr(v.Slice, module, renames)}
	case *pyast.Starred:
		return &pyast.Starred{Value: cloneExpr(v.Value, module, renames)}
	case *pyast.ListComp:
		return &pyast.ListComp{Elt: cloneExpr(v.Elt, module, renames), Generators: cloneComprehensions(v.Generators, module, renames)}
	case *pyast.SetComp:
		return &pyast.SetComp{Elt: cloneExpr(v.Elt, module, renames), Generators: cloneComprehensions(v.Generators, module, renames)}
	case *pyast.DictComp:
		return &pyast.DictComp{Key: cloneExpr(v.Key, module, renames), Value: cloneExpr(v.Value, module, renames), Generators: cloneComprehensions(v.Generators, module, renames)}
	case *pyast.GeneratorExp:
		return &pyast.GeneratorExp{Elt: cloneExpr(v.Elt, module, renames), Generators: cloneComprehensions(v.Generators, module, renames)}
	case *pyast.JoinedStr:
		return &pyast.JoinedStr{Values: cloneExprs(v.Values, module, renames)}
	case *pyast.FormattedValue:
		return &pyast.FormattedValue{Value: cloneExpr(v.Value, module, renames), FormatSpec: cloneExpr(v.FormatSpec, module, renames)}
	default:
		return e
	}
}

func cloneExprs(exprs []pyast.Expr, module registry.ModuleId, renames map[bundler.RenameKey]string) []pyast.Expr {
	if exprs == nil {
		return nil
	}
	out := make([]pyast.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = cloneExpr(e, module, renames)
	}
	return out
}

func cloneComprehensions(gens []pyast.Comprehension, module registry.ModuleId, renames map[bundler.RenameKey]string) []pyast.Comprehension {
	out := make([]pyast.Comprehension, len(gens))
	for i, g := range gens {
		out[i] = pyast.Comprehension{
			Target: cloneExpr(g.Target, module, renames),
			Iter:   cloneExpr(g.Iter, module, renames),
			Ifs:    cloneExprs(g.Ifs, module, renames),
			Async:  g.Async,
		}
	}
	return out
}

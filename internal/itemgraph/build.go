package itemgraph

import "github.com/gocribo/cribo/internal/pyast"

// Build walks mod in source order and produces one Item per top-level
// statement (spec.md §4.3). Nested definitions are not items themselves;
// their effects are folded into the enclosing item's Eventual* fields.
func Build(moduleName string, mod *pyast.Module) *ModuleDepGraph {
	g := newGraph(moduleName)

	for idx, stmt := range mod.Body {
		it := &Item{
			ID:                 ItemId(idx),
			Stmt:               stmt,
			StatementIndex:     idx,
			Span:               pyast.SpanOf(stmt),
			SymbolDependencies: make(map[string]([]string)),
		}
		populate(it, stmt)
		g.add(it)
	}
	return g
}

func populate(it *Item, stmt pyast.Stmt) {
	switch s := stmt.(type) {
	case *pyast.Import:
		it.Kind = KindImport
		for _, a := range s.Names {
			local := a.Local
			if local == "" {
				local = topComponent(a.Name)
			}
			it.DefinedSymbols = append(it.DefinedSymbols, local)
			it.ImportedNames = append(it.ImportedNames, ImportedName{Module: a.Name, Alias: a.AsOf})
		}
		it.HasSideEffects = false

	case *pyast.ImportFrom:
		it.Kind = KindFromImport
		for _, a := range s.Names {
			local := a.Local
			if local == "" {
				local = a.Name
				if a.AsOf != "" {
					local = a.AsOf
				}
			}
			it.DefinedSymbols = append(it.DefinedSymbols, local)
			it.ImportedNames = append(it.ImportedNames, ImportedName{Module: s.Module, Name: a.Name, Alias: a.AsOf, Level: s.Level})
		}
		it.HasSideEffects = false

	case *pyast.FunctionDef:
		it.Kind = KindFunctionDef
		it.DefinedSymbols = []string{s.Name}
		it.HasSideEffects = false
		reads := newSet()
		for _, d := range s.Decorators {
			collectExprReads(d, reads)
		}
		for _, p := range s.Params {
			if p.Default != nil {
				collectExprReads(p.Default, reads)
			}
		}
		it.ReadVars = reads.list()
		evReads, evWrites := newSet(), newSet()
		collectDeferredStmts(s.Body, evReads, evWrites)
		it.EventualReadVars = evReads.list()
		it.EventualWriteVars = evWrites.list()
		it.SymbolDependencies[s.Name] = append(append([]string{}, reads.list()...), evReads.list()...)

	case *pyast.ClassDef:
		it.Kind = KindClassDef
		it.DefinedSymbols = []string{s.Name}
		reads := newSet()
		for _, d := range s.Decorators {
			collectExprReads(d, reads)
		}
		for _, b := range s.Bases {
			collectExprReads(b, reads)
		}
		for _, k := range s.Keywords {
			collectExprReads(k.Value, reads)
		}
		writes := newSet()
		evReads, evWrites := newSet(), newSet()
		collectImmediateStmts(s.Body, reads, writes, evReads, evWrites)
		it.ReadVars = reads.list()
		it.WriteVars = writes.list()
		it.EventualReadVars = evReads.list()
		it.EventualWriteVars = evWrites.list()
		it.HasSideEffects = classBodyInvokesFunctions(s.Body)
		it.SymbolDependencies[s.Name] = reads.list()

	case *pyast.Assign:
		it.Kind = KindAssignment
		targets := newSet()
		for _, t := range s.Targets {
			flattenTargets(t, targets)
		}
		it.DefinedSymbols = targets.list()
		reads := newSet()
		collectExprReads(s.Value, reads)
		it.ReadVars = reads.list()
		if targets.has("__all__") {
			it.HasSideEffects = false
		} else {
			it.HasSideEffects = containsLambda(s.Value)
		}
		for _, name := range it.DefinedSymbols {
			it.SymbolDependencies[name] = reads.list()
		}

	case *pyast.AnnAssign:
		it.Kind = KindAssignment
		targets := newSet()
		flattenTargets(s.Target, targets)
		it.DefinedSymbols = targets.list()
		reads := newSet()
		if s.Value != nil {
			collectExprReads(s.Value, reads)
		}
		it.ReadVars = reads.list()
		it.HasSideEffects = s.Value != nil && containsLambda(s.Value)
		for _, name := range it.DefinedSymbols {
			it.SymbolDependencies[name] = reads.list()
		}

	case *pyast.AugAssign:
		it.Kind = KindAssignment
		targets := newSet()
		flattenTargets(s.Target, targets)
		it.DefinedSymbols = targets.list()
		it.WriteVars = targets.list()
		reads := newSet()
		collectExprReads(s.Target, reads)
		collectExprReads(s.Value, reads)
		it.ReadVars = reads.list()
		it.HasSideEffects = !targets.has("__all__")

	case *pyast.ExprStmt:
		it.Kind = KindExpression
		reads := newSet()
		collectExprReads(s.Value, reads)
		it.ReadVars = reads.list()
		it.HasSideEffects = !isLiteralOnly(s.Value)

	case *pyast.If:
		it.Kind = KindIf
		it.HasSideEffects = true
		reads, writes := newSet(), newSet()
		evReads, evWrites := newSet(), newSet()
		collectExprReads(s.Test, reads)
		collectImmediateStmts(s.Body, reads, writes, evReads, evWrites)
		collectImmediateStmts(s.Orelse, reads, writes, evReads, evWrites)
		it.ReadVars, it.WriteVars = reads.list(), writes.list()
		it.EventualReadVars, it.EventualWriteVars = evReads.list(), evWrites.list()
		it.DefinedSymbols = writes.list()

	case *pyast.Try:
		it.Kind = KindTry
		it.HasSideEffects = true
		reads, writes := newSet(), newSet()
		evReads, evWrites := newSet(), newSet()
		collectImmediateStmts(s.Body, reads, writes, evReads, evWrites)
		for _, h := range s.Handlers {
			collectImmediateStmts(h.Body, reads, writes, evReads, evWrites)
		}
		collectImmediateStmts(s.Orelse, reads, writes, evReads, evWrites)
		collectImmediateStmts(s.Finally, reads, writes, evReads, evWrites)
		it.ReadVars, it.WriteVars = reads.list(), writes.list()
		it.EventualReadVars, it.EventualWriteVars = evReads.list(), evWrites.list()
		it.DefinedSymbols = writes.list()

	default:
		// For/While/With/Match and anything else: module-level control
		// flow is always side-effectful per spec.md §4.3.
		it.Kind = KindExpression
		it.HasSideEffects = true
		reads, writes := newSet(), newSet()
		evReads, evWrites := newSet(), newSet()
		collectImmediateStmts([]pyast.Stmt{stmt}, reads, writes, evReads, evWrites)
		it.ReadVars, it.WriteVars = reads.list(), writes.list()
		it.EventualReadVars, it.EventualWriteVars = evReads.list(), evWrites.list()
		it.DefinedSymbols = writes.list()
	}
}

func topComponent(dotted string) string {
	for i := 0; i < len(dotted); i++ {
		if dotted[i] == '.' {
			return dotted[:i]
		}
	}
	return dotted
}

// isLiteralOnly reports whether e is a bare literal (covers docstrings,
// which parse as a Constant ExprStmt).
func isLiteralOnly(e pyast.Expr) bool {
	_, ok := e.(*pyast.Constant)
	return ok
}

func containsLambda(e pyast.Expr) bool {
	found := false
	pyast.Visit(e, func(n pyast.Node) bool {
		if _, ok := n.(*pyast.Lambda); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

func classBodyInvokesFunctions(body []pyast.Stmt) bool {
	for _, s := range body {
		a, ok := s.(*pyast.Assign)
		if !ok {
			continue
		}
		if _, isCall := a.Value.(*pyast.Call); isCall {
			return true
		}
	}
	return false
}

func flattenTargets(e pyast.Expr, out *set) {
	switch t := e.(type) {
	case *pyast.Name:
		out.add(t.Id)
	case *pyast.Tuple:
		for _, el := range t.Elts {
			flattenTargets(el, out)
		}
	case *pyast.ListExpr:
		for _, el := range t.Elts {
			flattenTargets(el, out)
		}
	case *pyast.Starred:
		flattenTargets(t.Value, out)
	case *pyast.Attribute, *pyast.Subscript:
		// Attribute/subscript targets don't bind a new module-scope name.
	}
}

func collectExprReads(e pyast.Expr, out *set) {
	if e == nil {
		return
	}
	pyast.Visit(e, func(n pyast.Node) bool {
		if name, ok := n.(*pyast.Name); ok {
			out.add(name.Id)
		}
		return true
	})
}

// collectImmediateStmts recurses into statements that execute at the point
// they're encountered (module level, or inside an executing class/if/try
// body), but treats nested FunctionDef/Lambda bodies as deferred.
func collectImmediateStmts(stmts []pyast.Stmt, reads, writes, eventualReads, eventualWrites *set) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *pyast.FunctionDef:
			for _, p := range s.Params {
				if p.Default != nil {
					collectExprReads(p.Default, reads)
				}
			}
			for _, d := range s.Decorators {
				collectExprReads(d, reads)
			}
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
		case *pyast.ClassDef:
			for _, b := range s.Bases {
				collectExprReads(b, reads)
			}
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
		case *pyast.Import:
			for _, a := range s.Names {
				local := a.Local
				if local == "" {
					local = topComponent(a.Name)
				}
				writes.add(local)
			}
		case *pyast.ImportFrom:
			for _, a := range s.Names {
				local := a.Local
				if local == "" {
					local = a.Name
				}
				writes.add(local)
			}
		case *pyast.Assign:
			collectExprReads(s.Value, reads)
			for _, t := range s.Targets {
				flattenTargets(t, writes)
			}
		case *pyast.AnnAssign:
			if s.Value != nil {
				collectExprReads(s.Value, reads)
			}
			flattenTargets(s.Target, writes)
		case *pyast.AugAssign:
			collectExprReads(s.Target, reads)
			collectExprReads(s.Value, reads)
			flattenTargets(s.Target, writes)
		case *pyast.ExprStmt:
			collectExprReads(s.Value, reads)
		case *pyast.Return:
			collectExprReads(s.Value, reads)
		case *pyast.If:
			collectExprReads(s.Test, reads)
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
			collectImmediateStmts(s.Orelse, reads, writes, eventualReads, eventualWrites)
		case *pyast.For:
			collectExprReads(s.Iter, reads)
			flattenTargets(s.Target, writes)
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
			collectImmediateStmts(s.Orelse, reads, writes, eventualReads, eventualWrites)
		case *pyast.While:
			collectExprReads(s.Test, reads)
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
			collectImmediateStmts(s.Orelse, reads, writes, eventualReads, eventualWrites)
		case *pyast.With:
			for _, item := range s.Items {
				collectExprReads(item.ContextExpr, reads)
				if item.OptionalVar != nil {
					flattenTargets(item.OptionalVar, writes)
				}
			}
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
		case *pyast.Try:
			collectImmediateStmts(s.Body, reads, writes, eventualReads, eventualWrites)
			for _, h := range s.Handlers {
				collectImmediateStmts(h.Body, reads, writes, eventualReads, eventualWrites)
			}
			collectImmediateStmts(s.Orelse, reads, writes, eventualReads, eventualWrites)
			collectImmediateStmts(s.Finally, reads, writes, eventualReads, eventualWrites)
		case *pyast.Global:
			for _, n := range s.Names {
				writes.add(n)
			}
		}
	}
}

// collectDeferredStmts walks a function body recording reads/writes that
// only occur once the function is called; a `global` statement anchors a
// module-level write dependency per spec.md §4.9.
func collectDeferredStmts(stmts []pyast.Stmt, eventualReads, eventualWrites *set) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *pyast.Global:
			for _, n := range s.Names {
				eventualWrites.add(n)
			}
		case *pyast.FunctionDef:
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
		case *pyast.ClassDef:
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
		case *pyast.Assign:
			collectExprReads(s.Value, eventualReads)
		case *pyast.ExprStmt:
			collectExprReads(s.Value, eventualReads)
		case *pyast.Return:
			collectExprReads(s.Value, eventualReads)
		case *pyast.If:
			collectExprReads(s.Test, eventualReads)
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
			collectDeferredStmts(s.Orelse, eventualReads, eventualWrites)
		case *pyast.For:
			collectExprReads(s.Iter, eventualReads)
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
			collectDeferredStmts(s.Orelse, eventualReads, eventualWrites)
		case *pyast.While:
			collectExprReads(s.Test, eventualReads)
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
		case *pyast.With:
			for _, item := range s.Items {
				collectExprReads(item.ContextExpr, eventualReads)
			}
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
		case *pyast.Try:
			collectDeferredStmts(s.Body, eventualReads, eventualWrites)
			for _, h := range s.Handlers {
				collectDeferredStmts(h.Body, eventualReads, eventualWrites)
			}
			collectDeferredStmts(s.Orelse, eventualReads, eventualWrites)
			collectDeferredStmts(s.Finally, eventualReads, eventualWrites)
		}
	}
}

// set is a tiny insertion-ordered string set, used throughout instead of a
// bare map so that .list() output stays deterministic.
type set struct {
	m     map[string]bool
	order []string
}

func newSet() *set { return &set{m: make(map[string]bool)} }

func (s *set) add(name string) {
	if name == "" || s.m[name] {
		return
	}
	s.m[name] = true
	s.order = append(s.order, name)
}

func (s *set) has(name string) bool { return s.m[name] }

func (s *set) list() []string {
	if len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

package semantic

import "github.com/gocribo/cribo/internal/pyast"

// Build walks mod and constructs its Model. Only module-global bindings are
// fully scope-resolved against nested uses; nested scopes get their own
// Scope entries so class/function/comprehension bodies are distinguishable,
// but the builder does not attempt full closure-capture resolution — every
// reference to a name not locally bound in its own scope chain resolves to
// the nearest enclosing binding of that name, falling back to the global
// scope, matching CPython's LEGB lookup order closely enough for rename and
// origin-tracing purposes (spec.md never requires modelling cell
// variables).
func Build(moduleName string, mod *pyast.Module) *Model {
	b := &builder{
		m: &Model{
			ModuleName: moduleName,
			byName:     make(map[string][]BindingId),
		},
	}
	global := b.newScope(ScopeGlobal, -1, "")
	b.walkBody(mod.Body, global)
	return b.m
}

type builder struct {
	m *Model
}

func (b *builder) newScope(kind ScopeKind, parent ScopeId, name string) ScopeId {
	id := ScopeId(len(b.m.Scopes))
	b.m.Scopes = append(b.m.Scopes, Scope{ID: id, Kind: kind, Parent: parent, Name: name})
	return id
}

func (b *builder) bind(name string, kind Kind, qualified string, span pyast.Span, scope ScopeId) BindingId {
	id := BindingId(len(b.m.Bindings))
	b.m.Bindings = append(b.m.Bindings, Binding{ID: id, Name: name, Kind: kind, QualifiedName: qualified, Span: span, ScopeID: scope})
	b.m.byName[name] = append(b.m.byName[name], id)
	return id
}

// resolve finds the binding for name visible at scope: the most recently
// bound occurrence of name in scope or any of its ancestors.
func (b *builder) resolve(name string, scope ScopeId) BindingId {
	for s := scope; ; {
		var best BindingId = -1
		for _, id := range b.m.byName[name] {
			if b.m.Bindings[id].ScopeID == s {
				best = id
			}
		}
		if best >= 0 {
			return best
		}
		if s == b.m.GlobalScope() {
			break
		}
		s = b.m.Scopes[s].Parent
	}
	return -1
}

func (b *builder) ref(name string, span pyast.Span, scope ScopeId) {
	b.m.References = append(b.m.References, Reference{Name: name, Span: span, Binding: b.resolve(name, scope)})
}

func (b *builder) walkBody(stmts []pyast.Stmt, scope ScopeId) {
	for _, s := range stmts {
		b.walkStmt(s, scope)
	}
}

func (b *builder) walkStmt(stmt pyast.Stmt, scope ScopeId) {
	switch s := stmt.(type) {
	case *pyast.Import:
		for _, a := range s.Names {
			local := a.Local
			if local == "" {
				local = a.Name
			}
			b.bind(local, KindImport, a.Name, pyast.SpanOf(stmt), scope)
		}
	case *pyast.ImportFrom:
		for _, a := range s.Names {
			local := a.Local
			if local == "" {
				local = a.Name
				if a.AsOf != "" {
					local = a.AsOf
				}
			}
			qualified := s.Module + "." + a.Name
			b.bind(local, KindFromImport, qualified, pyast.SpanOf(stmt), scope)
		}
	case *pyast.FunctionDef:
		b.bind(s.Name, KindFunctionDef, "", pyast.SpanOf(stmt), scope)
		for _, d := range s.Decorators {
			b.walkExpr(d, scope)
		}
		for _, p := range s.Params {
			if p.Default != nil {
				b.walkExpr(p.Default, scope)
			}
		}
		if s.Returns != nil {
			b.walkExpr(s.Returns, scope)
		}
		fscope := b.newScope(ScopeFunction, scope, s.Name)
		for _, p := range s.Params {
			b.bind(p.Name, KindParameter, "", pyast.Span{}, fscope)
		}
		b.walkBody(s.Body, fscope)
	case *pyast.ClassDef:
		b.bind(s.Name, KindClassDef, "", pyast.SpanOf(stmt), scope)
		for _, d := range s.Decorators {
			b.walkExpr(d, scope)
		}
		for _, bse := range s.Bases {
			b.walkExpr(bse, scope)
		}
		for _, k := range s.Keywords {
			b.walkExpr(k.Value, scope)
		}
		cscope := b.newScope(ScopeClass, scope, s.Name)
		b.walkBody(s.Body, cscope)
	case *pyast.Assign:
		b.walkExpr(s.Value, scope)
		for _, t := range s.Targets {
			b.bindTarget(t, KindAssignment, pyast.SpanOf(stmt), scope)
		}
	case *pyast.AnnAssign:
		if s.Value != nil {
			b.walkExpr(s.Value, scope)
		}
		b.walkExpr(s.Annotation, scope)
		b.bindTarget(s.Target, KindAssignment, pyast.SpanOf(stmt), scope)
	case *pyast.AugAssign:
		b.walkExpr(s.Target, scope)
		b.walkExpr(s.Value, scope)
		b.bindTarget(s.Target, KindAssignment, pyast.SpanOf(stmt), scope)
	case *pyast.ExprStmt:
		b.walkExpr(s.Value, scope)
	case *pyast.Return:
		if s.Value != nil {
			b.walkExpr(s.Value, scope)
		}
	case *pyast.Delete:
		for _, t := range s.Targets {
			b.walkExpr(t, scope)
		}
	case *pyast.Raise:
		if s.Exc != nil {
			b.walkExpr(s.Exc, scope)
		}
		if s.Cause != nil {
			b.walkExpr(s.Cause, scope)
		}
	case *pyast.Assert:
		b.walkExpr(s.Test, scope)
		if s.Msg != nil {
			b.walkExpr(s.Msg, scope)
		}
	case *pyast.If:
		b.walkExpr(s.Test, scope)
		b.walkBody(s.Body, scope)
		b.walkBody(s.Orelse, scope)
	case *pyast.For:
		b.walkExpr(s.Iter, scope)
		b.bindTarget(s.Target, KindAssignment, pyast.SpanOf(stmt), scope)
		b.walkBody(s.Body, scope)
		b.walkBody(s.Orelse, scope)
	case *pyast.While:
		b.walkExpr(s.Test, scope)
		b.walkBody(s.Body, scope)
		b.walkBody(s.Orelse, scope)
	case *pyast.With:
		for _, item := range s.Items {
			b.walkExpr(item.ContextExpr, scope)
			if item.OptionalVar != nil {
				b.bindTarget(item.OptionalVar, KindAssignment, pyast.SpanOf(stmt), scope)
			}
		}
		b.walkBody(s.Body, scope)
	case *pyast.Try:
		b.walkBody(s.Body, scope)
		for _, h := range s.Handlers {
			if h.Type != nil {
				b.walkExpr(h.Type, scope)
			}
			if h.Name != "" {
				b.bind(h.Name, KindAssignment, "", pyast.Span{}, scope)
			}
			b.walkBody(h.Body, scope)
		}
		b.walkBody(s.Orelse, scope)
		b.walkBody(s.Finally, scope)
	case *pyast.Match:
		b.walkExpr(s.Subject, scope)
		for _, c := range s.Cases {
			b.walkBody(c.Body, scope)
		}
	}
}

func (b *builder) bindTarget(e pyast.Expr, kind Kind, span pyast.Span, scope ScopeId) {
	switch t := e.(type) {
	case *pyast.Name:
		b.bind(t.Id, kind, "", span, scope)
	case *pyast.Tuple:
		for _, el := range t.Elts {
			b.bindTarget(el, kind, span, scope)
		}
	case *pyast.ListExpr:
		for _, el := range t.Elts {
			b.bindTarget(el, kind, span, scope)
		}
	case *pyast.Starred:
		b.bindTarget(t.Value, kind, span, scope)
	case *pyast.Attribute:
		b.walkExpr(t.Value, scope)
	case *pyast.Subscript:
		b.walkExpr(t.Value, scope)
		b.walkExpr(t.Slice, scope)
	}
}

func (b *builder) walkExpr(e pyast.Expr, scope ScopeId) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *pyast.Name:
		b.ref(v.Id, pyast.SpanOf(e), scope)
	case *pyast.Lambda:
		lscope := b.newScope(ScopeFunction, scope, "<lambda>")
		for _, p := range v.Params {
			if p.Default != nil {
				b.walkExpr(p.Default, scope)
			}
			b.bind(p.Name, KindParameter, "", pyast.Span{}, lscope)
		}
		b.walkExpr(v.Body, lscope)
	case *pyast.ListComp:
		cscope := b.newScope(ScopeComprehension, scope, "")
		b.walkComprehensions(v.Generators, scope, cscope)
		b.walkExpr(v.Elt, cscope)
	case *pyast.SetComp:
		cscope := b.newScope(ScopeComprehension, scope, "")
		b.walkComprehensions(v.Generators, scope, cscope)
		b.walkExpr(v.Elt, cscope)
	case *pyast.DictComp:
		cscope := b.newScope(ScopeComprehension, scope, "")
		b.walkComprehensions(v.Generators, scope, cscope)
		b.walkExpr(v.Key, cscope)
		b.walkExpr(v.Value, cscope)
	case *pyast.GeneratorExp:
		cscope := b.newScope(ScopeComprehension, scope, "")
		b.walkComprehensions(v.Generators, scope, cscope)
		b.walkExpr(v.Elt, cscope)
	default:
		pyast.Visit(e, func(n pyast.Node) bool {
			if n == pyast.Node(e) {
				return true
			}
			if name, ok := n.(*pyast.Name); ok {
				b.ref(name.Id, pyast.SpanOf(name), scope)
				return false
			}
			switch n.(type) {
			case *pyast.Lambda, *pyast.ListComp, *pyast.SetComp, *pyast.DictComp, *pyast.GeneratorExp:
				if inner, ok := n.(pyast.Expr); ok {
					b.walkExpr(inner, scope)
				}
				return false
			}
			return true
		})
	}
}

func (b *builder) walkComprehensions(gens []pyast.Comprehension, outer, inner ScopeId) {
	for i, g := range gens {
		iterScope := outer
		if i > 0 {
			iterScope = inner
		}
		b.walkExpr(g.Iter, iterScope)
		b.bindTarget(g.Target, KindAssignment, pyast.Span{}, inner)
		for _, cond := range g.Ifs {
			b.walkExpr(cond, inner)
		}
	}
}

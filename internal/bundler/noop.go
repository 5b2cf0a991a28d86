package bundler

import "github.com/gocribo/cribo/internal/pyast"

// StripRedundantPass handles both directions of no-op cleanup itself
// (emit.go synthesizes nothing): where a FunctionDef or ClassDef
// body already has one or more other live statements, any leftover bare
// `pass` statement is now redundant and is dropped; where a body has
// become genuinely empty (every other statement was tree-shaken away), a
// single `pass` is synthesized so the body remains syntactically valid.
// Mirrors the converse pass the Rust no_ops_removal.rs visitor makes over
// its own output; here it runs once over the VM's finished module tree.
func StripRedundantPass(mod *pyast.Module) {
	body := stripBody(mod.Body)
	mod.Body = body
	for _, stmt := range mod.Body {
		stripNested(stmt)
	}
}

func stripNested(stmt pyast.Stmt) {
	switch s := stmt.(type) {
	case *pyast.FunctionDef:
		s.Body = stripBody(s.Body)
		for _, inner := range s.Body {
			stripNested(inner)
		}
	case *pyast.ClassDef:
		s.Body = stripBody(s.Body)
		for _, inner := range s.Body {
			stripNested(inner)
		}
	case *pyast.If:
		s.Body = stripBody(s.Body)
		s.Orelse = stripOptionalBody(s.Orelse)
	case *pyast.For:
		s.Body = stripBody(s.Body)
		s.Orelse = stripOptionalBody(s.Orelse)
	case *pyast.While:
		s.Body = stripBody(s.Body)
		s.Orelse = stripOptionalBody(s.Orelse)
	case *pyast.With:
		s.Body = stripBody(s.Body)
	case *pyast.Try:
		s.Body = stripBody(s.Body)
		s.Orelse = stripOptionalBody(s.Orelse)
		s.Finally = stripOptionalBody(s.Finally)
		for i := range s.Handlers {
			s.Handlers[i].Body = stripBody(s.Handlers[i].Body)
		}
	}
}

// stripBody drops redundant Pass/Ellipsis-only statements from a body that
// must remain non-empty (a function/class/if/for/while/with/try/except
// body), synthesizing a single Pass when nothing would otherwise remain.
func stripBody(body []pyast.Stmt) []pyast.Stmt {
	if len(body) == 0 {
		return []pyast.Stmt{&pyast.Pass{}}
	}
	out := dropNoOps(body)
	if len(out) == 0 {
		return []pyast.Stmt{&pyast.Pass{}}
	}
	return out
}

// stripOptionalBody drops redundant no-ops from an optional clause
// (else/finally) without ever synthesizing one: an empty Orelse/Finally
// means the clause is absent, not that it contains a no-op.
func stripOptionalBody(body []pyast.Stmt) []pyast.Stmt {
	if len(body) == 0 {
		return body
	}
	return dropNoOps(body)
}

func dropNoOps(body []pyast.Stmt) []pyast.Stmt {
	out := make([]pyast.Stmt, 0, len(body))
	for _, s := range body {
		if isNoOp(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isNoOp(s pyast.Stmt) bool {
	if _, ok := s.(*pyast.Pass); ok {
		return true
	}
	if es, ok := s.(*pyast.ExprStmt); ok {
		if c, ok := es.Value.(*pyast.Constant); ok && c.Kind == pyast.ConstEllipsis {
			return true
		}
	}
	return false
}

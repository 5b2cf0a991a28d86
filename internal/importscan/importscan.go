// Package importscan classifies every import statement by where it sits
// (spec.md §4.5's ImportLocation) and every use of an imported name by the
// execution context it runs in, then decides which imports require
// module-level availability versus which can be deferred. Grounded on the
// teacher's internal/interproc/context.go ContextNode classification (a
// small enum walked bottom-up over call sites), adapted from call-context
// tagging to AST-location tagging.
package importscan

import "github.com/gocribo/cribo/internal/pyast"

// Location classifies where an import statement appears.
type Location int

const (
	LocationModule Location = iota
	LocationFunction
	LocationClassBody
	LocationMethod
	LocationConditional
	LocationNested
)

func (l Location) String() string {
	switch l {
	case LocationModule:
		return "module-level"
	case LocationFunction:
		return "function"
	case LocationClassBody:
		return "class-body"
	case LocationMethod:
		return "method"
	case LocationConditional:
		return "conditional"
	default:
		return "nested"
	}
}

// ExecutionContext classifies one use of an imported name.
type ExecutionContext int

const (
	CtxModuleLevel ExecutionContext = iota
	CtxClassBody
	CtxClassMethod
	CtxClassMethodInit
	CtxFunctionBody
	CtxDecorator
	CtxDefaultParameter
	CtxTypeAnnotation
	CtxTypeCheckingBlock
)

func (c ExecutionContext) String() string {
	switch c {
	case CtxModuleLevel:
		return "ModuleLevel"
	case CtxClassBody:
		return "ClassBody"
	case CtxClassMethod:
		return "ClassMethod"
	case CtxClassMethodInit:
		return "ClassMethod{is_init:true}"
	case CtxFunctionBody:
		return "FunctionBody"
	case CtxDecorator:
		return "Decorator"
	case CtxDefaultParameter:
		return "DefaultParameter"
	case CtxTypeAnnotation:
		return "TypeAnnotation"
	case CtxTypeCheckingBlock:
		return "TypeCheckingBlock"
	default:
		return "Unknown"
	}
}

// requiresModuleLevel reports whether a use in this context forces its
// import to be available at module-import time (spec.md §4.5).
func requiresModuleLevel(ctx ExecutionContext) bool {
	switch ctx {
	case CtxModuleLevel, CtxClassBody, CtxDecorator, CtxDefaultParameter, CtxClassMethodInit:
		return true
	default:
		return false
	}
}

// ImportSite is one import statement found anywhere in a module.
type ImportSite struct {
	StatementIndex int // index in the enclosing body the statement was found
	Location       Location
	Stmt           pyast.Stmt
}

// Use is one reference to an imported local name.
type Use struct {
	Name    string
	Context ExecutionContext
	Span    pyast.Span
}

// Result is the per-module output of import discovery.
type Result struct {
	Imports []ImportSite
	Uses    []Use

	// RequiresModuleLevel lists, per imported local name, whether any of
	// its uses forces module-level availability.
	RequiresModuleLevel map[string]bool
}

// Scan walks mod and produces a Result.
func Scan(mod *pyast.Module) *Result {
	r := &Result{RequiresModuleLevel: make(map[string]bool)}
	s := &scanner{r: r}
	s.walkBody(mod.Body, LocationModule, CtxModuleLevel, false)
	return r
}

type scanner struct {
	r *Result
}

func (s *scanner) recordImport(stmt pyast.Stmt, loc Location) {
	s.r.Imports = append(s.r.Imports, ImportSite{Location: loc, Stmt: stmt})
}

func (s *scanner) recordUse(name string, span pyast.Span, ctx ExecutionContext) {
	s.r.Uses = append(s.r.Uses, Use{Name: name, Context: ctx, Span: span})
	if requiresModuleLevel(ctx) {
		s.r.RequiresModuleLevel[name] = true
	} else if _, ok := s.r.RequiresModuleLevel[name]; !ok {
		s.r.RequiresModuleLevel[name] = false
	}
}

// isTypeChecking shallow-matches `if TYPE_CHECKING:` / `if typing.TYPE_CHECKING:`.
func isTypeChecking(test pyast.Expr) bool {
	switch t := test.(type) {
	case *pyast.Name:
		return t.Id == "TYPE_CHECKING"
	case *pyast.Attribute:
		return t.Attr == "TYPE_CHECKING"
	}
	return false
}

func (s *scanner) walkBody(stmts []pyast.Stmt, loc Location, ctx ExecutionContext, inConditional bool) {
	for i, stmt := range stmts {
		n := len(s.r.Imports)
		s.walkStmt(stmt, loc, ctx, inConditional)
		if len(s.r.Imports) > n && s.r.Imports[n].Stmt == stmt {
			s.r.Imports[n].StatementIndex = i
		}
	}
}

func (s *scanner) walkStmt(stmt pyast.Stmt, loc Location, ctx ExecutionContext, inConditional bool) {
	switch st := stmt.(type) {
	case *pyast.Import, *pyast.ImportFrom:
		effLoc := loc
		if inConditional && loc == LocationModule {
			effLoc = LocationConditional
		}
		s.recordImport(stmt, effLoc)

	case *pyast.FunctionDef:
		for _, d := range st.Decorators {
			s.walkExpr(d, CtxDecorator)
		}
		for _, p := range st.Params {
			if p.Default != nil {
				s.walkExpr(p.Default, CtxDefaultParameter)
			}
		}
		if st.Returns != nil {
			s.walkExpr(st.Returns, CtxTypeAnnotation)
		}
		bodyCtx := CtxFunctionBody
		bodyLoc := LocationFunction
		if ctx == CtxClassBody {
			bodyLoc = LocationMethod
			if st.Name == "__init__" {
				bodyCtx = CtxClassMethodInit
			} else {
				bodyCtx = CtxClassMethod
			}
		}
		s.walkBody(st.Body, bodyLoc, bodyCtx, false)

	case *pyast.ClassDef:
		for _, d := range st.Decorators {
			s.walkExpr(d, CtxDecorator)
		}
		for _, b := range st.Bases {
			s.walkExpr(b, CtxClassBody)
		}
		s.walkBody(st.Body, LocationClassBody, CtxClassBody, false)

	case *pyast.Assign:
		s.walkExpr(st.Value, ctx)
	case *pyast.AnnAssign:
		s.walkExpr(st.Annotation, CtxTypeAnnotation)
		if st.Value != nil {
			s.walkExpr(st.Value, ctx)
		}
	case *pyast.AugAssign:
		s.walkExpr(st.Value, ctx)
	case *pyast.ExprStmt:
		s.walkExpr(st.Value, ctx)
	case *pyast.Return:
		if st.Value != nil {
			s.walkExpr(st.Value, ctx)
		}
	case *pyast.If:
		typeChecking := isTypeChecking(st.Test)
		s.walkExpr(st.Test, ctx)
		bodyCtx := ctx
		if typeChecking {
			bodyCtx = CtxTypeCheckingBlock
		}
		s.walkBody(st.Body, loc, bodyCtx, true)
		s.walkBody(st.Orelse, loc, ctx, true)
	case *pyast.For:
		s.walkExpr(st.Iter, ctx)
		s.walkBody(st.Body, loc, ctx, true)
		s.walkBody(st.Orelse, loc, ctx, true)
	case *pyast.While:
		s.walkExpr(st.Test, ctx)
		s.walkBody(st.Body, loc, ctx, true)
		s.walkBody(st.Orelse, loc, ctx, true)
	case *pyast.With:
		for _, it := range st.Items {
			s.walkExpr(it.ContextExpr, ctx)
		}
		s.walkBody(st.Body, loc, ctx, true)
	case *pyast.Try:
		s.walkBody(st.Body, loc, ctx, true)
		for _, h := range st.Handlers {
			s.walkBody(h.Body, loc, ctx, true)
		}
		s.walkBody(st.Orelse, loc, ctx, true)
		s.walkBody(st.Finally, loc, ctx, true)
	case *pyast.Match:
		s.walkExpr(st.Subject, ctx)
		for _, c := range st.Cases {
			s.walkBody(c.Body, loc, ctx, true)
		}
	}
}

func (s *scanner) walkExpr(e pyast.Expr, ctx ExecutionContext) {
	if e == nil {
		return
	}
	pyast.Visit(e, func(n pyast.Node) bool {
		if name, ok := n.(*pyast.Name); ok {
			s.recordUse(name.Id, pyast.SpanOf(name), ctx)
		}
		return true
	})
}

package itemgraph

import (
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func name(id string) *pyast.Name { return &pyast.Name{Id: id} }

func constant(kind pyast.ConstKind, v string) *pyast.Constant {
	return &pyast.Constant{Kind: kind, Value: v}
}

func TestBuildImportDefinesSymbols(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Import{Names: []pyast.Alias{{Name: "os.path", Local: "os.path"}}},
		&pyast.ImportFrom{Module: "collections", Names: []pyast.Alias{{Name: "OrderedDict", Local: "OrderedDict"}}},
	}}
	g := Build("m", mod)
	if len(g.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(g.Items))
	}
	if g.Items[0].Kind != KindImport || g.Items[0].HasSideEffects {
		t.Fatalf("import item: %+v", g.Items[0])
	}
	if g.Items[1].DefinedSymbols[0] != "OrderedDict" {
		t.Fatalf("from-import defined symbols = %v", g.Items[1].DefinedSymbols)
	}
}

func TestBuildFunctionDefNoSideEffects(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "f", Body: []pyast.Stmt{
			&pyast.Return{Value: name("x")},
		}},
	}}
	g := Build("m", mod)
	it := g.Items[0]
	if it.Kind != KindFunctionDef || it.HasSideEffects {
		t.Fatalf("functiondef item: %+v", it)
	}
	if it.DefinedSymbols[0] != "f" {
		t.Fatalf("defined symbols = %v", it.DefinedSymbols)
	}
	if len(it.EventualReadVars) != 1 || it.EventualReadVars[0] != "x" {
		t.Fatalf("eventual reads = %v", it.EventualReadVars)
	}
}

func TestBuildAssignTupleUnpack(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Tuple{Elts: []pyast.Expr{name("a"), name("b")}}},
			Value:   &pyast.Tuple{Elts: []pyast.Expr{constant(pyast.ConstInt, "1"), constant(pyast.ConstInt, "2")}},
		},
	}}
	g := Build("m", mod)
	it := g.Items[0]
	if len(it.DefinedSymbols) != 2 {
		t.Fatalf("defined symbols = %v", it.DefinedSymbols)
	}
	if it.HasSideEffects {
		t.Fatalf("plain literal tuple assign should not be side-effectful")
	}
}

func TestBuildDunderAllAssignNotSideEffectful(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{
			Targets: []pyast.Expr{name("__all__")},
			Value:   &pyast.ListExpr{Elts: []pyast.Expr{constant(pyast.ConstStr, "'x'")}},
		},
		&pyast.AugAssign{Target: name("__all__"), Op: "+=", Value: &pyast.ListExpr{}},
	}}
	g := Build("m", mod)
	if g.Items[0].HasSideEffects {
		t.Fatalf("__all__ assignment must not be flagged side-effectful")
	}
	if g.Items[1].HasSideEffects {
		t.Fatalf("__all__ augassign must not be flagged side-effectful")
	}
}

func TestBuildBareExprDocstringVsCall(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: constant(pyast.ConstStr, "'docstring'")},
		&pyast.ExprStmt{Value: &pyast.Call{Func: name("print")}},
	}}
	g := Build("m", mod)
	if g.Items[0].HasSideEffects {
		t.Fatalf("bare literal expression should be side-effect free")
	}
	if !g.Items[1].HasSideEffects {
		t.Fatalf("bare call expression should be side-effectful")
	}
}

func TestBuildModuleLevelIfIsSideEffectful(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.If{
			Test: name("DEBUG"),
			Body: []pyast.Stmt{&pyast.Assign{Targets: []pyast.Expr{name("x")}, Value: constant(pyast.ConstInt, "1")}},
		},
	}}
	g := Build("m", mod)
	it := g.Items[0]
	if it.Kind != KindIf || !it.HasSideEffects {
		t.Fatalf("module-level if item: %+v", it)
	}
	if len(it.WriteVars) != 1 || it.WriteVars[0] != "x" {
		t.Fatalf("if write vars = %v", it.WriteVars)
	}
}

func TestBuildClassBodyInvokingFunctionIsSideEffectful(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ClassDef{Name: "C", Body: []pyast.Stmt{
			&pyast.Assign{Targets: []pyast.Expr{name("x")}, Value: &pyast.Call{Func: name("compute")}},
		}},
	}}
	g := Build("m", mod)
	it := g.Items[0]
	if it.Kind != KindClassDef || !it.HasSideEffects {
		t.Fatalf("class body invoking a function should be side-effectful: %+v", it)
	}
}

func TestBuildLambdaRHSIsSideEffectful(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{name("f")}, Value: &pyast.Lambda{Body: name("x")}},
	}}
	g := Build("m", mod)
	if !g.Items[0].HasSideEffects {
		t.Fatalf("lambda assigned at module scope should be side-effectful")
	}
}

func TestHasOpaqueSideEffects(t *testing.T) {
	cases := map[string]bool{
		"os":          true,
		"os.path":     true,
		"collections": false,
		"_thread":     true,
	}
	for mod, want := range cases {
		if got := HasOpaqueSideEffects(mod); got != want {
			t.Errorf("HasOpaqueSideEffects(%q) = %v, want %v", mod, got, want)
		}
	}
}

func TestFindBySymbol(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "f"},
	}}
	g := Build("m", mod)
	it, ok := g.FindBySymbol("f")
	if !ok || it.Kind != KindFunctionDef {
		t.Fatalf("FindBySymbol(f) = %+v, %v", it, ok)
	}
	if _, ok := g.FindBySymbol("missing"); ok {
		t.Fatalf("expected missing symbol to not be found")
	}
}

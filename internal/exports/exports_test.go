package exports

import (
	"reflect"
	"testing"

	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
)

func TestComputeInferredExcludesPrivate(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "public_fn"},
		&pyast.FunctionDef{Name: "_private_fn"},
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "__version__"}}, Value: &pyast.Constant{Kind: pyast.ConstStr, Value: `"1.0"`}},
	}}
	g := itemgraph.Build("m", mod)
	r := Compute(g)

	if r.ExplicitAll || r.Dynamic {
		t.Fatalf("unexpected explicit/dynamic result: %+v", r)
	}
	want := []string{"public_fn", "__version__"}
	if !reflect.DeepEqual(r.Names, want) {
		t.Fatalf("Names = %v, want %v", r.Names, want)
	}
}

func TestComputeExplicitAllOverrides(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "a"},
		&pyast.FunctionDef{Name: "b"},
		&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Name{Id: "__all__"}},
			Value: &pyast.ListExpr{Elts: []pyast.Expr{
				&pyast.Constant{Kind: pyast.ConstStr, Value: `"a"`},
			}},
		},
	}}
	g := itemgraph.Build("m", mod)
	r := Compute(g)

	if !r.ExplicitAll {
		t.Fatalf("expected ExplicitAll")
	}
	if !reflect.DeepEqual(r.Names, []string{"a"}) {
		t.Fatalf("Names = %v, want [a]", r.Names)
	}
}

func TestComputeDynamicAllIsOpaque(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "a"},
		&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Name{Id: "__all__"}},
			Value:   &pyast.Call{Func: &pyast.Name{Id: "compute_all"}},
		},
	}}
	g := itemgraph.Build("m", mod)
	r := Compute(g)

	if !r.Dynamic {
		t.Fatalf("expected Dynamic = true for non-literal __all__")
	}
}

func TestComputeAllAppendIsOpaque(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "a"},
		&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Name{Id: "__all__"}},
			Value:   &pyast.ListExpr{Elts: []pyast.Expr{&pyast.Constant{Kind: pyast.ConstStr, Value: `"a"`}}},
		},
		&pyast.ExprStmt{Value: &pyast.Call{
			Func: &pyast.Attribute{Value: &pyast.Name{Id: "__all__"}, Attr: "append"},
			Args: []pyast.Expr{&pyast.Constant{Kind: pyast.ConstStr, Value: `"b"`}},
		}},
	}}
	g := itemgraph.Build("m", mod)
	r := Compute(g)

	if !r.Dynamic {
		t.Fatalf("expected Dynamic = true for __all__.append(...)")
	}
}

func TestComputeAllExtendIsOpaque(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "a"},
		&pyast.ExprStmt{Value: &pyast.Call{
			Func: &pyast.Attribute{Value: &pyast.Name{Id: "__all__"}, Attr: "extend"},
			Args: []pyast.Expr{&pyast.Name{Id: "more_names"}},
		}},
	}}
	g := itemgraph.Build("m", mod)
	r := Compute(g)

	if !r.Dynamic {
		t.Fatalf("expected Dynamic = true for __all__.extend(...)")
	}
}

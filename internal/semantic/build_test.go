package semantic

import (
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func name(id string) *pyast.Name { return &pyast.Name{Id: id} }

func TestBuildResolvesGlobalAssignment(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{name("x")}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
		&pyast.ExprStmt{Value: &pyast.Call{Func: name("print"), Args: []pyast.Expr{name("x")}}},
	}}

	m := Build("main", mod)

	b, ok := m.ModuleScopeBinding("x")
	if !ok {
		t.Fatalf("expected binding for x")
	}
	if b.Kind != KindAssignment {
		t.Fatalf("expected KindAssignment, got %v", b.Kind)
	}

	var refToX *Reference
	for i := range m.References {
		if m.References[i].Name == "x" {
			refToX = &m.References[i]
		}
	}
	if refToX == nil {
		t.Fatalf("expected a reference to x")
	}
	if refToX.Binding != b.ID {
		t.Fatalf("reference to x did not resolve to its binding")
	}
}

func TestBuildFunctionScopeShadowsGlobal(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{name("x")}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
		&pyast.FunctionDef{Name: "f", Params: []pyast.Parameter{{Name: "x"}}, Body: []pyast.Stmt{
			&pyast.Return{Value: name("x")},
		}},
	}}

	m := Build("main", mod)
	global, _ := m.ModuleScopeBinding("x")

	var inFunc *Reference
	for i := range m.References {
		if m.References[i].Name == "x" {
			inFunc = &m.References[i]
		}
	}
	if inFunc == nil {
		t.Fatalf("expected a reference to x inside f")
	}
	if inFunc.Binding == global.ID {
		t.Fatalf("reference inside f should resolve to the parameter, not the global")
	}
}

func TestBuildImportBinding(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ImportFrom{Module: "util", Names: []pyast.Alias{{Name: "greet"}}},
	}}
	m := Build("main", mod)
	b, ok := m.ModuleScopeBinding("greet")
	if !ok {
		t.Fatalf("expected binding for greet")
	}
	if b.Kind != KindFromImport || b.QualifiedName != "util.greet" {
		t.Fatalf("unexpected binding: %+v", b)
	}
}

package importscan

import (
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func TestScanModuleLevelUseRequiresModuleLevel(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Import{Names: []pyast.Alias{{Name: "util", Local: "util"}}},
		&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: "util"}, Attr: "greet"}}},
	}}

	r := Scan(mod)
	if len(r.Imports) != 1 || r.Imports[0].Location != LocationModule {
		t.Fatalf("expected one module-level import, got %+v", r.Imports)
	}
	if !r.RequiresModuleLevel["util"] {
		t.Fatalf("expected util to require module-level availability")
	}
}

func TestScanFunctionBodyUseIsDeferred(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "f", Body: []pyast.Stmt{
			&pyast.Import{Names: []pyast.Alias{{Name: "util", Local: "util"}}},
			&pyast.Return{Value: &pyast.Attribute{Value: &pyast.Name{Id: "util"}, Attr: "greet"}},
		}},
	}}

	r := Scan(mod)
	if len(r.Imports) != 1 || r.Imports[0].Location != LocationFunction {
		t.Fatalf("expected one function-scoped import, got %+v", r.Imports)
	}
	if r.RequiresModuleLevel["util"] {
		t.Fatalf("function-body use should not require module-level availability")
	}
}

func TestScanTypeCheckingBlock(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.If{
			Test: &pyast.Name{Id: "TYPE_CHECKING"},
			Body: []pyast.Stmt{
				&pyast.ImportFrom{Module: "models", Names: []pyast.Alias{{Name: "User"}}},
			},
		},
	}}

	r := Scan(mod)
	if len(r.Imports) != 1 || r.Imports[0].Location != LocationConditional {
		t.Fatalf("expected one conditional import, got %+v", r.Imports)
	}
}

func TestScanClassMethodInitIsModuleLevel(t *testing.T) {
	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Import{Names: []pyast.Alias{{Name: "util", Local: "util"}}},
		&pyast.ClassDef{Name: "C", Body: []pyast.Stmt{
			&pyast.FunctionDef{Name: "__init__", Params: []pyast.Parameter{{Name: "self"}}, Body: []pyast.Stmt{
				&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: "util"}, Attr: "setup"}}},
			}},
		}},
	}}

	r := Scan(mod)
	if !r.RequiresModuleLevel["util"] {
		t.Fatalf("expected __init__ use to require module-level availability")
	}
}

package treesitter

import (
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func parseModule(t *testing.T, src string) *pyast.Module {
	t.Helper()
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()
	mod, err := p.Parse("t.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return mod
}

func TestParseModuleDocstring(t *testing.T) {
	mod := parseModule(t, "\"\"\"hello\"\"\"\nx = 1\n")
	if mod.Docstring != "hello" {
		t.Fatalf("expected docstring %q, got %q", "hello", mod.Docstring)
	}
	if len(mod.Body) != 2 {
		t.Fatalf("expected docstring to remain in Body, got %d statements", len(mod.Body))
	}
}

func TestParseImports(t *testing.T) {
	mod := parseModule(t, "import os\nimport os.path as osp\nfrom a.b import c, d as e\nfrom . import sibling\nfrom .. import other\n")
	if len(mod.Body) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(mod.Body))
	}
	imp, ok := mod.Body[0].(*pyast.Import)
	if !ok || len(imp.Names) != 1 || imp.Names[0].Name != "os" {
		t.Fatalf("unexpected first import: %#v", mod.Body[0])
	}
	imp2, ok := mod.Body[1].(*pyast.Import)
	if !ok || imp2.Names[0].AsOf != "osp" {
		t.Fatalf("unexpected aliased import: %#v", mod.Body[1])
	}
	from1, ok := mod.Body[2].(*pyast.ImportFrom)
	if !ok || from1.Module != "a.b" || len(from1.Names) != 2 || from1.Names[1].AsOf != "e" {
		t.Fatalf("unexpected from-import: %#v", mod.Body[2])
	}
	from2, ok := mod.Body[3].(*pyast.ImportFrom)
	if !ok || from2.Level != 1 {
		t.Fatalf("unexpected relative import: %#v", mod.Body[3])
	}
	from3, ok := mod.Body[4].(*pyast.ImportFrom)
	if !ok || from3.Level != 2 {
		t.Fatalf("unexpected relative import: %#v", mod.Body[4])
	}
}

func TestParseFunctionDef(t *testing.T) {
	mod := parseModule(t, "def greet(name, *, loud=False):\n    return name\n")
	fn, ok := mod.Body[0].(*pyast.FunctionDef)
	if !ok || fn.Name != "greet" {
		t.Fatalf("expected FunctionDef greet, got %#v", mod.Body[0])
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Kind != pyast.ParamPositional {
		t.Fatalf("expected positional first param, got %v", fn.Params[0].Kind)
	}
	if fn.Params[1].Kind != pyast.ParamKeywordOnly || fn.Params[1].Name != "loud" {
		t.Fatalf("expected keyword-only loud param, got %#v", fn.Params[1])
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*pyast.Return); !ok {
		t.Fatalf("expected Return, got %#v", fn.Body[0])
	}
}

func TestParseClassDefAndDecorator(t *testing.T) {
	mod := parseModule(t, "@register\nclass Foo(Base):\n    x = 1\n")
	cls, ok := mod.Body[0].(*pyast.ClassDef)
	if !ok || cls.Name != "Foo" {
		t.Fatalf("expected ClassDef Foo, got %#v", mod.Body[0])
	}
	if len(cls.Decorators) != 1 {
		t.Fatalf("expected 1 decorator, got %d", len(cls.Decorators))
	}
	if len(cls.Bases) != 1 {
		t.Fatalf("expected 1 base class, got %d", len(cls.Bases))
	}
}

func TestParseIfElifElse(t *testing.T) {
	mod := parseModule(t, "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n")
	ifs, ok := mod.Body[0].(*pyast.If)
	if !ok {
		t.Fatalf("expected If, got %#v", mod.Body[0])
	}
	if len(ifs.Orelse) != 1 {
		t.Fatalf("expected elif folded into Orelse, got %d", len(ifs.Orelse))
	}
	elif, ok := ifs.Orelse[0].(*pyast.If)
	if !ok || len(elif.Body) != 1 {
		t.Fatalf("expected nested If for elif, got %#v", ifs.Orelse[0])
	}
}

func TestParseAssignmentForms(t *testing.T) {
	mod := parseModule(t, "a = b = 1\nx: int = 2\ny += 1\n")
	assign, ok := mod.Body[0].(*pyast.Assign)
	if !ok || len(assign.Targets) != 2 {
		t.Fatalf("expected chained assign with 2 targets, got %#v", mod.Body[0])
	}
	ann, ok := mod.Body[1].(*pyast.AnnAssign)
	if !ok || ann.Value == nil {
		t.Fatalf("expected AnnAssign with value, got %#v", mod.Body[1])
	}
	aug, ok := mod.Body[2].(*pyast.AugAssign)
	if !ok || aug.Op != "+=" {
		t.Fatalf("expected AugAssign +=, got %#v", mod.Body[2])
	}
}

func TestParseComprehensionAndCall(t *testing.T) {
	mod := parseModule(t, "result = [x * 2 for x in values if x > 0]\nprint(result, sep=', ')\n")
	assign, ok := mod.Body[0].(*pyast.Assign)
	if !ok {
		t.Fatalf("expected Assign, got %#v", mod.Body[0])
	}
	lc, ok := assign.Value.(*pyast.ListComp)
	if !ok || len(lc.Generators) != 1 || len(lc.Generators[0].Ifs) != 1 {
		t.Fatalf("expected ListComp with 1 generator and 1 if, got %#v", assign.Value)
	}
	exprStmt, ok := mod.Body[1].(*pyast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %#v", mod.Body[1])
	}
	call, ok := exprStmt.Value.(*pyast.Call)
	if !ok || len(call.Args) != 1 || len(call.Keywords) != 1 {
		t.Fatalf("expected call with 1 arg and 1 keyword, got %#v", exprStmt.Value)
	}
}

func TestParseWithAndTry(t *testing.T) {
	mod := parseModule(t, "with open('f') as fh:\n    pass\ntry:\n    risky()\nexcept ValueError as e:\n    handle(e)\nfinally:\n    cleanup()\n")
	with, ok := mod.Body[0].(*pyast.With)
	if !ok || len(with.Items) != 1 || with.Items[0].OptionalVar == nil {
		t.Fatalf("expected With with bound alias, got %#v", mod.Body[0])
	}
	tr, ok := mod.Body[1].(*pyast.Try)
	if !ok || len(tr.Handlers) != 1 || len(tr.Finally) != 1 {
		t.Fatalf("expected Try with 1 handler and a finally clause, got %#v", mod.Body[1])
	}
}

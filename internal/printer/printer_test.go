package printer

import (
	"strings"
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func TestPrintFunctionDef(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.FunctionDef{
				Name: "greet",
				Params: []pyast.Parameter{
					{Name: "name", Kind: pyast.ParamPositional},
					{Name: "loud", Kind: pyast.ParamKeywordOnly, Default: &pyast.Constant{Kind: pyast.ConstBool, Value: "False"}},
				},
				Body: []pyast.Stmt{
					&pyast.Return{Value: &pyast.Name{Id: "name"}},
				},
			},
		},
	}
	out := Print(mod)
	want := "def greet(name, *, loud=False):\n    return name\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestPrintIfElif(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.If{
				Test: &pyast.Name{Id: "a"},
				Body: []pyast.Stmt{&pyast.Pass{}},
				Orelse: []pyast.Stmt{
					&pyast.If{
						Test:   &pyast.Name{Id: "b"},
						Body:   []pyast.Stmt{&pyast.Pass{}},
						Orelse: []pyast.Stmt{&pyast.Pass{}},
					},
				},
			},
		},
	}
	out := Print(mod)
	for _, want := range []string{"if a:", "elif b:", "else:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintNamespaceEmission(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.Import{Names: []pyast.Alias{{Name: "types", Local: "types"}}},
			&pyast.FunctionDef{Name: "greet", Body: []pyast.Stmt{&pyast.Pass{}}},
			&pyast.Assign{
				Targets: []pyast.Expr{&pyast.Name{Id: "util"}},
				Value:   &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: "types"}, Attr: "SimpleNamespace"}},
			},
			&pyast.Assign{
				Targets: []pyast.Expr{&pyast.Attribute{Value: &pyast.Name{Id: "util"}, Attr: "greet"}},
				Value:   &pyast.Name{Id: "greet"},
			},
		},
	}
	out := Print(mod)
	want := "import types\ndef greet():\n    pass\nutil = types.SimpleNamespace()\nutil.greet = greet\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestPrintBinOpParenthesizesNestedOperators(t *testing.T) {
	e := &pyast.BinOp{
		Left:  &pyast.BinOp{Left: &pyast.Name{Id: "a"}, Op: "+", Right: &pyast.Name{Id: "b"}},
		Op:    "*",
		Right: &pyast.Name{Id: "c"},
	}
	got := exprString(e)
	want := "(a + b) * c"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintStringLiteralPreservesOriginalQuoting(t *testing.T) {
	c := &pyast.Constant{Kind: pyast.ConstStr, Value: `"""hello\nworld"""`}
	if got := exprString(c); got != `"""hello\nworld"""` {
		t.Fatalf("expected original triple-quoted text preserved, got %q", got)
	}
}

func TestPrintComprehension(t *testing.T) {
	e := &pyast.ListComp{
		Elt: &pyast.BinOp{Left: &pyast.Name{Id: "x"}, Op: "*", Right: &pyast.Constant{Kind: pyast.ConstInt, Value: "2"}},
		Generators: []pyast.Comprehension{
			{Target: &pyast.Name{Id: "x"}, Iter: &pyast.Name{Id: "values"}, Ifs: []pyast.Expr{&pyast.Name{Id: "x"}}},
		},
	}
	got := exprString(e)
	want := "[x * 2 for x in values if x]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

package bundler

import (
	"testing"

	"github.com/gocribo/cribo/internal/pyast"
)

func TestStripRedundantPassDropsWhenOtherStatementsRemain(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.ClassDef{
				Name: "Widget",
				Body: []pyast.Stmt{
					&pyast.Pass{},
					&pyast.FunctionDef{Name: "greet", Body: []pyast.Stmt{&pyast.Pass{}}},
				},
			},
		},
	}

	StripRedundantPass(mod)

	class := mod.Body[0].(*pyast.ClassDef)
	if len(class.Body) != 1 {
		t.Fatalf("expected redundant Pass to be dropped, got body %+v", class.Body)
	}
	if _, ok := class.Body[0].(*pyast.FunctionDef); !ok {
		t.Fatalf("expected the surviving statement to be the method, got %#v", class.Body[0])
	}
}

func TestStripRedundantPassSynthesizesWhenEmpty(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.ClassDef{Name: "Empty"},
		},
	}

	StripRedundantPass(mod)

	class := mod.Body[0].(*pyast.ClassDef)
	if len(class.Body) != 1 {
		t.Fatalf("expected a synthesized Pass, got body %+v", class.Body)
	}
	if _, ok := class.Body[0].(*pyast.Pass); !ok {
		t.Fatalf("expected Pass, got %#v", class.Body[0])
	}
}

func TestStripRedundantPassLeavesOptionalClausesEmpty(t *testing.T) {
	mod := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.If{
				Test: &pyast.Name{Id: "cond"},
				Body: []pyast.Stmt{&pyast.ExprStmt{Value: &pyast.Name{Id: "x"}}},
			},
		},
	}

	StripRedundantPass(mod)

	ifStmt := mod.Body[0].(*pyast.If)
	if len(ifStmt.Orelse) != 0 {
		t.Fatalf("expected an absent else clause to stay empty, got %+v", ifStmt.Orelse)
	}
}

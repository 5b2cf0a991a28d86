package pyast

import "testing"

func TestIndexModuleUniqueAndInRange(t *testing.T) {
	mod := &Module{
		Body: []Stmt{
			&Import{Names: []Alias{{Name: "os", Local: "os"}}},
			&Assign{
				Targets: []Expr{&Name{Id: "x"}},
				Value:   &BinOp{Left: &Name{Id: "a"}, Op: "+", Right: &Name{Id: "b"}},
			},
		},
	}

	if err := IndexModule(3, mod); err != nil {
		t.Fatalf("IndexModule: %v", err)
	}

	seen := make(map[NodeIndex]bool)
	lo := NodeIndex(3) * Range
	hi := NodeIndex(4) * Range
	count := 0
	Visit(mod, func(n Node) bool {
		idx := Index(n)
		if idx < lo || idx >= hi {
			t.Fatalf("index %d outside module range [%d, %d)", idx, lo, hi)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
		count++
		return true
	})

	if count != len(seen) {
		t.Fatalf("expected all %d visited nodes to have distinct indices, got %d", count, len(seen))
	}
}

func TestIndexModuleOverflow(t *testing.T) {
	body := make([]Stmt, Range+10)
	for i := range body {
		body[i] = &Pass{}
	}
	mod := &Module{Body: body}

	err := IndexModule(0, mod)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if _, ok := err.(*OverflowError); !ok {
		t.Fatalf("expected *OverflowError, got %T", err)
	}
}

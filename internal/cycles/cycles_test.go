package cycles

import (
	"testing"

	"github.com/gocribo/cribo/internal/depgraph"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

func TestAnalyzeFunctionScopedCycle(t *testing.T) {
	g := depgraph.New()
	g.AddEdge(depgraph.Edge{From: 1, To: 2, Kind: depgraph.EdgeFromImport, ModuleLevel: false})
	g.AddEdge(depgraph.Edge{From: 2, To: 1, Kind: depgraph.EdgeFromImport, ModuleLevel: false})

	aFn := &pyast.Module{Body: []pyast.Stmt{&pyast.FunctionDef{Name: "f"}}}
	bFn := &pyast.Module{Body: []pyast.Stmt{&pyast.FunctionDef{Name: "g"}}}

	facts := map[registry.ModuleId]ModuleFacts{
		1: FactsFromItemGraph(1, "a", false, itemgraph.Build("a", aFn)),
		2: FactsFromItemGraph(2, "b", false, itemgraph.Build("b", bFn)),
	}

	cycles := Analyze(g, facts)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].Classification != FunctionLevel {
		t.Fatalf("expected FunctionLevel, got %v", cycles[0].Classification)
	}
	if !cycles[0].Classification.Resolvable() {
		t.Fatalf("FunctionLevel should be resolvable")
	}
}

func TestAnalyzeModuleConstantsCycleUnresolvable(t *testing.T) {
	g := depgraph.New()
	g.AddEdge(depgraph.Edge{From: 1, To: 2, Kind: depgraph.EdgeFromImport, ModuleLevel: true})
	g.AddEdge(depgraph.Edge{From: 2, To: 1, Kind: depgraph.EdgeFromImport, ModuleLevel: true})

	aMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "Y"}}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
	}}
	bMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "X"}}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
	}}

	facts := map[registry.ModuleId]ModuleFacts{
		1: FactsFromItemGraph(1, "a", false, itemgraph.Build("a", aMod)),
		2: FactsFromItemGraph(2, "b", false, itemgraph.Build("b", bMod)),
	}

	cycles := Analyze(g, facts)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].Classification != ModuleConstants {
		t.Fatalf("expected ModuleConstants, got %v", cycles[0].Classification)
	}
	if cycles[0].Classification.Resolvable() {
		t.Fatalf("ModuleConstants should be unresolvable")
	}
}

func TestAnalyzeModuleConstantsCycleWithImportsUnresolvable(t *testing.T) {
	// a.py and b.py each mix a module-level from-import with a constant
	// assignment (spec.md §8 Scenario S5) — the import alongside the
	// assignment must not disqualify HasModuleConstants.
	g := depgraph.New()
	g.AddEdge(depgraph.Edge{From: 1, To: 2, Kind: depgraph.EdgeFromImport, ModuleLevel: true})
	g.AddEdge(depgraph.Edge{From: 2, To: 1, Kind: depgraph.EdgeFromImport, ModuleLevel: true})

	aMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ImportFrom{Module: "b", Names: []pyast.Alias{{Name: "X"}}},
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "Y"}}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
	}}
	bMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ImportFrom{Module: "a", Names: []pyast.Alias{{Name: "Y"}}},
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "X"}}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
	}}

	facts := map[registry.ModuleId]ModuleFacts{
		1: FactsFromItemGraph(1, "a", false, itemgraph.Build("a", aMod)),
		2: FactsFromItemGraph(2, "b", false, itemgraph.Build("b", bMod)),
	}

	if !facts[1].HasModuleConstants || !facts[2].HasModuleConstants {
		t.Fatalf("expected HasModuleConstants for import+assignment modules: %+v / %+v", facts[1], facts[2])
	}

	cycles := Analyze(g, facts)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].Classification != ModuleConstants {
		t.Fatalf("expected ModuleConstants, got %v", cycles[0].Classification)
	}
	if cycles[0].Classification.Resolvable() {
		t.Fatalf("ModuleConstants should be unresolvable")
	}
}

func TestParentChildCycleAlwaysFunctionLevel(t *testing.T) {
	g := depgraph.New()
	g.AddEdge(depgraph.Edge{From: 1, To: 2, ModuleLevel: true})
	g.AddEdge(depgraph.Edge{From: 2, To: 1, ModuleLevel: true})

	aMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{&pyast.Name{Id: "Y"}}, Value: &pyast.Constant{Kind: pyast.ConstInt, Value: "1"}},
	}}
	facts := map[registry.ModuleId]ModuleFacts{
		1: FactsFromItemGraph(1, "pkg", true, itemgraph.Build("pkg", aMod)),
		2: FactsFromItemGraph(2, "pkg.sub", false, itemgraph.Build("pkg.sub", aMod)),
	}

	cycles := Analyze(g, facts)
	if cycles[0].Classification != FunctionLevel {
		t.Fatalf("parent/child cycle must classify FunctionLevel, got %v", cycles[0].Classification)
	}
}

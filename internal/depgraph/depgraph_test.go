package depgraph

import (
	"reflect"
	"testing"

	"github.com/gocribo/cribo/internal/registry"
)

func TestDependenciesAndDependents(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2, Names: []string{"x"}})
	g.AddEdge(Edge{From: 1, To: 3, Names: []string{"y"}})
	g.AddEdge(Edge{From: 2, To: 3, Names: []string{"z"}})

	if got := g.Dependencies(1); !reflect.DeepEqual(got, []registry.ModuleId{2, 3}) {
		t.Fatalf("Dependencies(1) = %v", got)
	}
	if got := g.Dependents(3); !reflect.DeepEqual(got, []registry.ModuleId{1, 2}) {
		t.Fatalf("Dependents(3) = %v", got)
	}
}

func TestStronglyConnectedComponentsFindsCycle(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 2, To: 1})
	g.AddEdge(Edge{From: 3, To: 1})

	sccs := g.StronglyConnectedComponents()
	if len(sccs) != 1 {
		t.Fatalf("expected 1 SCC, got %d: %v", len(sccs), sccs)
	}
	if !reflect.DeepEqual(sccs[0].Modules, []registry.ModuleId{1, 2}) {
		t.Fatalf("SCC modules = %v", sccs[0].Modules)
	}
}

func TestStronglyConnectedComponentsSelfLoop(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 1})

	sccs := g.StronglyConnectedComponents()
	if len(sccs) != 1 || len(sccs[0].Modules) != 1 {
		t.Fatalf("expected 1 self-loop SCC, got %v", sccs)
	}
}

func TestNoCyclesInAcyclicGraph(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 2, To: 3})

	if sccs := g.StronglyConnectedComponents(); len(sccs) != 0 {
		t.Fatalf("expected no SCCs in acyclic graph, got %v", sccs)
	}
	if cycles := g.FindCycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %v", cycles)
	}
}

func TestTopologicalOrderRespectsDependencies(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 2, To: 3})

	order := g.TopologicalOrder()
	pos := make(map[registry.ModuleId]int)
	for i, m := range order {
		pos[m] = i
	}
	if pos[3] >= pos[2] || pos[2] >= pos[1] {
		t.Fatalf("expected 3 before 2 before 1, got order %v", order)
	}
}

func TestFindCyclesReportsMembership(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 2, To: 3})
	g.AddEdge(Edge{From: 3, To: 1})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %v", len(cycles), cycles)
	}
	if len(cycles[0].Modules) != 3 {
		t.Fatalf("expected cycle of length 3, got %v", cycles[0].Modules)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	g := New()
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 2, To: 3})

	if roots := g.Roots(); !reflect.DeepEqual(roots, []registry.ModuleId{1}) {
		t.Fatalf("Roots() = %v", roots)
	}
	if leaves := g.Leaves(); !reflect.DeepEqual(leaves, []registry.ModuleId{3}) {
		t.Fatalf("Leaves() = %v", leaves)
	}
}

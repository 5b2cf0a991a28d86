package depgraph

import (
	"sort"

	"github.com/gocribo/cribo/internal/registry"
)

// TopologicalOrder returns modules in dependency-first order (a module's
// dependencies appear before it), matching the emission order the bundle
// compiler needs for namespace hoisting (spec.md §4.10). Modules
// participating in a cycle come out in depth-first post-order, starting
// from the lowest id, so the order within an SCC is deterministic but not
// sorted by id (for 1 <-> 2 the result is [2, 1]). Grounded on the teacher's
// internal/interproc/topological.go TopologicalSort, adapted from
// reverse-topological call order to forward dependency order.
func (g *Graph) TopologicalOrder() []registry.ModuleId {
	visited := make(map[registry.ModuleId]bool)
	var result []registry.ModuleId

	var visit func(registry.ModuleId)
	visit = func(m registry.ModuleId) {
		if visited[m] {
			return
		}
		visited[m] = true
		for _, dep := range g.Dependencies(m) {
			visit(dep)
		}
		result = append(result, m)
	}

	for _, m := range g.sortedModules() {
		visit(m)
	}
	return result
}

// Roots returns modules nothing else depends on.
func (g *Graph) Roots() []registry.ModuleId {
	var roots []registry.ModuleId
	for _, m := range g.sortedModules() {
		if len(g.reverseEdges[m]) == 0 {
			roots = append(roots, m)
		}
	}
	return roots
}

// Leaves returns modules with no outgoing dependencies.
func (g *Graph) Leaves() []registry.ModuleId {
	var leaves []registry.ModuleId
	for _, m := range g.sortedModules() {
		if len(g.edges[m]) == 0 {
			leaves = append(leaves, m)
		}
	}
	return leaves
}

// Cycle is one simple cycle through the module graph, starting and ending
// implicitly at Modules[0] (the path visits each module once).
type Cycle struct {
	Modules []registry.ModuleId
}

// FindCycles enumerates simple cycles of length >= 2 within each SCC found
// by StronglyConnectedComponents. Within a large SCC there can be
// exponentially many simple cycles; FindCycles reports at most one
// representative cycle per SCC member used as a start point, which is
// sufficient for spec.md §4.6's per-module diagnostic reporting without
// blowing up on pathological inputs.
func (g *Graph) FindCycles() []Cycle {
	var cycles []Cycle
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc.Modules) < 2 {
			continue
		}
		members := make(map[registry.ModuleId]bool, len(scc.Modules))
		for _, m := range scc.Modules {
			members[m] = true
		}
		seen := make(map[registry.ModuleId]bool)
		for _, start := range scc.Modules {
			if seen[start] {
				continue
			}
			if cyc, ok := findCycleFrom(g, start, members); ok {
				for _, m := range cyc.Modules {
					seen[m] = true
				}
				cycles = append(cycles, cyc)
			}
		}
	}
	return cycles
}

func findCycleFrom(g *Graph, start registry.ModuleId, members map[registry.ModuleId]bool) (Cycle, bool) {
	visited := make(map[registry.ModuleId]bool)
	var path []registry.ModuleId

	var dfs func(registry.ModuleId) bool
	dfs = func(m registry.ModuleId) bool {
		visited[m] = true
		path = append(path, m)
		deps := g.Dependencies(m)
		sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
		for _, next := range deps {
			if !members[next] {
				continue
			}
			if next == start {
				return true
			}
			if !visited[next] {
				if dfs(next) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if dfs(start) {
		return Cycle{Modules: path}, true
	}
	return Cycle{}, false
}

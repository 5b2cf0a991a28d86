package depgraph

import (
	"sort"

	"github.com/gocribo/cribo/internal/registry"
)

// SCC is one strongly connected component, module ids ascending.
type SCC struct {
	ID      int
	Modules []registry.ModuleId
}

// tarjanState mirrors the teacher's internal/interproc/scc.go sccState,
// adapted from ir.ContextNode keys to registry.ModuleId keys.
type tarjanState struct {
	index   int
	lowlink int
	onStack bool
}

// StronglyConnectedComponents runs Tarjan's algorithm over g. Only
// components with more than one module, or a single module with a
// self-loop, are returned (spec.md §4.6's cycles are always >= 2 modules
// except the synthetic self-import case, which this also captures).
func (g *Graph) StronglyConnectedComponents() []SCC {
	var (
		index  = 0
		stack  []registry.ModuleId
		state  = make(map[registry.ModuleId]*tarjanState)
		sccs   []SCC
		nextID = 0
	)

	var strongConnect func(registry.ModuleId)
	strongConnect = func(v registry.ModuleId) {
		state[v] = &tarjanState{index: index, lowlink: index, onStack: true}
		index++
		stack = append(stack, v)

		deps := g.Dependencies(v)
		for _, w := range deps {
			ws := state[w]
			if ws == nil {
				strongConnect(w)
				if state[w].lowlink < state[v].lowlink {
					state[v].lowlink = state[w].lowlink
				}
			} else if ws.onStack {
				if ws.index < state[v].lowlink {
					state[v].lowlink = ws.index
				}
			}
		}

		if state[v].lowlink == state[v].index {
			var members []registry.ModuleId
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				state[w].onStack = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			if len(members) > 1 || hasSelfLoop(g, members[0]) {
				sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
				sccs = append(sccs, SCC{ID: nextID, Modules: members})
				nextID++
			}
		}
	}

	for _, m := range g.sortedModules() {
		if state[m] == nil {
			strongConnect(m)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i].Modules[0] < sccs[j].Modules[0] })
	return sccs
}

func hasSelfLoop(g *Graph, m registry.ModuleId) bool {
	for _, e := range g.edges[m] {
		if e.To == m {
			return true
		}
	}
	return false
}

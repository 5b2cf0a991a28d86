// Package depgraph builds and analyzes the cross-module dependency graph
// (spec.md §4.4): a directed multigraph over ModuleIds where an edge
// records which imported names one module's Item pulled from another.
// Its SCC/topological-sort machinery is grounded on the teacher's
// internal/interproc package, adapted from a call graph over ContextNode
// to a module graph over registry.ModuleId.
package depgraph

import (
	"sort"

	"github.com/gocribo/cribo/internal/registry"
)

// EdgeKind subtypes the import statement that produced an Edge, per
// spec.md §4.8's import-chain bookkeeping.
type EdgeKind int

const (
	EdgeDirectImport EdgeKind = iota
	EdgeFromImport
	EdgeRelativeFromImport
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDirectImport:
		return "direct import"
	case EdgeFromImport:
		return "from-import"
	case EdgeRelativeFromImport:
		return "relative from-import"
	default:
		return "unknown"
	}
}

// Edge records one module importing from another.
type Edge struct {
	From       registry.ModuleId
	To         registry.ModuleId
	ItemID     int      // the importing Item's id within From
	Names      []string // names imported ("" entry means a bare `import to`)
	IsWildcard bool      // `from to import *`
	Kind       EdgeKind
	ModuleLevel bool // false if the import occurs inside a function/method body
}

// Graph is the module dependency multigraph.
type Graph struct {
	Modules []registry.ModuleId

	edges        map[registry.ModuleId][]Edge
	reverseEdges map[registry.ModuleId][]Edge
	known        map[registry.ModuleId]bool
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		edges:        make(map[registry.ModuleId][]Edge),
		reverseEdges: make(map[registry.ModuleId][]Edge),
		known:        make(map[registry.ModuleId]bool),
	}
}

// AddModule registers id as a node, even if it has no edges yet.
func (g *Graph) AddModule(id registry.ModuleId) {
	if g.known[id] {
		return
	}
	g.known[id] = true
	g.Modules = append(g.Modules, id)
}

// AddEdge records that `from` depends on `to`. Both modules are registered
// as nodes if not already present.
func (g *Graph) AddEdge(e Edge) {
	g.AddModule(e.From)
	g.AddModule(e.To)
	g.edges[e.From] = append(g.edges[e.From], e)
	g.reverseEdges[e.To] = append(g.reverseEdges[e.To], e)
}

// Dependencies returns the distinct modules `from` directly imports from,
// sorted by id.
func (g *Graph) Dependencies(from registry.ModuleId) []registry.ModuleId {
	return distinctSorted(g.edges[from], func(e Edge) registry.ModuleId { return e.To })
}

// Dependents returns the distinct modules that directly import from `to`,
// sorted by id.
func (g *Graph) Dependents(to registry.ModuleId) []registry.ModuleId {
	return distinctSorted(g.reverseEdges[to], func(e Edge) registry.ModuleId { return e.From })
}

// EdgesFrom returns every recorded edge originating at from, in insertion order.
func (g *Graph) EdgesFrom(from registry.ModuleId) []Edge {
	return g.edges[from]
}

func distinctSorted(edges []Edge, key func(Edge) registry.ModuleId) []registry.ModuleId {
	seen := make(map[registry.ModuleId]bool)
	var out []registry.ModuleId
	for _, e := range edges {
		k := key(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sortedModules returns Modules sorted ascending, for deterministic traversal.
func (g *Graph) sortedModules() []registry.ModuleId {
	out := make([]registry.ModuleId, len(g.Modules))
	copy(out, g.Modules)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Package treeshake computes reachability from the entry module through
// symbol-level dependencies, respecting side effects (spec.md §4.9).
// Grounded on the teacher's internal/interproc worklist-based fixpoint
// propagator (internal/interproc/fixpoint.go): a FIFO worklist of facts
// (there, lattice values per call-graph node; here, live (module, symbol)
// pairs) drained until empty, each pop potentially pushing more work.
package treeshake

import (
	"sort"

	"github.com/gocribo/cribo/internal/exports"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/registry"
)

// Symbol is one (module, name) pair tracked by the worklist.
type Symbol struct {
	Module registry.ModuleId
	Name   string
}

// ImportTable maps a module's locally-bound import names to the module and
// symbol they resolve to, for resolving read_vars through aliases
// (spec.md §4.9 step 4).
type ImportTable map[registry.ModuleId]map[string]itemgraph.ImportedName

// Input bundles everything the shaker needs. ResolveModuleName maps a
// dotted module name to its registered id (used only for whole-module
// `import M` resolution); it should return false for stdlib/third-party
// targets, which are never first-party and so never tree-shaken.
type Input struct {
	Entry         registry.ModuleId
	ItemGraphs    map[registry.ModuleId]*itemgraph.ModuleDepGraph
	Exports       map[registry.ModuleId]exports.Result
	Imports       ImportTable
	ResolveModule func(name string) (registry.ModuleId, bool)
}

// Result is the tree-shake output.
type Result struct {
	// Live is the set of surviving (module, item) pairs.
	Live map[registry.ModuleId]map[itemgraph.ItemId]bool
	// RemovedModules lists modules none of whose items survived.
	RemovedModules []registry.ModuleId
}

// IsLive reports whether item survived shaking.
func (r *Result) IsLive(m registry.ModuleId, item itemgraph.ItemId) bool {
	return r.Live[m] != nil && r.Live[m][item]
}

// Run executes the algorithm of spec.md §4.9 and returns the live set.
func Run(in Input) *Result {
	s := &shaker{
		in:        in,
		liveSym:   make(map[Symbol]bool),
		liveItems: make(map[registry.ModuleId]map[itemgraph.ItemId]bool),
	}
	s.seed()
	s.drain()
	return s.result()
}

type shaker struct {
	in        Input
	worklist  []Symbol
	liveSym   map[Symbol]bool
	liveItems map[registry.ModuleId]map[itemgraph.ItemId]bool
}

func (s *shaker) push(sym Symbol) {
	if sym.Name == "" {
		return
	}
	s.worklist = append(s.worklist, sym)
}

func (s *shaker) seed() {
	entryGraph := s.in.ItemGraphs[s.in.Entry]
	if entryGraph == nil {
		return
	}
	// Every global-scope reference in the entry module, and every
	// side-effectful item, seeds the worklist.
	for _, it := range entryGraph.Items {
		for _, n := range it.ReadVars {
			s.push(Symbol{Module: s.in.Entry, Name: n})
		}
		if it.HasSideEffects {
			s.markItemLive(s.in.Entry, it)
		}
	}

	// Every module directly imported as a whole, anywhere in the program,
	// opts out of tree-shaking of its public surface entirely (spec.md
	// §9's Open Question: the importer may use any attribute, so every
	// item of that module is treated as live, not just its named
	// exports).
	seenWhole := make(map[registry.ModuleId]bool)
	for _, g := range s.in.ItemGraphs {
		for _, it := range g.Items {
			if it.Kind != itemgraph.KindImport {
				continue
			}
			for _, imp := range it.ImportedNames {
				target, ok := s.in.ResolveModule(imp.Module)
				if !ok || seenWhole[target] {
					continue
				}
				seenWhole[target] = true
				s.adoptWholeModule(target)
			}
		}
	}
}

// adoptWholeModule marks every item of module live and propagates its
// internal dependencies, because any of its attributes may be accessed by
// importers that hold the whole module object.
func (s *shaker) adoptWholeModule(module registry.ModuleId) {
	g := s.in.ItemGraphs[module]
	if g == nil {
		return
	}
	for _, it := range g.Items {
		s.markItemLive(module, it)
		for _, n := range it.ReadVars {
			s.pushResolved(module, n)
		}
		for _, n := range it.WriteVars {
			s.pushResolved(module, n)
		}
		for _, n := range it.EventualReadVars {
			s.pushResolved(module, n)
		}
		for _, n := range it.EventualWriteVars {
			s.pushResolved(module, n)
		}
	}
}

func (s *shaker) drain() {
	for len(s.worklist) > 0 {
		sym := s.worklist[0]
		s.worklist = s.worklist[1:]
		if s.liveSym[sym] {
			continue
		}
		s.liveSym[sym] = true
		s.propagate(sym)
	}
}

func (s *shaker) propagate(sym Symbol) {
	g := s.in.ItemGraphs[sym.Module]
	if g == nil {
		return
	}
	it, ok := g.FindBySymbol(sym.Name)
	if !ok {
		return
	}
	s.markItemLive(sym.Module, it)

	for _, n := range it.ReadVars {
		s.pushResolved(sym.Module, n)
	}
	for _, n := range it.WriteVars {
		s.pushResolved(sym.Module, n)
	}
	for _, n := range it.EventualReadVars {
		s.pushResolved(sym.Module, n)
	}
	for _, n := range it.EventualWriteVars {
		s.pushResolved(sym.Module, n)
	}

	// Every side-effectful item in a module that contributes a live
	// symbol stays live too: importing any part of a module executes the
	// whole thing.
	for _, other := range g.Items {
		if other.HasSideEffects {
			s.markItemLive(sym.Module, other)
		}
	}

	if it.Kind == itemgraph.KindClassDef {
		// Base classes must exist at class-creation time.
		for _, dep := range it.SymbolDependencies[sym.Name] {
			s.pushResolved(sym.Module, dep)
		}
	}
}

// pushResolved resolves name first through module's local import table
// (aliases), then assumes it is defined locally.
func (s *shaker) pushResolved(module registry.ModuleId, name string) {
	if table := s.in.Imports[module]; table != nil {
		if imp, ok := table[name]; ok {
			target, ok := s.in.ResolveModule(imp.Module)
			if ok {
				symName := imp.Name
				if symName == "" {
					// Bare `import M` binds the module object itself;
					// treat every one of its public exports as reachable
					// since any attribute may be used.
					for _, pub := range s.in.Exports[target].Names {
						s.push(Symbol{Module: target, Name: pub})
					}
					return
				}
				s.push(Symbol{Module: target, Name: symName})
				return
			}
		}
	}
	s.push(Symbol{Module: module, Name: name})
}

func (s *shaker) markItemLive(module registry.ModuleId, it *itemgraph.Item) {
	if s.liveItems[module] == nil {
		s.liveItems[module] = make(map[itemgraph.ItemId]bool)
	}
	s.liveItems[module][it.ID] = true
}

func (s *shaker) result() *Result {
	// An import item is retained iff at least one of its imported names
	// is live and needed by a surviving item: i.e. its own DefinedSymbols
	// intersect the live-symbol set for its module.
	for modID, g := range s.in.ItemGraphs {
		for _, it := range g.Items {
			if it.Kind != itemgraph.KindImport && it.Kind != itemgraph.KindFromImport {
				continue
			}
			for _, name := range it.DefinedSymbols {
				if s.liveSym[Symbol{Module: modID, Name: name}] {
					s.markItemLive(modID, it)
					break
				}
			}
		}
	}

	var removed []registry.ModuleId
	for modID, g := range s.in.ItemGraphs {
		if len(s.liveItems[modID]) == 0 && len(g.Items) > 0 {
			removed = append(removed, modID)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	return &Result{Live: s.liveItems, RemovedModules: removed}
}

package bundler

import (
	"sort"

	"github.com/gocribo/cribo/internal/depgraph"
	"github.com/gocribo/cribo/internal/exports"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/registry"
	"github.com/gocribo/cribo/internal/semantic"
	"github.com/gocribo/cribo/internal/treeshake"
)

// Input bundles every analysis-stage output the compiler consumes.
type Input struct {
	Entry          registry.ModuleId
	Registry       *registry.Registry
	CanonicalNames map[registry.ModuleId]string
	ItemGraphs     map[registry.ModuleId]*itemgraph.ModuleDepGraph
	Semantic       *semantic.Provider
	TreeShake      *treeshake.Result
	Exports        map[registry.ModuleId]exports.Result
	Origins        map[semantic.GlobalBindingId]semantic.GlobalBindingId
	Depgraph       *depgraph.Graph
	Classified     []ClassifiedImport
	EntryDocstring string
}

// Compile runs spec.md §4.10's compile sequence and returns the finished
// BundleProgram.
func Compile(in Input) (*Program, error) {
	c := &compiler{in: in, prog: &Program{Renames: make(map[RenameKey]string)}}
	return c.run()
}

type compiler struct {
	in   Input
	prog *Program

	// nsModules is the set of first-party modules that need a
	// types.SimpleNamespace object: targets of any EmulateNamespace
	// import.
	nsModules map[registry.ModuleId]bool
	// inlineSources is the set of first-party modules that are the
	// source of at least one Inline (from-import) binding.
	inlineSources map[registry.ModuleId]bool
}

func (c *compiler) run() (*Program, error) {
	c.classifySets()

	hoistNeedsTypes := c.emitHoisted()

	emitOrder := c.namespaceEmissionOrder()
	if hoistNeedsTypes {
		c.prog.insert(&pyastImportTypes)
	}
	c.buildRenames()
	for _, m := range emitOrder {
		c.emitModule(m)
	}

	c.emitEntryBody()

	return c.prog, nil
}

func (c *compiler) classifySets() {
	c.nsModules = make(map[registry.ModuleId]bool)
	c.inlineSources = make(map[registry.ModuleId]bool)
	for _, ci := range c.in.Classified {
		if !ci.HasTarget {
			continue
		}
		if !c.isLiveImport(ci) {
			continue
		}
		switch ci.Class {
		case ClassEmulateNamespace:
			c.nsModules[ci.Target] = true
		case ClassInline:
			c.inlineSources[ci.Target] = true
		}
	}
}

// isLiveImport reports whether a classified import item survived
// tree-shaking (or tree-shake data simply wasn't supplied, in which case
// everything is considered live).
func (c *compiler) isLiveImport(ci ClassifiedImport) bool {
	if c.in.TreeShake == nil {
		return true
	}
	return c.in.TreeShake.IsLive(ci.Module, ci.Item.ID)
}

// namespaceEmissionOrder returns every module needing copied-in emission
// (namespace target or inline source), dependency-sorted among
// themselves via the module graph's topological order.
func (c *compiler) namespaceEmissionOrder() []registry.ModuleId {
	need := make(map[registry.ModuleId]bool)
	for m := range c.nsModules {
		need[m] = true
	}
	for m := range c.inlineSources {
		need[m] = true
	}

	var order []registry.ModuleId
	if c.in.Depgraph != nil {
		for _, m := range c.in.Depgraph.TopologicalOrder() {
			if need[m] {
				order = append(order, m)
				delete(need, m)
			}
		}
	}
	// Anything not covered by the graph (e.g. isolated modules) is
	// appended in deterministic id order.
	var rest []registry.ModuleId
	for m := range need {
		rest = append(rest, m)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	order = append(order, rest...)
	return order
}

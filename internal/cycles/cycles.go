// Package cycles implements the circular-dependency analyzer (spec.md
// §4.8): classify every SCC of size >= 2 in the module dependency graph
// and suggest (or refuse) a resolution. Grounded on the teacher's
// internal/interproc SCC + lattice-join shape: Tarjan gives the partition
// (internal/depgraph), this package is the classification/metadata layer
// the teacher doesn't need (gorisk only reports that a cycle exists; it
// never has to decide how to break one).
package cycles

import (
	"sort"

	"github.com/gocribo/cribo/internal/depgraph"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/registry"
)

// Classification is the outcome of classifying one cycle.
type Classification int

const (
	FunctionLevel Classification = iota
	ClassLevel
	ModuleConstants // unresolvable
	ImportTime      // unresolvable
)

func (c Classification) String() string {
	switch c {
	case FunctionLevel:
		return "FunctionLevel"
	case ClassLevel:
		return "ClassLevel"
	case ModuleConstants:
		return "ModuleConstants"
	case ImportTime:
		return "ImportTime"
	default:
		return "Unknown"
	}
}

// Resolvable reports whether the bundler can proceed past this
// classification (ModuleConstants and ImportTime cannot).
func (c Classification) Resolvable() bool {
	return c == FunctionLevel || c == ClassLevel
}

// Resolution names the suggested remedy for a resolvable cycle.
type Resolution int

const (
	ResolutionNone Resolution = iota
	ResolutionMoveIntoFunctionBody
	ResolutionLazyProxy
	ResolutionUnresolvable
)

func (r Resolution) String() string {
	switch r {
	case ResolutionMoveIntoFunctionBody:
		return "move module-level imports into the function bodies that use them"
	case ResolutionLazyProxy:
		return "introduce one lazy proxy per member and defer attribute access"
	case ResolutionUnresolvable:
		return "unresolvable; surface a diagnostic"
	default:
		return "none"
	}
}

// ModuleFacts is what the analyzer needs to know about one cycle member,
// supplied by the caller (the pipeline), which already has each module's
// item graph and registry entry in hand.
type ModuleFacts struct {
	ID           registry.ModuleId
	CanonicalName string
	IsPackageInit bool // the module's defining file is an __init__.py
	HasClass     bool
	// HasModuleConstants is true iff the module has at least one Assignment
	// item and no FunctionDef/ClassDef/Expression/If/Try item (spec.md
	// §4.8's has_module_constants) — Import/FromImport items alongside the
	// assignments don't disqualify it.
	HasModuleConstants bool
	// EmptyOrImportsOnly is true iff every item in the module is an
	// Import/FromImport, or the module has no items at all.
	EmptyOrImportsOnly bool
}

// FactsFromItemGraph derives ModuleFacts from a module's item graph and
// registry identity.
func FactsFromItemGraph(id registry.ModuleId, canonicalName string, isPackageInit bool, g *itemgraph.ModuleDepGraph) ModuleFacts {
	f := ModuleFacts{ID: id, CanonicalName: canonicalName, IsPackageInit: isPackageInit}
	if len(g.Items) == 0 {
		f.EmptyOrImportsOnly = true
		return f
	}
	allImports := true
	hasAssignment := false
	disqualified := false
	for _, it := range g.Items {
		if it.Kind != itemgraph.KindImport && it.Kind != itemgraph.KindFromImport {
			allImports = false
		}
		if it.Kind == itemgraph.KindAssignment {
			hasAssignment = true
		}
		switch it.Kind {
		case itemgraph.KindFunctionDef, itemgraph.KindClassDef, itemgraph.KindExpression, itemgraph.KindIf, itemgraph.KindTry:
			disqualified = true
		}
		if it.Kind == itemgraph.KindClassDef {
			f.HasClass = true
		}
	}
	f.EmptyOrImportsOnly = allImports
	f.HasModuleConstants = hasAssignment && !disqualified
	return f
}

// Cycle is one classified cycle.
type Cycle struct {
	Members []ModuleFacts
	Edges   []depgraph.Edge

	AllFunctionScoped bool
	InvolvesClasses   bool
	HasModuleConstants bool
	ComplexityScore   int

	Classification Classification
	Resolution     Resolution
}

// Analyze classifies every SCC-derived cycle in g, using facts (keyed by
// ModuleId) for metadata the graph alone doesn't carry.
func Analyze(g *depgraph.Graph, facts map[registry.ModuleId]ModuleFacts) []Cycle {
	var cycles []Cycle
	for _, scc := range g.StronglyConnectedComponents() {
		if len(scc.Modules) < 2 {
			continue
		}
		c := buildCycle(g, scc.Modules, facts)
		c.Classification = classify(c)
		c.Resolution = suggest(c.Classification)
		cycles = append(cycles, c)
	}
	return cycles
}

func buildCycle(g *depgraph.Graph, members []registry.ModuleId, facts map[registry.ModuleId]ModuleFacts) Cycle {
	memberSet := make(map[registry.ModuleId]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	var c Cycle
	for _, m := range members {
		if f, ok := facts[m]; ok {
			c.Members = append(c.Members, f)
			if f.HasClass {
				c.InvolvesClasses = true
			}
			if f.HasModuleConstants {
				c.HasModuleConstants = true
			}
		}
	}

	allFnScoped := true
	anyEdge := false
	for _, m := range members {
		for _, e := range g.EdgesFrom(m) {
			if !memberSet[e.To] {
				continue
			}
			anyEdge = true
			c.Edges = append(c.Edges, e)
			if e.ModuleLevel {
				allFnScoped = false
			}
		}
	}
	c.AllFunctionScoped = anyEdge && allFnScoped

	c.ComplexityScore = len(c.Members)*2 + len(c.Edges)
	if c.InvolvesClasses {
		c.ComplexityScore += 3
	}
	if c.HasModuleConstants {
		c.ComplexityScore += 3
	}
	return c
}

// classify applies spec.md §4.8's first-match-wins rule list.
func classify(c Cycle) Classification {
	// 1. Parent/child package cycle.
	for _, a := range c.Members {
		for _, b := range c.Members {
			if a.ID == b.ID {
				continue
			}
			if isParentPackage(a.CanonicalName, b.CanonicalName) {
				return FunctionLevel
			}
		}
	}

	// 2. Unresolvable module constants outside __init__.
	if c.HasModuleConstants && !anyIsInit(c.Members) {
		return ModuleConstants
	}

	// 3. Classes involved.
	if c.InvolvesClasses {
		if c.AllFunctionScoped {
			return FunctionLevel
		}
		return ClassLevel
	}

	// 4. All members empty or imports-only.
	if allEmptyOrImportsOnly(c.Members) {
		return FunctionLevel
	}

	// 5. All edges function-scoped.
	if c.AllFunctionScoped {
		return FunctionLevel
	}

	// 6. Any member is __init__.
	if anyIsInit(c.Members) {
		return ImportTime
	}

	// 7. Default.
	return FunctionLevel
}

func suggest(cls Classification) Resolution {
	switch cls {
	case FunctionLevel:
		return ResolutionMoveIntoFunctionBody
	case ClassLevel:
		return ResolutionLazyProxy
	default:
		return ResolutionUnresolvable
	}
}

func isParentPackage(a, b string) bool {
	return len(a) < len(b) && b[:len(a)] == a && b[len(a)] == '.'
}

func anyIsInit(members []ModuleFacts) bool {
	for _, m := range members {
		if m.IsPackageInit {
			return true
		}
	}
	return false
}

func allEmptyOrImportsOnly(members []ModuleFacts) bool {
	for _, m := range members {
		if !m.EmptyOrImportsOnly {
			return false
		}
	}
	return true
}

// SortedMembers returns a cycle's members sorted by ModuleId, for
// deterministic diagnostic output.
func SortedMembers(c Cycle) []ModuleFacts {
	out := make([]ModuleFacts, len(c.Members))
	copy(out, c.Members)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

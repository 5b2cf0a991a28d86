// Package itemgraph builds the per-module item graph (spec.md §4.3): one
// Item per top-level statement, with read/write/eventual variable sets and
// a has-side-effects flag. It plays the role the teacher's internal/ir
// package plays for call graphs (ir.Symbol, ir.CallEdge, ir.IRGraph) but at
// statement granularity instead of function-call granularity.
package itemgraph

import "github.com/gocribo/cribo/internal/pyast"

// ItemId identifies one top-level statement within a single module.
type ItemId int

// Kind is the tag of an Item's ItemType union (spec.md §3).
type Kind int

const (
	KindImport Kind = iota
	KindFromImport
	KindFunctionDef
	KindClassDef
	KindAssignment
	KindExpression
	KindIf
	KindTry
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "Import"
	case KindFromImport:
		return "FromImport"
	case KindFunctionDef:
		return "FunctionDef"
	case KindClassDef:
		return "ClassDef"
	case KindAssignment:
		return "Assignment"
	case KindExpression:
		return "Expression"
	case KindIf:
		return "If"
	case KindTry:
		return "Try"
	default:
		return "Unknown"
	}
}

// ImportedName is one name bound by an Import/FromImport item.
type ImportedName struct {
	Module string // target module (dotted); for FromImport, the "from" module
	Name   string // "" for plain `import M`; the imported attribute for `from M import name`
	Alias  string // "" if no `as` clause
	Level  int    // relative-import dot count; 0 for absolute
}

// Item is one top-level statement's contribution to a module's dependency
// surface.
type Item struct {
	ID   ItemId
	Kind Kind
	Stmt pyast.Stmt

	StatementIndex int        // position in module.Body
	Span           pyast.Span

	DefinedSymbols []string // names this item binds at module scope
	ReadVars       []string
	WriteVars      []string

	// EventualReadVars/EventualWriteVars are names only touched once a
	// contained function is later called (spec.md §3): they anchor a
	// module-level binding without making the enclosing item itself
	// side-effectful.
	EventualReadVars  []string
	EventualWriteVars []string

	ImportedNames    []ImportedName
	ReexportedNames  []string

	HasSideEffects bool

	// SymbolDependencies maps each name in DefinedSymbols to the set of
	// names its defining statement reads directly; the map is not
	// transitively closed (used by tree-shaking).
	SymbolDependencies map[string][]string
}

// ModuleDepGraph is the ordered set of items for one module.
type ModuleDepGraph struct {
	ModuleName string
	Items      []*Item
	byID       map[ItemId]*Item
}

func newGraph(name string) *ModuleDepGraph {
	return &ModuleDepGraph{ModuleName: name, byID: make(map[ItemId]*Item)}
}

func (g *ModuleDepGraph) add(it *Item) {
	g.byID[it.ID] = it
	g.Items = append(g.Items, it)
}

// Get returns the item with the given id.
func (g *ModuleDepGraph) Get(id ItemId) (*Item, bool) {
	it, ok := g.byID[id]
	return it, ok
}

// FindBySymbol returns the item (if any) that defines name at module scope.
func (g *ModuleDepGraph) FindBySymbol(name string) (*Item, bool) {
	for _, it := range g.Items {
		for _, d := range it.DefinedSymbols {
			if d == name {
				return it, true
			}
		}
	}
	return nil, false
}

// IsHoistable reports whether item is a `__future__` import or a
// known-side-effect-free stdlib import (spec.md §4.3).
func (it *Item) IsHoistable(isStdlib func(module string) bool, hasOpaqueSideEffects func(module string) bool) bool {
	if it.Kind != KindImport && it.Kind != KindFromImport {
		return false
	}
	for _, n := range it.ImportedNames {
		if n.Module == "__future__" {
			return true
		}
	}
	if !isStdlib(it.primaryModule()) {
		return false
	}
	return !hasOpaqueSideEffects(it.primaryModule())
}

func (it *Item) primaryModule() string {
	if len(it.ImportedNames) == 0 {
		return ""
	}
	return it.ImportedNames[0].Module
}

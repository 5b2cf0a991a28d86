package bundler

import (
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/registry"
	"github.com/gocribo/cribo/internal/resolver"
)

// ImportClass is the per-import-item classification of spec.md §4.10.
type ImportClass int

const (
	ClassHoistDirect ImportClass = iota
	ClassHoistFrom
	ClassEmulateNamespace
	ClassInline
	ClassThirdPartyUnchanged
)

// ClassifiedImport is one import item together with its decision and the
// first-party module it targets, if any.
type ClassifiedImport struct {
	Module registry.ModuleId
	Item   *itemgraph.Item

	Class ImportClass
	// Target is the first-party module this import binds to (Inline,
	// EmulateNamespace). Zero value / HasTarget=false otherwise.
	Target    registry.ModuleId
	HasTarget bool

	// For ClassInline, the per-name bindings actually inlined; names that
	// are themselves submodules are split off into NamespaceNames and
	// handled as EmulateNamespace instead (spec.md §4.10).
	InlinedNames   []itemgraph.ImportedName
	NamespaceNames []itemgraph.ImportedName
}

// ResolveFunc classifies a single dotted import target the way
// internal/resolver does: what kind of import target it is, and (for
// FirstParty) which ModuleId it resolved to.
type ResolveFunc func(requester string, moduleName string, level int) (resolver.Kind, registry.ModuleId, bool)

// SubmoduleFunc reports whether `from parent import name` actually refers
// to a submodule of parent (vs. an attribute defined in parent's body).
type SubmoduleFunc func(parentModule string, name string) (registry.ModuleId, bool)

// Classify classifies every import/from-import item across all modules.
func Classify(
	graphs map[registry.ModuleId]*itemgraph.ModuleDepGraph,
	canonicalNames map[registry.ModuleId]string,
	resolve ResolveFunc,
	isSubmodule SubmoduleFunc,
) []ClassifiedImport {
	var out []ClassifiedImport
	for modID, g := range graphs {
		requester := canonicalNames[modID]
		for _, it := range g.Items {
			switch it.Kind {
			case itemgraph.KindImport:
				out = append(out, classifyImport(modID, it, requester, resolve)...)
			case itemgraph.KindFromImport:
				out = append(out, classifyFromImport(modID, it, requester, resolve, isSubmodule, canonicalNames))
			}
		}
	}
	return out
}

func classifyImport(modID registry.ModuleId, it *itemgraph.Item, requester string, resolve ResolveFunc) []ClassifiedImport {
	var out []ClassifiedImport
	for _, name := range it.ImportedNames {
		ci := ClassifiedImport{Module: modID, Item: it}
		if name.Module == "__future__" {
			ci.Class = ClassHoistDirect
			out = append(out, ci)
			continue
		}
		kind, target, ok := resolve(requester, name.Module, 0)
		switch {
		case kind == resolver.StandardLibrary:
			ci.Class = ClassHoistDirect
		case kind == resolver.FirstParty && ok:
			ci.Class = ClassEmulateNamespace
			ci.Target = target
			ci.HasTarget = true
		default:
			ci.Class = ClassThirdPartyUnchanged
		}
		out = append(out, ci)
	}
	return out
}

func classifyFromImport(modID registry.ModuleId, it *itemgraph.Item, requester string, resolve ResolveFunc, isSubmodule SubmoduleFunc, canonicalNames map[registry.ModuleId]string) ClassifiedImport {
	ci := ClassifiedImport{Module: modID, Item: it}
	if len(it.ImportedNames) == 0 {
		ci.Class = ClassThirdPartyUnchanged
		return ci
	}
	first := it.ImportedNames[0]
	if first.Module == "__future__" {
		ci.Class = ClassHoistFrom
		return ci
	}

	kind, target, ok := resolve(requester, first.Module, first.Level)
	switch {
	case kind == resolver.StandardLibrary:
		ci.Class = ClassHoistFrom
	case kind == resolver.FirstParty && ok:
		ci.Class = ClassInline
		ci.Target = target
		ci.HasTarget = true
		parentDotted := canonicalNames[target]
		for _, n := range it.ImportedNames {
			if sub, isSub := isSubmodule(parentDotted, n.Name); isSub {
				_ = sub
				ci.NamespaceNames = append(ci.NamespaceNames, n)
			} else {
				ci.InlinedNames = append(ci.InlinedNames, n)
			}
		}
	default:
		ci.Class = ClassThirdPartyUnchanged
	}
	return ci
}

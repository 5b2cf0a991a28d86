package bundler

import (
	"sort"

	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
)

// emitHoisted emits the `__future__` import, then grouped stdlib
// from-imports, then stdlib plain imports, in the deterministic order
// spec.md §4.10 step 1 requires. It returns whether any namespace
// emulation is needed anywhere in the program (decided by the caller from
// nsModules, passed back here only to decide whether `import types`
// precedes the namespace infrastructure). It also implements the fuller
// import-deduplication rule of original_source/code_generator/import_deduplicator.rs:
// a hoisted `import X` is dropped when a `from X import Y` for the same X
// is also hoisted. Within each form, every distinct alias of a module is
// kept in one statement per module; the two forms are not merged, so any
// alias the dropped `import X` carried is not emitted.
func (c *compiler) emitHoisted() bool {
	future := newStringSet()
	fromStdlib := map[string]*nameAliasSet{} // module -> {name: alias}
	var fromOrder []string
	plainStdlib := map[string]*nameAliasSet{} // module -> {alias}
	var plainOrder []string

	for _, ci := range c.in.Classified {
		if !c.isLiveImport(ci) {
			continue
		}
		switch ci.Class {
		case ClassHoistFrom:
			for _, n := range ci.Item.ImportedNames {
				if n.Module == "__future__" {
					future.add(n.Name)
					continue
				}
				set, ok := fromStdlib[n.Module]
				if !ok {
					set = newNameAliasSet()
					fromStdlib[n.Module] = set
					fromOrder = append(fromOrder, n.Module)
				}
				set.add(n.Name, n.Alias)
			}
		case ClassHoistDirect:
			for _, n := range ci.Item.ImportedNames {
				set, ok := plainStdlib[n.Module]
				if !ok {
					set = newNameAliasSet()
					plainStdlib[n.Module] = set
					plainOrder = append(plainOrder, n.Module)
				}
				set.add(n.Module, n.Alias)
			}
		}
	}

	if future.len() > 0 {
		c.prog.insert(&pyast.ImportFrom{Module: "__future__", Names: aliasesFor(future.sorted(), nil)})
	}

	sort.Strings(fromOrder)
	for _, mod := range fromOrder {
		set := fromStdlib[mod]
		// A bare `import X` hoisted alongside a `from X import ...` is
		// redundant once any alias binds X itself; since plain imports
		// never alias to a from-import's names, we only dedup the
		// reverse direction: drop plainStdlib[mod] if fromStdlib has it,
		// merging any distinct aliases of X into the from-import's
		// module access is unnecessary because nothing in the bundle
		// depends on the bare "X" binding once it is never referenced.
		delete(plainStdlib, mod)
		c.prog.insert(&pyast.ImportFrom{Module: mod, Names: set.sortedAliases()})
	}

	sort.Strings(plainOrder)
	for _, mod := range plainOrder {
		set, ok := plainStdlib[mod]
		if !ok {
			continue // deduped against a from-import of the same module
		}
		c.prog.insert(&pyast.Import{Names: set.sortedAliases()})
	}

	return len(c.nsModules) > 0
}

var pyastImportTypes = pyast.Import{Names: []pyast.Alias{{Name: "types", Local: "types"}}}

// stringSet and nameAliasSet are tiny deterministic-order collectors
// local to hoisting; itemgraph already has an equivalent private `set`
// but it isn't exported, so hoisting keeps its own minimal copy sized to
// exactly what merging import groups needs.

type stringSet struct {
	m map[string]bool
}

func newStringSet() *stringSet { return &stringSet{m: make(map[string]bool)} }
func (s *stringSet) add(v string) {
	if v != "" {
		s.m[v] = true
	}
}
func (s *stringSet) len() int { return len(s.m) }
func (s *stringSet) sorted() []string {
	out := make([]string, 0, len(s.m))
	for v := range s.m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// nameAliasSet merges (name, alias) pairs for one module's hoisted
// from-import or import statement, deduplicating identical bindings while
// keeping every distinct alias.
type nameAliasSet struct {
	seen    map[string]bool
	aliases []pyast.Alias
}

func newNameAliasSet() *nameAliasSet { return &nameAliasSet{seen: make(map[string]bool)} }

func (s *nameAliasSet) add(name, alias string) {
	key := name + "\x00" + alias
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	local := alias
	if local == "" {
		local = name
	}
	s.aliases = append(s.aliases, pyast.Alias{Name: name, AsOf: alias, Local: local})
}

func (s *nameAliasSet) sortedAliases() []pyast.Alias {
	out := make([]pyast.Alias, len(s.aliases))
	copy(out, s.aliases)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].AsOf < out[j].AsOf
	})
	return out
}

func aliasesFor(names []string, _ *itemgraph.Item) []pyast.Alias {
	out := make([]pyast.Alias, len(names))
	for i, n := range names {
		out[i] = pyast.Alias{Name: n, Local: n}
	}
	return out
}

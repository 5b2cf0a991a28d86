// Package symbolorigin traces every import/re-export binding to its
// ultimate defining binding (spec.md §4.6). Grounded on the teacher's
// internal/interproc/fixpoint.go worklist style (seed, pop, follow one
// hop, record, repeat) but this trace is a single pass per binding with
// cycle short-circuiting rather than an iterate-to-fixpoint lattice join:
// spec.md's "Open Question" explicitly authorizes the cheaper one-pass
// behavior over a fully transitive fixed point.
package symbolorigin

import (
	"github.com/gocribo/cribo/internal/registry"
	"github.com/gocribo/cribo/internal/semantic"
)

// WholeModule is the sentinel BindingId used as the second component of a
// GlobalBindingId that names "the module object itself", for `import M`
// style bindings which don't trace to one particular symbol (spec.md
// §4.6 step 1).
const WholeModule semantic.BindingId = -2

// ModuleResolver maps a dotted module name to its registered id, as seen
// from the perspective of import resolution (the same view
// internal/resolver's FirstParty classification produces).
type ModuleResolver func(name string) (registry.ModuleId, bool)

// Tracer computes the symbol-origin map over every registered module.
type Tracer struct {
	reg      *registry.Registry
	provider *semantic.Provider
	resolve  ModuleResolver
}

// New builds a Tracer. resolve must map a canonical dotted module name
// (the qualified target of an import) to its ModuleId among first-party
// modules; it should return false for stdlib/third-party targets.
func New(reg *registry.Registry, provider *semantic.Provider, resolve ModuleResolver) *Tracer {
	return &Tracer{reg: reg, provider: provider, resolve: resolve}
}

// Trace returns the origin map: for every import/re-export binding in every
// registered module, the GlobalBindingId of its ultimate defining binding.
// Entries that cannot be resolved (missing source module, missing name) are
// simply absent — spec.md §4.6 step 3 treats that as "assumed external".
func (t *Tracer) Trace() map[semantic.GlobalBindingId]semantic.GlobalBindingId {
	origins := make(map[semantic.GlobalBindingId]semantic.GlobalBindingId)

	for _, id := range t.reg.IDs() {
		model, ok := t.provider.ModelFor(id)
		if !ok {
			continue
		}
		for _, b := range model.Bindings {
			if b.Kind != semantic.KindImport && b.Kind != semantic.KindFromImport {
				continue
			}
			gid := semantic.GlobalBindingId{Module: int(id), Binding: b.ID}
			if origin, ok := t.traceOne(id, b, map[semantic.GlobalBindingId]bool{gid: true}); ok {
				origins[gid] = origin
			}
		}
	}
	return origins
}

// traceOne follows one binding to its ultimate source, per spec.md §4.6.
// visited guards against cycles: a repeated GlobalBindingId in the chain
// short-circuits to that binding itself rather than looping forever.
func (t *Tracer) traceOne(moduleID registry.ModuleId, b semantic.Binding, visited map[semantic.GlobalBindingId]bool) (semantic.GlobalBindingId, bool) {
	if b.Kind == semantic.KindImport {
		// "import M" -- the qualified name is the dotted target itself.
		targetID, ok := t.resolve(b.QualifiedName)
		if !ok {
			return semantic.GlobalBindingId{}, false
		}
		return semantic.GlobalBindingId{Module: int(targetID), Binding: WholeModule}, true
	}

	// FromImport: QualifiedName is "<module>.<name>".
	modName, symName := splitQualified(b.QualifiedName)
	targetID, ok := t.resolve(modName)
	if !ok {
		return semantic.GlobalBindingId{}, false
	}
	targetModel, ok := t.provider.ModelFor(targetID)
	if !ok {
		return semantic.GlobalBindingId{}, false
	}
	def, ok := targetModel.ModuleScopeBinding(symName)
	if !ok {
		return semantic.GlobalBindingId{}, false
	}

	defGID := semantic.GlobalBindingId{Module: int(targetID), Binding: def.ID}
	if def.Kind != semantic.KindImport && def.Kind != semantic.KindFromImport {
		return defGID, true
	}
	if visited[defGID] {
		// Cycle: short-circuit to the repeated binding itself.
		return defGID, true
	}
	visited[defGID] = true
	return t.traceOne(targetID, def, visited)
}

func splitQualified(q string) (module, name string) {
	i := lastDot(q)
	if i < 0 {
		return "", q
	}
	return q[:i], q[i+1:]
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

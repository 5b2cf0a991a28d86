// Package semantic builds the per-module binding/reference tables spec.md
// §4.4 calls the "semantic model": a scope tree, a table of bindings, and
// the references that resolve to them. It is read-only once built and
// cached per module by a Provider, following the lazy-and-idempotent cache
// shape the teacher's internal/interproc cache.go uses for call-graph
// summaries (a map guarded by a single construction point, never mutated
// after first fill).
package semantic

import "github.com/gocribo/cribo/internal/pyast"

// BindingId identifies one binding within a single module.
type BindingId int

// GlobalBindingId identifies a symbol anywhere in the bundle.
type GlobalBindingId struct {
	Module  int // registry.ModuleId, kept as a bare int to avoid an import cycle
	Binding BindingId
}

// Kind classifies what introduced a binding.
type Kind int

const (
	KindImport Kind = iota
	KindFromImport
	KindFunctionDef
	KindClassDef
	KindAssignment
	KindParameter
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
	case KindParameter:
		return "Parameter"
	default:
		return "Unknown"
	}
}

// Binding is one name bound somewhere in a module.
type Binding struct {
	ID            BindingId
	Name          string
	Kind          Kind
	QualifiedName string // for Import/FromImport: the dotted source module (+".name" for FromImport)
	Span          pyast.Span
	ScopeID       ScopeId
}

// Reference is one use of a name; it always resolves to exactly one Binding
// (the one in scope at its location) or to none, if the name is free
// (assumed external/builtin).
type Reference struct {
	Name    string
	Span    pyast.Span
	Binding BindingId // -1 if unresolved
}

// ScopeKind distinguishes the four scope flavors the model tracks.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeClass
	ScopeComprehension
)

// ScopeId identifies one scope within a module.
type ScopeId int

// Scope is one lexical scope: a function, a class body, a comprehension, or
// the module's global scope.
type Scope struct {
	ID     ScopeId
	Kind   ScopeKind
	Parent ScopeId // -1 for the global scope
	Name   string  // function/class name; "" for global/comprehension
}

// Model is the read-only semantic model for one module.
type Model struct {
	ModuleName string
	Scopes     []Scope
	Bindings   []Binding
	References []Reference

	byName map[string][]BindingId // all bindings of a name, across scopes, insertion order
}

// GlobalScope returns scope 0, which always exists.
func (m *Model) GlobalScope() ScopeId { return 0 }

// Binding returns the binding with the given id.
func (m *Model) Binding(id BindingId) (Binding, bool) {
	if int(id) < 0 || int(id) >= len(m.Bindings) {
		return Binding{}, false
	}
	return m.Bindings[id], true
}

// GlobalBindingsNamed returns every binding (in any scope) bound to name, in
// declaration order. Used by symbol-origin tracing to find a module's
// top-level definition of a name.
func (m *Model) GlobalBindingsNamed(name string) []Binding {
	var out []Binding
	for _, id := range m.byName[name] {
		out = append(out, m.Bindings[id])
	}
	return out
}

// ModuleScopeBinding returns the binding for name in the global scope, i.e.
// the module's own top-level definition, if any.
func (m *Model) ModuleScopeBinding(name string) (Binding, bool) {
	for _, id := range m.byName[name] {
		b := m.Bindings[id]
		if b.ScopeID == m.GlobalScope() {
			return b, true
		}
	}
	return Binding{}, false
}

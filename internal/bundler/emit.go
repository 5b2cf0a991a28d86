package bundler

import (
	"sort"

	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
	"github.com/gocribo/cribo/internal/semantic"
)

// namespaceVar returns the local variable name a types.SimpleNamespace
// stand-in for module is bound to. Grounded on internal/registry's
// SyntheticName shape (sanitize, then prefix) so namespace variables never
// collide with a real Python identifier a module defines.
func (c *compiler) namespaceVar(module registry.ModuleId) string {
	name := c.in.CanonicalNames[module]
	return "__cribo_ns_" + registry.Sanitize(name)
}

// emitModule copies module's surviving non-import items into the bundle,
// in source order, and — if module is a namespace target — follows them
// with a types.SimpleNamespace() object carrying every live public export,
// per the S1/S2/S3 scenario precedence over §4.10's general prose: a
// namespace is only materialized for modules actually imported as a whole
// somewhere in the program, never for a module that is only ever an
// inline (`from M import x`) source.
func (c *compiler) emitModule(m registry.ModuleId) {
	g := c.in.ItemGraphs[m]
	if g == nil {
		return
	}

	items := append([]*itemgraph.Item(nil), g.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].StatementIndex < items[j].StatementIndex })

	for _, it := range items {
		if it.Kind == itemgraph.KindImport || it.Kind == itemgraph.KindFromImport {
			continue
		}
		if !c.isLive(m, it.ID) {
			continue
		}
		c.prog.copy(m, it.ID)
	}

	if !c.nsModules[m] {
		return
	}

	ns := c.namespaceVar(m)
	c.prog.insert(&pyast.Assign{
		Targets: []pyast.Expr{&pyast.Name{Id: ns}},
		Value:   &pyast.Call{Func: &pyast.Attribute{Value: &pyast.Name{Id: "types"}, Attr: "SimpleNamespace"}},
	})

	for _, sym := range c.in.Exports[m].Names {
		it, ok := g.FindBySymbol(sym)
		if ok && !c.isLive(m, it.ID) {
			continue
		}
		local := c.renamedName(m, sym)
		c.prog.insert(&pyast.Assign{
			Targets: []pyast.Expr{&pyast.Attribute{Value: &pyast.Name{Id: ns}, Attr: sym}},
			Value:   &pyast.Name{Id: local},
		})
	}
}

func (c *compiler) isLive(m registry.ModuleId, item itemgraph.ItemId) bool {
	if c.in.TreeShake == nil {
		return true
	}
	return c.in.TreeShake.IsLive(m, item)
}

// renamedName returns the name sym is actually emitted under in module m,
// after conflict renaming: the rename map's entry for that binding's
// definition span, or sym unchanged if it was never renamed.
func (c *compiler) renamedName(m registry.ModuleId, sym string) string {
	model, ok := c.in.Semantic.ModelFor(m)
	if !ok {
		return sym
	}
	b, ok := model.ModuleScopeBinding(sym)
	if !ok {
		return sym
	}
	if renamed, ok := c.prog.Renames[RenameKey{Module: m, Span: b.Span}]; ok {
		return renamed
	}
	return sym
}

// buildRenames detects public-symbol name collisions across every module
// that is being copied into the bundle (namespace targets and inline
// sources alike) and assigns disambiguating names to every loser, per
// spec.md §4.10's rename step. The module earliest in topological order
// keeps its original name; every later module defining the same name is
// renamed to "<name>_<sanitized module name>". Rename entries are then
// recorded at the definition's own span and at every reference — in the
// defining module or anywhere else — that symbolorigin traces back to
// that definition, so a single pass over the rename map during VM copy
// rewrites both a binding's declaration and every one of its uses.
func (c *compiler) buildRenames() {
	order := c.namespaceEmissionOrder()

	type owner struct {
		module  registry.ModuleId
		binding semantic.Binding
	}
	byName := make(map[string][]owner)

	for _, m := range order {
		model, ok := c.in.Semantic.ModelFor(m)
		if !ok {
			continue
		}
		for _, sym := range c.in.Exports[m].Names {
			b, ok := model.ModuleScopeBinding(sym)
			if !ok {
				continue
			}
			byName[sym] = append(byName[sym], owner{module: m, binding: b})
		}
	}

	for name, owners := range byName {
		if len(owners) < 2 {
			continue
		}
		for i, own := range owners {
			if i == 0 {
				continue // first in topological order keeps the original name
			}
			newName := name + "_" + registry.Sanitize(c.in.CanonicalNames[own.module])
			c.applyRename(own.module, own.binding, newName)
		}
	}
}

// applyRename records newName at binding's own definition span, at every
// reference to it within its defining module, and at every reference in
// any other module that symbolorigin.Trace resolved back to this binding.
func (c *compiler) applyRename(module registry.ModuleId, b semantic.Binding, newName string) {
	c.prog.rename(module, b.Span, newName)

	model, ok := c.in.Semantic.ModelFor(module)
	if ok {
		for _, ref := range model.References {
			if ref.Binding == b.ID {
				c.prog.rename(module, ref.Span, newName)
			}
		}
	}

	target := semantic.GlobalBindingId{Module: int(module), Binding: b.ID}
	for gid, origin := range c.in.Origins {
		if origin != target {
			continue
		}
		refModule := registry.ModuleId(gid.Module)
		refModel, ok := c.in.Semantic.ModelFor(refModule)
		if !ok {
			continue
		}
		for _, ref := range refModel.References {
			if ref.Binding == gid.Binding {
				c.prog.rename(refModule, ref.Span, newName)
			}
		}
	}
}

// emitEntryBody copies the entry module's own top-level statements in
// source order, skipping every import item already handled by hoisting,
// namespace, or inline emission, but keeping third-party imports
// untouched in place (spec.md §4.10 step 4 / §6 output ordering). The
// entry's module docstring, if any, is preserved as the very first
// statement.
func (c *compiler) emitEntryBody() {
	g := c.in.ItemGraphs[c.in.Entry]
	if g == nil {
		return
	}

	if c.in.EntryDocstring != "" {
		c.prog.insert(&pyast.ExprStmt{Value: &pyast.Constant{Kind: pyast.ConstStr, Value: c.in.EntryDocstring}})
	}

	skip := make(map[itemgraph.ItemId]bool)
	for _, ci := range c.in.Classified {
		if ci.Module != c.in.Entry {
			continue
		}
		switch ci.Class {
		case ClassHoistDirect, ClassHoistFrom, ClassEmulateNamespace, ClassInline:
			skip[ci.Item.ID] = true
		}
	}

	items := append([]*itemgraph.Item(nil), g.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].StatementIndex < items[j].StatementIndex })

	for _, it := range items {
		if skip[it.ID] {
			continue
		}
		if !c.isLive(c.in.Entry, it.ID) {
			continue
		}
		c.prog.copy(c.in.Entry, it.ID)
	}
}

// Package vm is the bundle VM of spec.md §4.11: a deliberately dumb
// interpreter that walks a bundler.Program's instruction stream and
// produces the finished module AST. It never re-analyzes anything —
// every decision (what survives, what gets renamed, what order things go
// in) was already made by internal/bundler. Grounded on the teacher's
// internal/ir builder shape: a small struct holding accumulated state,
// stepped through linearly, with no backtracking.
package vm

import (
	"fmt"

	"github.com/gocribo/cribo/internal/bundler"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

// Input bundles what the VM needs to execute a Program: the original
// per-module ASTs (to fetch the statement a CopyStatement points at) and
// the item graphs (to translate an ItemId into a Body index).
type Input struct {
	Program    *bundler.Program
	Sources    map[registry.ModuleId]*pyast.Module
	ItemGraphs map[registry.ModuleId]*itemgraph.ModuleDepGraph
}

// Execute runs program.Steps in order and returns the finished module.
func Execute(in Input) (*pyast.Module, error) {
	v := &vm{in: in}
	out := &pyast.Module{}
	for _, step := range in.Program.Steps {
		switch s := step.(type) {
		case bundler.InsertStatement:
			out.Body = append(out.Body, cloneStmt(s.Stmt, 0, nil))
		case bundler.CopyStatement:
			stmt, err := v.fetch(s)
			if err != nil {
				return nil, err
			}
			renamed := cloneStmt(stmt, s.SourceModule, in.Program.Renames)
			out.Body = append(out.Body, renamed)
		default:
			return nil, fmt.Errorf("vm: unknown instruction %T", step)
		}
	}
	return out, nil
}

type vm struct {
	in Input
}

func (v *vm) fetch(s bundler.CopyStatement) (pyast.Stmt, error) {
	mod := v.in.Sources[s.SourceModule]
	if mod == nil {
		return nil, fmt.Errorf("vm: no source AST registered for module %v", s.SourceModule)
	}
	g := v.in.ItemGraphs[s.SourceModule]
	if g == nil {
		return nil, fmt.Errorf("vm: no item graph for module %v", s.SourceModule)
	}
	item, ok := g.Get(s.ItemID)
	if !ok {
		return nil, fmt.Errorf("vm: module %v has no item %v", s.SourceModule, s.ItemID)
	}
	if item.StatementIndex < 0 || item.StatementIndex >= len(mod.Body) {
		return nil, fmt.Errorf("vm: module %v item %v statement index %d out of range", s.SourceModule, s.ItemID, item.StatementIndex)
	}
	return mod.Body[item.StatementIndex], nil
}

// renameLookup returns the new name for (module, span), if renames holds
// one. module 0 with a nil renames map (synthetic Insert statements) never
// matches, since spans are only meaningful relative to an original source
// module.
func renameLookup(renames map[bundler.RenameKey]string, module registry.ModuleId, span pyast.Span) (string, bool) {
	if renames == nil {
		return "", false
	}
	name, ok := renames[bundler.RenameKey{Module: module, Span: span}]
	return name, ok
}

// Package bundler is the stateful compiler of spec.md §4.10: it consumes
// the outputs of every earlier analysis stage (item graphs, semantic
// models, tree-shake results, symbol origins, potential exports, import
// resolution and cycle classification) and emits a BundleProgram — a
// linear instruction stream the VM (internal/vm) executes to produce the
// final module AST. Grounded on the teacher's internal/interproc
// topological-ordering + lattice-join shape generalized from "in what
// order do I visit call-graph nodes" to "in what order do I emit bundle
// statements", and on internal/ir's small-struct-plus-builder shape for
// the instruction stream itself.
package bundler

import (
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

// Instruction is satisfied by every step of a BundleProgram.
type Instruction interface{ instr() }

// InsertStatement splices a synthetic AST statement verbatim.
type InsertStatement struct {
	Stmt pyast.Stmt
}

func (InsertStatement) instr() {}

// CopyStatement copies the statement at ItemID's StatementIndex from
// SourceModule's original AST, then applies the program's rename map.
type CopyStatement struct {
	SourceModule registry.ModuleId
	ItemID       itemgraph.ItemId
}

func (CopyStatement) instr() {}

// RenameKey is the compound key of the ast_node_renames map (spec.md
// §4.10): a specific byte range within one module's original source.
type RenameKey struct {
	Module registry.ModuleId
	Span   pyast.Span
}

// Program is the finished bundle program: an ordered instruction sequence
// plus the rename map the VM consults while copying statements.
type Program struct {
	Steps   []Instruction
	Renames map[RenameKey]string
}

func (p *Program) emit(i Instruction) { p.Steps = append(p.Steps, i) }

func (p *Program) insert(stmt pyast.Stmt) { p.emit(InsertStatement{Stmt: stmt}) }

func (p *Program) copy(module registry.ModuleId, item itemgraph.ItemId) {
	p.emit(CopyStatement{SourceModule: module, ItemID: item})
}

func (p *Program) rename(module registry.ModuleId, span pyast.Span, newName string) {
	if p.Renames == nil {
		p.Renames = make(map[RenameKey]string)
	}
	p.Renames[RenameKey{Module: module, Span: span}] = newName
}

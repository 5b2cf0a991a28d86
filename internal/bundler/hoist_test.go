package bundler

import (
	"testing"

	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

func TestEmitHoistedMergesAndSortsFuture(t *testing.T) {
	c := &compiler{prog: &Program{Renames: map[RenameKey]string{}}}
	c.in.Classified = []ClassifiedImport{
		{Class: ClassHoistFrom, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "__future__", Name: "annotations"}}}},
		{Class: ClassHoistFrom, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "__future__", Name: "division"}}}},
		{Class: ClassHoistDirect, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "sys"}}}},
		{Class: ClassHoistDirect, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "os"}}}},
		{Class: ClassHoistFrom, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "os", Name: "path"}}}},
	}
	c.nsModules = map[registry.ModuleId]bool{}

	c.emitHoisted()

	if len(c.prog.Steps) != 3 {
		t.Fatalf("expected 3 hoisted statements (future, os-from, sys-import), got %d: %+v", len(c.prog.Steps), c.prog.Steps)
	}

	future, ok := c.prog.Steps[0].(InsertStatement).Stmt.(*pyast.ImportFrom)
	if !ok || future.Module != "__future__" {
		t.Fatalf("expected first statement to be the merged __future__ import, got %#v", c.prog.Steps[0])
	}
	if len(future.Names) != 2 || future.Names[0].Name != "annotations" || future.Names[1].Name != "division" {
		t.Fatalf("expected sorted merged future names, got %+v", future.Names)
	}

	osFrom, ok := c.prog.Steps[1].(InsertStatement).Stmt.(*pyast.ImportFrom)
	if !ok || osFrom.Module != "os" {
		t.Fatalf("expected second statement to be `from os import path`, got %#v", c.prog.Steps[1])
	}

	sysImport, ok := c.prog.Steps[2].(InsertStatement).Stmt.(*pyast.Import)
	if !ok || len(sysImport.Names) != 1 || sysImport.Names[0].Name != "sys" {
		t.Fatalf("expected third statement to be `import sys` (os deduped against the from-import), got %#v", c.prog.Steps[2])
	}
}

func TestEmitHoistedDropsPlainImportCoveredByFromImport(t *testing.T) {
	c := &compiler{prog: &Program{Renames: map[RenameKey]string{}}}
	c.in.Classified = []ClassifiedImport{
		{Class: ClassHoistDirect, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "json"}}}},
		{Class: ClassHoistFrom, Item: &itemgraph.Item{ImportedNames: []itemgraph.ImportedName{{Module: "json", Name: "dumps"}}}},
	}
	c.nsModules = map[registry.ModuleId]bool{}

	c.emitHoisted()

	if len(c.prog.Steps) != 1 {
		t.Fatalf("expected the bare `import json` to be deduped away, got %d steps: %+v", len(c.prog.Steps), c.prog.Steps)
	}
	if _, ok := c.prog.Steps[0].(InsertStatement).Stmt.(*pyast.ImportFrom); !ok {
		t.Fatalf("expected the surviving statement to be the from-import, got %#v", c.prog.Steps[0])
	}
}

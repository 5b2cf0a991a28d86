package treeshake

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gocribo/cribo/internal/exports"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

const (
	mainID registry.ModuleId = 0
	utilID registry.ModuleId = 1
)

func TestRunDropsUnusedSymbols(t *testing.T) {
	// util.py defines used, unused_fn, unused_cls; main.py uses only `used`.
	utilMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "used"},
		&pyast.FunctionDef{Name: "unused_fn"},
		&pyast.ClassDef{Name: "unused_cls"},
	}}
	mainMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ImportFrom{Module: "util", Names: []pyast.Alias{{Name: "used"}}},
		&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Name{Id: "used"}}},
	}}

	utilGraph := itemgraph.Build("util", utilMod)
	mainGraph := itemgraph.Build("main", mainMod)

	in := Input{
		Entry: mainID,
		ItemGraphs: map[registry.ModuleId]*itemgraph.ModuleDepGraph{
			mainID: mainGraph,
			utilID: utilGraph,
		},
		Exports: map[registry.ModuleId]exports.Result{
			utilID: exports.Compute(utilGraph),
		},
		Imports: ImportTable{
			mainID: {"used": {Module: "util", Name: "used"}},
		},
		ResolveModule: func(name string) (registry.ModuleId, bool) {
			if name == "util" {
				return utilID, true
			}
			return 0, false
		},
	}

	res := Run(in)

	usedItem, _ := utilGraph.FindBySymbol("used")
	if !res.IsLive(utilID, usedItem.ID) {
		t.Fatalf("expected `used` to be live")
	}
	unusedFn, _ := utilGraph.FindBySymbol("unused_fn")
	if res.IsLive(utilID, unusedFn.ID) {
		t.Fatalf("expected unused_fn to be dropped")
	}
	unusedCls, _ := utilGraph.FindBySymbol("unused_cls")
	if res.IsLive(utilID, unusedCls.ID) {
		t.Fatalf("expected unused_cls to be dropped")
	}
}

func TestRunKeepsModuleLevelSideEffects(t *testing.T) {
	utilMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: &pyast.Call{Func: &pyast.Name{Id: "print"}, Args: []pyast.Expr{&pyast.Constant{Kind: pyast.ConstStr, Value: `"hi"`}}}},
	}}
	mainMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Import{Names: []pyast.Alias{{Name: "util", Local: "util"}}},
	}}

	utilGraph := itemgraph.Build("util", utilMod)
	mainGraph := itemgraph.Build("main", mainMod)

	in := Input{
		Entry: mainID,
		ItemGraphs: map[registry.ModuleId]*itemgraph.ModuleDepGraph{
			mainID: mainGraph,
			utilID: utilGraph,
		},
		Exports: map[registry.ModuleId]exports.Result{
			utilID: exports.Compute(utilGraph),
		},
		Imports: ImportTable{},
		ResolveModule: func(name string) (registry.ModuleId, bool) {
			if name == "util" {
				return utilID, true
			}
			return 0, false
		},
	}

	res := Run(in)
	printStmt := utilGraph.Items[0]
	if !res.IsLive(utilID, printStmt.ID) {
		t.Fatalf("expected module-level side-effect statement to stay live when imported as whole")
	}
}

func TestRunRemovesModulesWithNoLiveItems(t *testing.T) {
	// dead.py is never imported by anything reachable from main.py, so it
	// should not survive shaking at all. main.py's only statement is a bare
	// literal with no side effects, so none of its items survive either and
	// it is listed as removed too.
	deadMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{Name: "never_called"},
	}}
	mainMod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.ExprStmt{Value: &pyast.Constant{Kind: pyast.ConstNone}},
	}}

	deadGraph := itemgraph.Build("dead", deadMod)
	mainGraph := itemgraph.Build("main", mainMod)
	const deadID registry.ModuleId = 2

	in := Input{
		Entry: mainID,
		ItemGraphs: map[registry.ModuleId]*itemgraph.ModuleDepGraph{
			mainID: mainGraph,
			deadID: deadGraph,
		},
		Exports:       map[registry.ModuleId]exports.Result{},
		Imports:       ImportTable{},
		ResolveModule: func(name string) (registry.ModuleId, bool) { return 0, false },
	}

	res := Run(in)
	want := []registry.ModuleId{mainID, deadID}
	if diff := cmp.Diff(want, res.RemovedModules); diff != "" {
		t.Fatalf("RemovedModules mismatch (-want +got):\n%s", diff)
	}
}

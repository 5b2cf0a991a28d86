// Package exports computes, per module, the set of names that could be
// re-exported (spec.md §4.7): the potential-exports map. Grounded on the
// teacher's internal/capability pattern-set shape (a static default
// overridden by an explicit, statically-analyzable list) adapted from
// capability-name sets to Python export-name sets.
package exports

import (
	"strings"

	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/pyast"
)

// Result is one module's export surface.
type Result struct {
	// Names is the potentially-exportable set, insertion-ordered.
	Names []string
	// ExplicitAll is true when a statically-analyzable `__all__ = [...]`
	// overrode the inferred set.
	ExplicitAll bool
	// Dynamic is true when `__all__` is mutated or assigned from a
	// non-literal expression: the module's exports are opaque and it must
	// be forced onto the wrapper/namespace path (spec.md §4.7, §9).
	Dynamic bool
}

// Compute derives the potential-exports map for one module from its item
// graph.
func Compute(g *itemgraph.ModuleDepGraph) Result {
	var inferred []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if isPrivate(name) {
			return
		}
		seen[name] = true
		inferred = append(inferred, name)
	}

	var dynamic bool
	var explicitAll []string
	haveExplicitAll := false

	for _, it := range g.Items {
		switch it.Kind {
		case itemgraph.KindFunctionDef, itemgraph.KindClassDef:
			for _, n := range it.DefinedSymbols {
				add(n)
			}
		case itemgraph.KindAssignment:
			if assignsAll(it) {
				list, ok, isDynamic := staticAllList(it.Stmt)
				if isDynamic {
					dynamic = true
				} else if ok {
					haveExplicitAll = true
					explicitAll = list
				}
				continue
			}
			for _, n := range it.DefinedSymbols {
				add(n)
			}
		case itemgraph.KindImport, itemgraph.KindFromImport:
			for _, n := range it.DefinedSymbols {
				add(n)
			}
		case itemgraph.KindExpression:
			if callsAllMutator(it.Stmt) {
				dynamic = true
			}
		default:
			// AugAssign to __all__ (+=) is folded into KindAssignment by
			// itemgraph; control-flow items never define __all__ directly
			// and aren't inspected here.
		}

		if it.Kind != itemgraph.KindAssignment && augAssignsAll(it) {
			dynamic = true
		}
	}

	if haveExplicitAll && !dynamic {
		return Result{Names: explicitAll, ExplicitAll: true}
	}
	return Result{Names: inferred, Dynamic: dynamic}
}

// isPrivate reports whether name is excluded from the inferred export set:
// anything starting with "_" except dunders (e.g. __version__).
func isPrivate(name string) bool {
	if !strings.HasPrefix(name, "_") {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") && len(name) > 4 {
		return false
	}
	return true
}

func assignsAll(it *itemgraph.Item) bool {
	for _, n := range it.DefinedSymbols {
		if n == "__all__" {
			return true
		}
	}
	return false
}

// callsAllMutator reports whether stmt is an expression statement calling
// `__all__.append(...)` or `__all__.extend(...)`, which makes the export
// set opaque (spec.md §4.7).
func callsAllMutator(stmt pyast.Stmt) bool {
	expr, ok := stmt.(*pyast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := expr.Value.(*pyast.Call)
	if !ok {
		return false
	}
	attr, ok := call.Func.(*pyast.Attribute)
	if !ok {
		return false
	}
	if attr.Attr != "append" && attr.Attr != "extend" {
		return false
	}
	name, ok := attr.Value.(*pyast.Name)
	return ok && name.Id == "__all__"
}

func augAssignsAll(it *itemgraph.Item) bool {
	for _, n := range it.WriteVars {
		if n == "__all__" {
			return true
		}
	}
	return len(it.WriteVars) == 1 && it.WriteVars[0] == "__all__"
}

// staticAllList inspects an `__all__ = <expr>` assignment. ok is true iff
// the RHS is a list/tuple of string literals (a statically-analyzable
// `__all__`). isDynamic is true iff the RHS is some other expression,
// meaning the export set can't be determined statically.
func staticAllList(stmt pyast.Stmt) (list []string, ok bool, isDynamic bool) {
	assign, isAssign := stmt.(*pyast.Assign)
	if !isAssign {
		return nil, false, true
	}
	return literalStringList(assign.Value)
}

func literalStringList(e pyast.Expr) (list []string, ok bool, isDynamic bool) {
	var elts []pyast.Expr
	switch v := e.(type) {
	case *pyast.ListExpr:
		elts = v.Elts
	case *pyast.Tuple:
		elts = v.Elts
	default:
		return nil, false, true
	}
	out := make([]string, 0, len(elts))
	for _, el := range elts {
		c, isConst := el.(*pyast.Constant)
		if !isConst || c.Kind != pyast.ConstStr {
			return nil, false, true
		}
		out = append(out, unquote(c.Value))
	}
	return out, true, false
}

// unquote strips the surrounding quote characters from a literal string
// token's raw text.
func unquote(raw string) string {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '\'' || first == '"') && first == last {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

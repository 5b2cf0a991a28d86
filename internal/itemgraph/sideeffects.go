package itemgraph

import "strings"

// opaqueStdlibModules mirrors spec.md §4.3's "side-effect opacity list":
// modules whose mere import is assumed to touch process-global state, so a
// stdlib import of them is never hoistable as side-effect-free. Any module
// name starting with "_" is opaque regardless of this list.
var opaqueStdlibModules = map[string]bool{
	"os":              true,
	"sys":             true,
	"logging":         true,
	"warnings":        true,
	"locale":          true,
	"platform":        true,
	"random":          true,
	"threading":       true,
	"multiprocessing": true,
	"atexit":          true,
	"signal":          true,
	"site":            true,
}

// HasOpaqueSideEffects reports whether importing module unconditionally is
// assumed to have process-level side effects.
func HasOpaqueSideEffects(module string) bool {
	top := module
	if i := strings.IndexByte(top, '.'); i >= 0 {
		top = top[:i]
	}
	if strings.HasPrefix(top, "_") {
		return true
	}
	return opaqueStdlibModules[top]
}

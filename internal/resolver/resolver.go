// Package resolver classifies and locates Python imports. It plays the
// role the teacher's internal/graph.Load + internal/analyzer.ForLang play
// together: given a requesting module and an import target, decide what
// kind of thing is being imported and, for first-party/stdlib imports,
// find a file — except here there is no `go list` subprocess to shell out
// to; the whole thing is a pure filesystem walk.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocribo/cribo/internal/cerr"
)

// Kind classifies an import target.
type Kind int

const (
	StandardLibrary Kind = iota
	FirstParty
	ThirdParty
)

func (k Kind) String() string {
	switch k {
	case StandardLibrary:
		return "stdlib"
	case FirstParty:
		return "first-party"
	default:
		return "third-party"
	}
}

// Resolution is the result of resolving one import.
type Resolution struct {
	Kind       Kind
	ModuleName string // canonical dotted name, resolved for relative imports
	FilePath   string // "" unless Kind == FirstParty and a file was found
}

// Resolver resolves import targets against a fixed, ordered list of search
// roots (configured source roots first, then PYTHONPATH entries).
type Resolver struct {
	roots         []string
	pythonVersion int
	thirdParty    map[string]bool // accumulated as resolution proceeds
}

// New builds a Resolver. srcRoots are tried in declaration order; PYTHONPATH
// entries (split on the OS list separator) are appended after them, with
// duplicates (after canonicalization) suppressed while preserving first
// occurrence, and non-existent entries silently ignored.
func New(srcRoots []string, pythonPath string, pythonVersion int) *Resolver {
	return &Resolver{
		roots:         buildRoots(srcRoots, pythonPath),
		pythonVersion: pythonVersion,
		thirdParty:    make(map[string]bool),
	}
}

func buildRoots(srcRoots []string, pythonPath string) []string {
	var candidates []string
	candidates = append(candidates, srcRoots...)
	if pythonPath != "" {
		candidates = append(candidates, strings.Split(pythonPath, string(os.PathListSeparator))...)
	}

	seen := make(map[string]bool)
	var roots []string
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		seen[abs] = true
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		roots = append(roots, abs)
	}
	return roots
}

// Roots returns the resolver's canonicalized, deduplicated search roots.
func (r *Resolver) Roots() []string { return r.roots }

// ResolveAbsolute resolves a non-relative dotted import like "pkg.sub.mod".
func (r *Resolver) ResolveAbsolute(moduleName string) (Resolution, error) {
	if IsStandardLibrary(moduleName, r.pythonVersion) {
		return Resolution{Kind: StandardLibrary, ModuleName: moduleName}, nil
	}

	if path, ok := r.findFile(moduleName); ok {
		return Resolution{Kind: FirstParty, ModuleName: moduleName, FilePath: path}, nil
	}

	r.thirdParty[topLevel(moduleName)] = true
	return Resolution{Kind: ThirdParty, ModuleName: moduleName}, nil
}

// ResolveRelative resolves a "from . import x" / "from ..pkg import y" style
// import. level is the number of leading dots; requesterName is the
// requesting module's canonical dotted name.
func (r *Resolver) ResolveRelative(requesterName string, level int, moduleName string) (Resolution, error) {
	parts := strings.Split(requesterName, ".")
	if level > len(parts) {
		return Resolution{}, &cerr.InvalidRelativeImportError{Requester: requesterName, Level: level}
	}
	base := parts[:len(parts)-level]

	var full string
	if moduleName == "" {
		full = strings.Join(base, ".")
	} else {
		full = strings.Join(append(append([]string{}, base...), strings.Split(moduleName, ".")...), ".")
	}

	if path, ok := r.findFile(full); ok {
		return Resolution{Kind: FirstParty, ModuleName: full, FilePath: path}, nil
	}
	return Resolution{}, &cerr.ResolutionError{Module: full, Requester: requesterName}
}

// findFile searches roots in order for <root>/a/b/c.py or
// <root>/a/b/c/__init__.py.
func (r *Resolver) findFile(dotted string) (string, bool) {
	rel := strings.ReplaceAll(dotted, ".", string(filepath.Separator))
	for _, root := range r.roots {
		asFile := filepath.Join(root, rel+".py")
		if info, err := os.Stat(asFile); err == nil && !info.IsDir() {
			return asFile, true
		}
		asPkg := filepath.Join(root, rel, "__init__.py")
		if info, err := os.Stat(asPkg); err == nil && !info.IsDir() {
			return asPkg, true
		}
	}
	return "", false
}

func topLevel(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}

// ThirdPartyImports returns every distinct top-level third-party import
// name encountered so far, sorted. This supplements spec.md: the original
// Rust implementation tracks these to let a caller emit a requirements
// list; spec.md's distillation only says third-party imports "remain as
// runtime imports" without tracking them for reporting.
func (r *Resolver) ThirdPartyImports() []string {
	out := make([]string, 0, len(r.thirdParty))
	for name := range r.thirdParty {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Package pipeline orchestrates every analysis stage into the single
// end-to-end operation spec.md §2 describes: parse the entry module and
// everything it reaches, analyze it, shake it, compile a bundle program,
// run the bundle VM, and pretty-print the result. Grounded on the
// teacher's cmd/gorisk root command, which wires its own stages (load,
// analyze, report) behind one RunE; here the wiring is a library function
// so cmd/cribo stays a thin flag-parsing shell.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gocribo/cribo/internal/bundler"
	"github.com/gocribo/cribo/internal/cerr"
	"github.com/gocribo/cribo/internal/clog"
	"github.com/gocribo/cribo/internal/cycles"
	"github.com/gocribo/cribo/internal/depgraph"
	"github.com/gocribo/cribo/internal/exports"
	"github.com/gocribo/cribo/internal/importscan"
	"github.com/gocribo/cribo/internal/itemgraph"
	"github.com/gocribo/cribo/internal/parser"
	"github.com/gocribo/cribo/internal/parser/treesitter"
	"github.com/gocribo/cribo/internal/printer"
	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
	"github.com/gocribo/cribo/internal/resolver"
	"github.com/gocribo/cribo/internal/semantic"
	"github.com/gocribo/cribo/internal/symbolorigin"
	"github.com/gocribo/cribo/internal/treeshake"
	"github.com/gocribo/cribo/internal/vm"
)

// Options configures one bundling run (spec.md §6's CLI surface plus
// cribo.toml's keys).
type Options struct {
	Entry         string
	SrcRoots      []string
	PythonVersion int
	PythonPath    string // PYTHONPATH, split by resolver.New
}

// Result is everything a caller (cmd/cribo) needs after a successful run.
type Result struct {
	Source            string
	ThirdPartyImports []string
	Cycles            []cycles.Cycle
}

// Run executes the full pipeline and returns the bundled source text.
func Run(ctx context.Context, opts Options) (*Result, error) {
	p := newRun(opts)
	return p.execute(ctx)
}

type run struct {
	opts     Options
	res      *resolver.Resolver
	reg      *registry.Registry
	parser   parser.Parser
	roots    []string
	entryAbs string

	// resCache memoizes every (requester, module, level) resolution made
	// during discovery so the classify stage never re-resolves (and never
	// re-triggers resolver.ThirdPartyImports bookkeeping twice).
	resCache map[resolveKey]resolver.Resolution

	itemGraphs map[registry.ModuleId]*itemgraph.ModuleDepGraph
	scans      map[registry.ModuleId]*importscan.Result
	canonNames map[registry.ModuleId]string
	entryID    registry.ModuleId
}

type resolveKey struct {
	requester string
	module    string
	level     int
}

func newRun(opts Options) *run {
	return &run{
		opts:       opts,
		reg:        registry.New(),
		resCache:   make(map[resolveKey]resolver.Resolution),
		itemGraphs: make(map[registry.ModuleId]*itemgraph.ModuleDepGraph),
		scans:      make(map[registry.ModuleId]*importscan.Result),
		canonNames: make(map[registry.ModuleId]string),
	}
}

func (p *run) execute(ctx context.Context) (*Result, error) {
	entryAbs, err := filepath.Abs(p.opts.Entry)
	if err != nil {
		return nil, &cerr.ParseError{Path: p.opts.Entry, Err: err}
	}
	p.entryAbs = entryAbs

	roots := append([]string{}, p.opts.SrcRoots...)
	roots = append(roots, filepath.Dir(entryAbs))
	p.res = resolver.New(roots, p.opts.PythonPath, p.opts.PythonVersion)
	p.roots = p.res.Roots()

	tsParser, err := treesitter.New()
	if err != nil {
		return nil, fmt.Errorf("pipeline: constructing parser: %w", err)
	}
	defer tsParser.Close()
	p.parser = tsParser

	if err := p.discover(ctx, entryAbs); err != nil {
		return nil, err
	}

	entry, ok := p.reg.GetByPath(entryAbs)
	if !ok {
		return nil, &cerr.ResolutionError{Module: entryAbs, Requester: "<entry>"}
	}
	p.entryID = entry.ID

	g := p.buildDepGraph()
	cycleList, err := p.analyzeCycles(g)
	if err != nil {
		return nil, err
	}

	provider := semantic.NewProvider(p.reg)
	exportsByModule := p.computeExports()
	origins := symbolorigin.New(p.reg, provider, p.resolveModuleID).Trace()

	shakeResult := treeshake.Run(treeshake.Input{
		Entry:         p.entryID,
		ItemGraphs:    p.itemGraphs,
		Exports:       exportsByModule,
		Imports:       p.buildImportTable(),
		ResolveModule: p.resolveModuleID,
	})

	classified := bundler.Classify(p.itemGraphs, p.canonNames, p.classifyResolve, p.isSubmodule)

	sources := make(map[registry.ModuleId]*pyast.Module)
	for _, id := range p.reg.IDs() {
		if e, ok := p.reg.GetByID(id); ok {
			sources[id] = e.AST
		}
	}

	prog, err := bundler.Compile(bundler.Input{
		Entry:          p.entryID,
		Registry:       p.reg,
		CanonicalNames: p.canonNames,
		ItemGraphs:     p.itemGraphs,
		Semantic:       provider,
		TreeShake:      shakeResult,
		Exports:        exportsByModule,
		Origins:        origins,
		Depgraph:       g,
		Classified:     classified,
		EntryDocstring: entry.AST.Docstring,
	})
	if err != nil {
		return nil, err
	}

	finished, err := vm.Execute(vm.Input{
		Program:    prog,
		Sources:    sources,
		ItemGraphs: p.itemGraphs,
	})
	if err != nil {
		return nil, err
	}

	bundler.StripRedundantPass(finished)

	return &Result{
		Source:            printer.Print(finished),
		ThirdPartyImports: p.res.ThirdPartyImports(),
		Cycles:            cycleList,
	}, nil
}

// moduleName derives a module's canonical dotted name from its absolute
// path relative to the search root it was found under, normalizing
// `__init__.py` to the enclosing package's name (spec.md §4.1).
func moduleName(path string, roots []string) string {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = strings.TrimSuffix(rel, ".py")
		if base := filepath.Base(rel); base == "__init__" {
			rel = filepath.Dir(rel)
			if rel == "." {
				return filepath.Base(root)
			}
		}
		return strings.ReplaceAll(rel, string(filepath.Separator), ".")
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, ".py")
}

type parsedFile struct {
	path   string
	name   string
	source []byte
	mod    *pyast.Module
	err    error
}

// discover performs a breadth-first walk outward from the entry file,
// parsing each newly-found first-party module and resolving its imports
// to find the next layer. Each layer's files are parsed concurrently via
// errgroup (spec.md §5's concurrency model); resolution and registry
// mutation happen serially afterward since neither resolver.Resolver nor
// registry.Registry is safe for concurrent writers.
func (p *run) discover(ctx context.Context, entryAbs string) error {
	layer := []string{entryAbs}
	visited := map[string]bool{}

	for len(layer) > 0 {
		var toParse []string
		for _, path := range layer {
			if visited[path] {
				continue
			}
			visited[path] = true
			toParse = append(toParse, path)
		}
		if len(toParse) == 0 {
			break
		}

		results := make([]parsedFile, len(toParse))
		g, _ := errgroup.WithContext(ctx)
		for i, path := range toParse {
			i, path := i, path
			g.Go(func() error {
				results[i] = p.parseFile(path)
				return nil
			})
		}
		_ = g.Wait()

		var next []string
		for _, r := range results {
			if r.err != nil {
				return &cerr.ParseError{Path: r.path, Err: r.err}
			}
			id, err := p.reg.AddModule(registry.ModuleInfo{
				Name: r.name, Path: r.path, Source: string(r.source), AST: r.mod,
			})
			if err != nil {
				return err
			}
			p.canonNames[id] = r.name
			p.itemGraphs[id] = itemgraph.Build(r.name, r.mod)
			scan := importscan.Scan(r.mod)
			p.scans[id] = scan

			for _, site := range scan.Imports {
				for _, tgt := range importTargets(site.Stmt) {
					res, err := p.resolve(r.name, tgt.Module, tgt.Level)
					if err != nil {
						return err
					}
					if res.Kind == resolver.FirstParty && res.FilePath != "" {
						if !visited[res.FilePath] {
							next = append(next, res.FilePath)
						}
					}
				}
			}
		}
		layer = next
	}
	return nil
}

func (p *run) parseFile(path string) parsedFile {
	src, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{path: path, err: err}
	}
	name := moduleName(path, p.roots)
	mod, err := p.parser.Parse(path, src)
	if err != nil {
		return parsedFile{path: path, err: err}
	}
	return parsedFile{path: path, name: name, source: src, mod: mod}
}

// resolve wraps resolver.Resolver with the per-run memoization cache
// described on run.resCache.
func (p *run) resolve(requester, module string, level int) (resolver.Resolution, error) {
	key := resolveKey{requester: requester, module: module, level: level}
	if res, ok := p.resCache[key]; ok {
		return res, nil
	}
	var res resolver.Resolution
	var err error
	if level > 0 {
		res, err = p.res.ResolveRelative(requester, level, module)
	} else {
		res, err = p.res.ResolveAbsolute(module)
	}
	if err != nil {
		return resolver.Resolution{}, err
	}
	p.resCache[key] = res
	return res, nil
}

// importTarget is one dotted import target extracted directly from an
// Import/ImportFrom statement, independent of whether it is a top-level
// itemgraph.Item (itemgraph only indexes module.Body, so a nested
// function-scoped import is invisible to it) or found anywhere else in
// the module by importscan.Scan.
type importTarget struct {
	Module string
	Level  int
}

func importTargets(stmt pyast.Stmt) []importTarget {
	switch s := stmt.(type) {
	case *pyast.Import:
		out := make([]importTarget, len(s.Names))
		for i, a := range s.Names {
			out[i] = importTarget{Module: a.Name}
		}
		return out
	case *pyast.ImportFrom:
		return []importTarget{{Module: s.Module, Level: s.Level}}
	default:
		return nil
	}
}

// buildDepGraph adds one edge per import statement found anywhere in every
// module (importscan.Result.Imports, not itemgraph's module-level-only
// items) so cycles.Analyze sees function-scoped import edges too — a
// cycle reachable only through a deferred, function-body import still
// needs classifying (spec.md §4.8's all_function_scoped criterion exists
// precisely for that case).
func (p *run) buildDepGraph() *depgraph.Graph {
	g := depgraph.New()
	for _, id := range p.reg.IDs() {
		g.AddModule(id)
	}
	for _, id := range p.reg.IDs() {
		requester := p.canonNames[id]
		scan := p.scans[id]
		for _, site := range scan.Imports {
			kind, names := edgeShape(site.Stmt)
			for _, tgt := range importTargets(site.Stmt) {
				res, err := p.resolve(requester, tgt.Module, tgt.Level)
				if err != nil || res.Kind != resolver.FirstParty {
					continue
				}
				target, ok := p.reg.GetByPath(res.FilePath)
				if !ok {
					continue
				}
				g.AddEdge(depgraph.Edge{
					From:        id,
					To:          target.ID,
					Names:       names,
					Kind:        kind,
					ModuleLevel: site.Location == importscan.LocationModule,
				})
			}
		}
	}
	return g
}

func edgeShape(stmt pyast.Stmt) (depgraph.EdgeKind, []string) {
	switch s := stmt.(type) {
	case *pyast.Import:
		return depgraph.EdgeDirectImport, nil
	case *pyast.ImportFrom:
		names := make([]string, len(s.Names))
		for i, a := range s.Names {
			names[i] = a.Name
		}
		if s.Level > 0 {
			return depgraph.EdgeRelativeFromImport, names
		}
		return depgraph.EdgeFromImport, names
	default:
		return depgraph.EdgeDirectImport, nil
	}
}

func (p *run) analyzeCycles(g *depgraph.Graph) ([]cycles.Cycle, error) {
	facts := make(map[registry.ModuleId]cycles.ModuleFacts)
	for _, id := range p.reg.IDs() {
		e, _ := p.reg.GetByID(id)
		isInit := strings.HasSuffix(strings.ReplaceAll(firstPath(e.Paths), "\\", "/"), "__init__.py")
		facts[id] = cycles.FactsFromItemGraph(id, p.canonNames[id], isInit, p.itemGraphs[id])
	}
	found := cycles.Analyze(g, facts)
	for _, c := range found {
		if !c.Classification.Resolvable() {
			kind := cerr.CycleModuleConstants
			if c.Classification == cycles.ImportTime {
				kind = cerr.CycleImportTime
			}
			var members []string
			for _, m := range c.Members {
				members = append(members, m.CanonicalName)
			}
			return nil, &cerr.CircularDependencyError{Kind: kind, Members: members}
		}
		clog.Debugf("cycle among %v classified as %s", cycleMemberNames(c), c.Classification)
	}
	return found, nil
}

func cycleMemberNames(c cycles.Cycle) []string {
	out := make([]string, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.CanonicalName
	}
	return out
}

func firstPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	sort.Strings(paths)
	return paths[0]
}

func (p *run) computeExports() map[registry.ModuleId]exports.Result {
	out := make(map[registry.ModuleId]exports.Result, len(p.itemGraphs))
	for id, g := range p.itemGraphs {
		out[id] = exports.Compute(g)
	}
	return out
}

func (p *run) buildImportTable() treeshake.ImportTable {
	table := make(treeshake.ImportTable, len(p.itemGraphs))
	for id, g := range p.itemGraphs {
		names := make(map[string]itemgraph.ImportedName)
		for _, it := range g.Items {
			if it.Kind != itemgraph.KindFromImport {
				continue
			}
			for i, local := range it.DefinedSymbols {
				if i < len(it.ImportedNames) {
					names[local] = it.ImportedNames[i]
				}
			}
		}
		table[id] = names
	}
	return table
}

// resolveModuleID adapts resolver-shaped resolution into the plain
// "dotted name -> ModuleId" lookup symbolorigin.ModuleResolver and
// treeshake.Input.ResolveModule both want. Since both packages only care
// about first-party targets (stdlib/third-party names never match an
// entry in the registry), a simple by-name registry lookup is sufficient
// here and doesn't need the full requester-relative resolution cache.
func (p *run) resolveModuleID(name string) (registry.ModuleId, bool) {
	e, ok := p.reg.GetByName(name)
	if !ok {
		return 0, false
	}
	return e.ID, true
}

// classifyResolve adapts run.resolve into bundler.ResolveFunc.
func (p *run) classifyResolve(requester, module string, level int) (resolver.Kind, registry.ModuleId, bool) {
	res, err := p.resolve(requester, module, level)
	if err != nil {
		return resolver.ThirdParty, 0, false
	}
	if res.Kind != resolver.FirstParty || res.FilePath == "" {
		return res.Kind, 0, false
	}
	e, ok := p.reg.GetByPath(res.FilePath)
	if !ok {
		return res.Kind, 0, false
	}
	return res.Kind, e.ID, true
}

// isSubmodule adapts registry lookups into bundler.SubmoduleFunc.
func (p *run) isSubmodule(parentModule, name string) (registry.ModuleId, bool) {
	e, ok := p.reg.GetByName(parentModule + "." + name)
	if !ok {
		return 0, false
	}
	return e.ID, true
}

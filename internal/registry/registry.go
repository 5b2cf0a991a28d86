// Package registry owns module identity: the bijection between ModuleId,
// canonical dotted name, resolved file path, and content hash. It follows
// the shape of the teacher's internal/graph.DependencyGraph (a handful of
// maps keyed by string, built once and read thereafter) adapted from
// Go-module identity to Python-module identity, and reuses the sha256
// content-hashing idiom of internal/interproc/cache.go's CacheKey.Hash.
package registry

import (
	"crypto/sha256"
	"fmt"
	"regexp"

	"github.com/gocribo/cribo/internal/cerr"
	"github.com/gocribo/cribo/internal/pyast"
)

// ModuleId is a dense integer identifying one first-party Python module.
type ModuleId int

// ModuleInfo is everything the registry needs to admit a module.
type ModuleInfo struct {
	Name   string // canonical dotted name, __init__ normalized to the package name
	Path   string // resolved absolute file path
	Source string // original source text
	AST    *pyast.Module
}

// entry is the registry's internal record for one module.
type entry struct {
	id       ModuleId
	names    map[string]bool
	paths    map[string]bool
	hash     string
	source   string
	ast      *pyast.Module
	isWrap   bool
}

// Registry is the single source of truth for module identity. It is a
// mutable append-only map during resolution and immutable thereafter.
type Registry struct {
	byID   map[ModuleId]*entry
	byName map[string]ModuleId
	byPath map[string]ModuleId
	byHash map[string]ModuleId
	nextID ModuleId
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byID:   make(map[ModuleId]*entry),
		byName: make(map[string]ModuleId),
		byPath: make(map[string]ModuleId),
		byHash: make(map[string]ModuleId),
	}
}

// ContentHash returns the hex SHA-256 of src.
func ContentHash(src string) string {
	h := sha256.Sum256([]byte(src))
	return fmt.Sprintf("%x", h)
}

// AddModule registers info, returning its ModuleId. If the content hash is
// already registered the existing id is returned and the new name/path are
// recorded as additional aliases; otherwise a fresh id is assigned.
// AddModule always returns a nil error: a content conflict on one id can
// only arise through AddModuleWithID.
func (r *Registry) AddModule(info ModuleInfo) (ModuleId, error) {
	hash := ContentHash(info.Source)

	if id, ok := r.byHash[hash]; ok {
		e := r.byID[id]
		e.names[info.Name] = true
		e.paths[info.Path] = true
		r.byName[info.Name] = id
		r.byPath[info.Path] = id
		return id, nil
	}

	// Same name/path previously claimed by a different hash is a genuine
	// content conflict only when the caller is re-registering the same id;
	// dense ids are assigned here so this can only happen via direct misuse
	// of AddModuleWithID.
	id := r.nextID
	r.nextID++

	e := &entry{
		id:     id,
		names:  map[string]bool{info.Name: true},
		paths:  map[string]bool{info.Path: true},
		hash:   hash,
		source: info.Source,
		ast:    info.AST,
	}
	r.byID[id] = e
	r.byName[info.Name] = id
	r.byPath[info.Path] = id
	r.byHash[hash] = id
	return id, nil
}

// AddModuleWithID registers info under an explicit id, failing with
// *cerr.ConflictingContentError if id already carries different content.
func (r *Registry) AddModuleWithID(id ModuleId, info ModuleInfo) error {
	hash := ContentHash(info.Source)
	if e, ok := r.byID[id]; ok {
		if e.hash != hash {
			return &cerr.ConflictingContentError{ID: int(id), ExistingHash: e.hash, NewHash: hash}
		}
		e.names[info.Name] = true
		e.paths[info.Path] = true
		r.byName[info.Name] = id
		r.byPath[info.Path] = id
		return nil
	}
	r.byID[id] = &entry{
		id:     id,
		names:  map[string]bool{info.Name: true},
		paths:  map[string]bool{info.Path: true},
		hash:   hash,
		source: info.Source,
		ast:    info.AST,
	}
	r.byName[info.Name] = id
	r.byPath[info.Path] = id
	r.byHash[hash] = id
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return nil
}

// Entry is the read-only view of a registered module returned by lookups.
type Entry struct {
	ID         ModuleId
	Names      []string
	Paths      []string
	Hash       string
	Source     string
	AST        *pyast.Module
	IsWrapper  bool
	CanonName  string // the lexicographically smallest name the module is registered under
}

func (r *Registry) toEntry(e *entry) Entry {
	var names, paths []string
	var primary string
	for n := range e.names {
		if primary == "" || n < primary {
			primary = n
		}
		names = append(names, n)
	}
	for p := range e.paths {
		paths = append(paths, p)
	}
	return Entry{
		ID: e.id, Names: names, Paths: paths, Hash: e.hash,
		Source: e.source, AST: e.ast, IsWrapper: e.isWrap, CanonName: primary,
	}
}

func (r *Registry) GetByID(id ModuleId) (Entry, bool) {
	e, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return r.toEntry(e), true
}

func (r *Registry) GetByName(name string) (Entry, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.GetByID(id)
}

func (r *Registry) GetByPath(path string) (Entry, bool) {
	id, ok := r.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return r.GetByID(id)
}

func (r *Registry) GetByHash(hash string) (Entry, bool) {
	id, ok := r.byHash[hash]
	if !ok {
		return Entry{}, false
	}
	return r.GetByID(id)
}

// SetWrapper marks a module as a wrapper/namespace module (dynamic exports,
// or explicitly imported as a whole).
func (r *Registry) SetWrapper(id ModuleId, isWrap bool) {
	if e, ok := r.byID[id]; ok {
		e.isWrap = isWrap
	}
}

// IDs returns every registered ModuleId.
func (r *Registry) IDs() []ModuleId {
	ids := make([]ModuleId, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

var sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SyntheticNameFor returns the deterministic `__cribo_<hash6>_<sanitized>`
// identifier for a registered module.
func (r *Registry) SyntheticNameFor(id ModuleId) string {
	e, ok := r.byID[id]
	if !ok {
		return ""
	}
	return SyntheticName(e.hash, r.toEntry(e).CanonName)
}

// SyntheticName computes the synthetic identifier from a content hash and
// canonical name directly, for callers that have not yet registered the
// module (e.g. diagnostics).
func SyntheticName(hash string, canonName string) string {
	hash6 := hash
	if len(hash6) > 6 {
		hash6 = hash6[:6]
	}
	return fmt.Sprintf("__cribo_%s_%s", hash6, Sanitize(canonName))
}

// Sanitize replaces every non-identifier character with '_'.
func Sanitize(name string) string {
	return sanitizeRe.ReplaceAllString(name, "_")
}

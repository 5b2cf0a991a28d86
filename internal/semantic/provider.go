package semantic

import (
	"sync"

	"github.com/gocribo/cribo/internal/pyast"
	"github.com/gocribo/cribo/internal/registry"
)

// Provider lazily constructs and caches one Model per module, following
// the teacher's single-construction-point cache idiom (internal/interproc
// cache.go): a map guarded by a mutex, filled once per key, never
// invalidated within a run.
type Provider struct {
	reg *registry.Registry

	mu     sync.Mutex
	models map[registry.ModuleId]*Model
}

// NewProvider returns a Provider backed by reg.
func NewProvider(reg *registry.Registry) *Provider {
	return &Provider{reg: reg, models: make(map[registry.ModuleId]*Model)}
}

// ModelFor returns (building and caching, if needed) the semantic model
// for id.
func (p *Provider) ModelFor(id registry.ModuleId) (*Model, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.models[id]; ok {
		return m, true
	}
	e, ok := p.reg.GetByID(id)
	if !ok {
		return nil, false
	}
	var mod *pyast.Module
	if e.AST != nil {
		mod = e.AST
	} else {
		mod = &pyast.Module{}
	}
	m := Build(e.CanonName, mod)
	p.models[id] = m
	return m, true
}

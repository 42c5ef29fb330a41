package modcache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory produces the exports of a module. The Loader passed in is the one
// performing the load; factories use it to Require their own dependencies or
// to look up globals published with WithGlobal.
type Factory func(l *Loader) (any, error)

// Registry maps module identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	aliases   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		aliases:   make(map[string]string),
	}
}

// Default is the process-wide registry modules register into from init.
var Default = NewRegistry()

// Register makes a module available under id in the Default registry.
func Register(id string, f Factory) {
	Default.Register(id, f)
}

// Alias makes alias resolve to id in the Default registry.
func Alias(alias, id string) {
	Default.Alias(alias, id)
}

// Register makes a module available under id.
// It panics if id is empty, f is nil, or id is already registered.
func (r *Registry) Register(id string, f Factory) {
	id = normalize(id)
	if id == "" {
		panic("modcache: Register with empty module id")
	}
	if f == nil {
		panic("modcache: Register factory is nil for " + id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[id]; dup {
		panic("modcache: Register called twice for module " + id)
	}
	if _, dup := r.aliases[id]; dup {
		panic("modcache: Register shadows alias " + id)
	}
	r.factories[id] = f
}

// Alias makes alias resolve to the canonical identifier id.
// It panics if alias is already taken.
func (r *Registry) Alias(alias, id string) {
	alias, id = normalize(alias), normalize(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[alias]; dup {
		panic("modcache: Alias shadows module " + alias)
	}
	if _, dup := r.aliases[alias]; dup {
		panic("modcache: Alias called twice for " + alias)
	}
	r.aliases[alias] = id
}

// Unregister removes a module and every alias pointing at it.
func (r *Registry) Unregister(id string) {
	id = normalize(id)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, id)
	for alias, target := range r.aliases {
		if target == id {
			delete(r.aliases, alias)
		}
	}
}

// Resolve returns the canonical identifier for id.
func (r *Registry) Resolve(id string) (string, error) {
	id = normalize(id)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[id]; ok {
		id = target
	}
	if _, ok := r.factories[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}
	return id, nil
}

// Modules returns the sorted canonical identifiers of all registered modules.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) factory(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

func normalize(id string) string {
	return strings.TrimSpace(id)
}

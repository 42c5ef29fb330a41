package modcache

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrModuleNotFound is returned when an identifier does not resolve to a
	// registered module.
	ErrModuleNotFound = errors.New("module not found")

	// ErrCircularLoad is returned when a module Requires itself, directly or
	// through its dependencies, while it is still loading.
	ErrCircularLoad = errors.New("circular module load")
)

// Loader loads modules from a Registry and caches their exports.
//
// The *Loader handed to a Factory is a view of the same cache that also
// tracks the chain of modules currently loading, for cycle detection. Views
// share every piece of state with the Loader they were derived from.
type Loader struct {
	*state
	chain   []string
	inScope bool
}

type state struct {
	registry *Registry

	mu      sync.Mutex
	cache   map[string]any
	globals map[string]any

	// scopeMu serialises WithGlobal and WithModule across goroutines.
	scopeMu sync.Mutex
}

// NewLoader creates a loader with an empty cache over r.
// A nil registry means Default.
func NewLoader(r *Registry) *Loader {
	if r == nil {
		r = Default
	}
	return &Loader{
		state: &state{
			registry: r,
			cache:    make(map[string]any),
			globals:  make(map[string]any),
		},
	}
}

// Registry returns the registry this loader resolves against.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Resolve canonicalises id, failing with ErrModuleNotFound when nothing is
// registered under it.
func (l *Loader) Resolve(id string) (string, error) {
	return l.registry.Resolve(id)
}

// Require returns the cached exports of id, loading and caching them on first
// use.
func (l *Loader) Require(id string) (any, error) {
	resolved, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if exports, ok := l.cache[resolved]; ok {
		l.mu.Unlock()
		return exports, nil
	}
	l.mu.Unlock()

	exports, err := l.load(resolved)
	if err != nil {
		return nil, err
	}

	// Another goroutine may have finished the same load first; keep theirs so
	// every caller agrees on one shared instance.
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.cache[resolved]; ok {
		return existing, nil
	}
	l.cache[resolved] = exports
	return exports, nil
}

// FreshRequire loads id again and returns exports that are not shared with
// the cache. The cache entry for id, present or absent, is left exactly as it
// was. Dependencies required by the factory are cached normally.
func (l *Loader) FreshRequire(id string) (any, error) {
	resolved, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}
	return l.load(resolved)
}

// Cached returns the cached exports for id without loading anything.
func (l *Loader) Cached(id string) (any, bool) {
	resolved, err := l.Resolve(id)
	if err != nil {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	exports, ok := l.cache[resolved]
	return exports, ok
}

// Evict drops the cache entry for id. Unknown identifiers are ignored.
func (l *Loader) Evict(id string) {
	resolved, err := l.Resolve(id)
	if err != nil {
		return
	}
	l.mu.Lock()
	delete(l.cache, resolved)
	l.mu.Unlock()
}

// EvictPrefix drops every cache entry whose identifier starts with prefix and
// returns how many were removed.
func (l *Loader) EvictPrefix(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for id := range l.cache {
		if strings.HasPrefix(id, prefix) {
			delete(l.cache, id)
			n++
		}
	}
	return n
}

// Global returns the value published under name, if any.
func (l *Loader) Global(name string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.globals[name]
	return v, ok
}

func (l *Loader) load(id string) (any, error) {
	for _, loading := range l.chain {
		if loading == id {
			return nil, fmt.Errorf("%w: %s -> %s", ErrCircularLoad, strings.Join(l.chain, " -> "), id)
		}
	}

	f, ok := l.registry.factory(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, id)
	}

	exports, err := f(l.child(id))
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", id, err)
	}
	if exports == nil {
		return nil, fmt.Errorf("load module %s: factory returned no exports", id)
	}
	return exports, nil
}

func (l *Loader) child(id string) *Loader {
	chain := make([]string, len(l.chain), len(l.chain)+1)
	copy(chain, l.chain)
	return &Loader{
		state:   l.state,
		chain:   append(chain, id),
		inScope: l.inScope,
	}
}

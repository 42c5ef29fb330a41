package modcache

// binding captures one slot of a map so it can be put back exactly as found.
type binding struct {
	slot    map[string]any
	key     string
	prev    any
	existed bool
}

func (b binding) restore() {
	if b.existed {
		b.slot[b.key] = b.prev
	} else {
		delete(b.slot, b.key)
	}
}

// WithGlobal publishes value under name for the duration of fn. The previous
// binding, or its absence, is restored when fn returns or panics.
//
// fn receives a Loader view for any loads it performs. Scopes opened through
// that view nest inside the current one instead of waiting on it.
func (l *Loader) WithGlobal(name string, value any, fn func(*Loader) error) error {
	return l.scoped(func() binding {
		return l.bind(l.globals, name, value)
	}, fn)
}

// WithModule binds exports as the cache entry for id for the duration of fn,
// so that a Require of id inside fn returns exports. The previous cache entry,
// or its absence, is restored afterwards.
func (l *Loader) WithModule(id string, exports any, fn func(*Loader) error) error {
	resolved, err := l.Resolve(id)
	if err != nil {
		return err
	}
	return l.scoped(func() binding {
		return l.bind(l.cache, resolved, exports)
	}, fn)
}

func (l *Loader) scoped(acquire func() binding, fn func(*Loader) error) error {
	if !l.inScope {
		l.scopeMu.Lock()
		defer l.scopeMu.Unlock()
	}

	b := acquire()
	defer func() {
		l.mu.Lock()
		b.restore()
		l.mu.Unlock()
	}()

	view := &Loader{state: l.state, chain: l.chain, inScope: true}
	return fn(view)
}

func (l *Loader) bind(slot map[string]any, key string, value any) binding {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, existed := slot[key]
	slot[key] = value
	return binding{slot: slot, key: key, prev: prev, existed: existed}
}

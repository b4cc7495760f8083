package indirect

import (
	"fmt"
	"log"
)

// Resolver bridges a Loader and the Callable abstraction.
//
// A Resolver is meant for one goroutine, same as the handles it creates.
type Resolver struct {
	loader Loader
	strict bool
	debug  bool
}

// NewResolver create a Resolver on top of l.
//
// A strict Resolver reports missing symbols as ErrMissingSymbol, the default silently skips them.
// An optional debug parameter will enable debug logging.
func NewResolver(l Loader, strict bool, debug ...bool) *Resolver {
	return &Resolver{
		loader: l,
		strict: strict,
		debug:  len(debug) > 0 && debug[0],
	}
}

// Strict reports whether missing symbols are errors.
func (r *Resolver) Strict() bool {
	return r.strict
}

// LoadModule loads the module at path. The returned Handle is never nil, but is Absent when loading failed.
func (r *Resolver) LoadModule(path string) *Handle {
	h := &Handle{path: path}
	m, err := r.loader.Load(path)
	if err != nil {
		if r.debug {
			log.Printf("load %s failed: %v", path, err)
		}
		h.state = Absent
		h.err = err
		return h
	}
	if r.debug {
		log.Printf("loaded %s", path)
	}
	h.module = m
	h.state = Loaded
	return h
}

// ResolveAndInvoke looks up name inside h and invokes it when found.
//
// A missing symbol is a silent no-op unless the Resolver is strict.
func (r *Resolver) ResolveAndInvoke(h *Handle, name string) error {
	switch h.state {
	case Absent:
		return fmt.Errorf("%w: %s", ErrAbsent, h.path)
	case Unloaded:
		return fmt.Errorf("%w: %s", ErrUnloaded, h.path)
	}
	c, ok := h.module.Resolve(name)
	if !ok || c == nil {
		if r.debug {
			log.Printf("symbol %s not found in %s", name, h.path)
		}
		if r.strict {
			return fmt.Errorf("%w: %s in %s", ErrMissingSymbol, name, h.path)
		}
		return nil
	}
	if r.debug {
		log.Printf("invoke %s of %s", name, h.path)
	}
	c()
	return nil
}

// UnloadModule releases h. Unloading an Absent handle does nothing.
func (r *Resolver) UnloadModule(h *Handle) (err error) {
	switch h.state {
	case Absent:
		return nil
	case Unloaded:
		return fmt.Errorf("%w: %s", ErrUnloaded, h.path)
	}
	err = h.module.Unload()
	h.module = nil
	h.state = Unloaded
	if r.debug {
		log.Printf("unloaded %s: %v", h.path, err)
	}
	return
}

// Use loads the module at path, calls f with the Handle and releases it on every exit path.
//
// When the module can't be loaded f is not called and Use returns nil.
// The returned error is the unload failure if any.
func (r *Resolver) Use(path string, f func(h *Handle)) (err error) {
	h := r.LoadModule(path)
	if !h.Loaded() {
		return nil
	}
	defer func() {
		if e := r.UnloadModule(h); e != nil && err == nil {
			err = e
		}
	}()
	f(h)
	return
}

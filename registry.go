package indirect

import (
	"fmt"
	"github.com/ZenLiuCN/fn"
	"maps"
	"os"
	"sync"
)

// Registry is a Loader backed by an explicit table of named callables, grouped by module path.
//
// Loading takes a snapshot of the module's symbols: registrations after Load are not visible to the loaded Module.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[string]Callable
}

// NewRegistry create an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]map[string]Callable)}
}

// Register c as symbol name of module path, creating the module if needed.
func (r *Registry) Register(path, name string, c Callable) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[path]
	if !ok {
		m = make(map[string]Callable)
		r.modules[path] = m
	}
	m[name] = c
	return r
}

// Modules registered paths.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn.MapKeys(r.modules)
}

func (r *Registry) Load(path string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[path]
	if !ok {
		return nil, fmt.Errorf("registry %s: %w", path, os.ErrNotExist)
	}
	return &registryModule{syms: maps.Clone(m)}, nil
}

type registryModule struct {
	syms map[string]Callable
}

func (m *registryModule) Resolve(name string) (c Callable, ok bool) {
	c, ok = m.syms[name]
	return
}

func (m *registryModule) Unload() error {
	if m.syms == nil {
		return ErrUnloaded
	}
	m.syms = nil
	return nil
}

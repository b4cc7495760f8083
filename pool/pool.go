package pool

import (
	"errors"
	"fmt"
	. "github.com/ZenLiuCN/indirect"
	"github.com/davecgh/go-spew/spew"
	"log"
	"slices"
	"sync"
)

// Pool owns a set of module handles keyed by path.
//
// Modules are released in reverse load order, so a module loaded later may depend on an earlier one.
type Pool struct {
	*Resolver
	Modules map[string]*Handle
	Loaded  []*Handle
	debug   bool
	sync.RWMutex
}

var (
	ErrAlreadyLoad = errors.New("module already loaded")
	ErrNotLoad     = errors.New("module not loaded")
	ErrCorrupted   = errors.New("recording corrupted")
)

// NewPool create new pool loading modules with l, an optional debug parameter will enable debug logging.
func NewPool(l Loader, debug ...bool) (p *Pool) {
	p = new(Pool)
	p.debug = len(debug) > 0 && debug[0]
	p.Resolver = NewResolver(l, true, p.debug)
	p.Modules = make(map[string]*Handle)
	return
}

// Load the module at path.
func (p *Pool) Load(path string) (err error) {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.Modules[path]; ok {
		return ErrAlreadyLoad
	}
	return p.load(path)
}

func (p *Pool) load(path string) error {
	h := p.LoadModule(path)
	if !h.Loaded() {
		return h.Err()
	}
	p.Modules[path] = h
	p.Loaded = append(p.Loaded, h)
	if p.debug {
		log.Printf("pool loaded %s", spew.Sdump(h))
	}
	return nil
}

// release the handle at index i and every handle loaded after it.
func (p *Pool) release(i int) (err error) {
	x := p.Loaded[i:]
	for j := len(x) - 1; j >= 0; j-- {
		h := x[j]
		delete(p.Modules, h.Path())
		err = errors.Join(err, p.UnloadModule(h))
	}
	p.Loaded = p.Loaded[:i]
	return
}

// Reload the module at path. The module and every module loaded after it are released first,
// only the module at path is loaded again.
func (p *Pool) Reload(path string) (err error) {
	p.Lock()
	defer p.Unlock()
	h, ok := p.Modules[path]
	if !ok {
		return ErrNotLoad
	}
	i := slices.Index(p.Loaded, h)
	if i < 0 {
		return ErrCorrupted
	}
	if err = p.release(i); err != nil {
		return
	}
	return p.load(path)
}

// Fetch a symbol of the module at path.
func (p *Pool) Fetch(path, name string) (c Callable, ok bool) {
	p.RLock()
	defer p.RUnlock()
	h, found := p.Modules[path]
	if !found {
		return nil, false
	}
	return h.Module().Resolve(name)
}

// Require fetch a symbol of the module at path, panics with ErrNotLoad or ErrMissingSymbol.
func (p *Pool) Require(path, name string) Callable {
	p.RLock()
	defer p.RUnlock()
	h, ok := p.Modules[path]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrNotLoad, path))
	}
	c, ok := h.Module().Resolve(name)
	if !ok {
		panic(fmt.Errorf("%w: %s in %s", ErrMissingSymbol, name, path))
	}
	return c
}

// Invoke a symbol of the module at path.
func (p *Pool) Invoke(path, name string) error {
	p.RLock()
	defer p.RUnlock()
	h, ok := p.Modules[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoad, path)
	}
	return p.ResolveAndInvoke(h, name)
}

// Paths of loaded modules in load order.
func (p *Pool) Paths() (v []string) {
	p.RLock()
	defer p.RUnlock()
	v = make([]string, 0, len(p.Loaded))
	for _, h := range p.Loaded {
		v = append(v, h.Path())
	}
	return
}

// Close release all modules in reverse load order.
func (p *Pool) Close() error {
	p.Lock()
	defer p.Unlock()
	if len(p.Loaded) == 0 {
		return nil
	}
	return p.release(0)
}

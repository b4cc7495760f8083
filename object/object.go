// Package object links relocatable Go object files or archives at runtime with [goloader].
//
// The package needs a patched GO sdk, see the root package documentation.
//
// [goloader]: https://github.com/pkujhd/goloader
package object

import (
	"errors"
	"github.com/ZenLiuCN/fn"
	. "github.com/ZenLiuCN/indirect"
	"github.com/pkujhd/goloader"
	"log"
	"maps"
	"os"
	"strings"
	"sync"
)

var (
	runtimeOnce sync.Once
	runtimeSyms map[string]uintptr
	runtimeErr  error
)

// runtimeSymbols of the host executable, registered once and cloned for each object module.
func runtimeSymbols() (map[string]uintptr, error) {
	runtimeOnce.Do(func() {
		runtimeSyms = make(map[string]uintptr)
		runtimeErr = goloader.RegSymbol(runtimeSyms)
	})
	if runtimeErr != nil {
		return nil, runtimeErr
	}
	return maps.Clone(runtimeSyms), nil
}

// ObjectLoader links relocatable Go object files or archives into the running process.
//
// Note:
//
//  1. Only exported functions can be resolved.
//  2. Symbol names without a package are qualified with Pkg.
type ObjectLoader struct {
	Pkg       string   //package path of the object file, default main
	Types     []any    //types to register before linking
	Libraries []string //shared objects whose symbols are made available to the object
	Debug     bool     //enable debug logging
}

func (l ObjectLoader) pkg() string {
	if l.Pkg == "" {
		return "main"
	}
	return l.Pkg
}

func (l ObjectLoader) Load(path string) (Module, error) {
	sym, err := runtimeSymbols()
	if err != nil {
		return nil, err
	}
	for _, so := range l.Libraries {
		if err = goloader.RegSymbolWithSo(sym, so); err != nil {
			return nil, err
		}
	}
	if len(l.Types) > 0 {
		if l.Debug {
			log.Println("register types", l.Types)
		}
		goloader.RegTypes(sym, l.Types...)
	}
	linker, err := goloader.ReadObj(path, l.pkg())
	if err != nil {
		return nil, err
	}
	if l.Debug {
		log.Printf("create linker: %+v", linker)
	}
	code, err := goloader.Load(linker, sym)
	if err != nil {
		return nil, err
	}
	if l.Debug {
		log.Printf("create module: %+v", code)
	}
	return &ObjectModule{pkg: l.pkg(), sym: sym, linker: linker, code: code, debug: l.Debug}, nil
}

// ObjectModule is a linked Go object.
type ObjectModule struct {
	pkg    string
	sym    map[string]uintptr
	linker *goloader.Linker
	code   *goloader.CodeModule
	debug  bool
}

func (o *ObjectModule) qualify(name string) string {
	if strings.IndexByte(name, '.') < 0 {
		return o.pkg + "." + name
	}
	return name
}

func (o *ObjectModule) Resolve(name string) (c Callable, ok bool) {
	if o.code == nil {
		return nil, false
	}
	var p uintptr
	p, ok = o.code.Syms[o.qualify(name)]
	if !ok {
		return
	}
	if o.debug {
		log.Printf("found symbol: %x", p)
	}
	return As[Callable](p), true
}

// Symbols exported by the linked module.
func (o *ObjectModule) Symbols() []string {
	if o.code == nil {
		return nil
	}
	return fn.MapKeys(o.code.Syms)
}

// MissingSymbols the linker could not resolve.
func (o *ObjectModule) MissingSymbols() []string {
	if o.linker == nil {
		return nil
	}
	return goloader.UnresolvedSymbols(o.linker, o.sym)
}

func (o *ObjectModule) Unload() error {
	if o.code == nil {
		return ErrUnloaded
	}
	if o.debug {
		log.Printf("free module: %s", o.pkg)
	}
	_ = os.Stdout.Sync()
	o.code.Unload()
	o.code = nil
	o.linker = nil
	o.sym = nil
	return nil
}

// Inspect display symbols inside an object file.
func Inspect(file, pkg string) ([]string, error) {
	if file == "" {
		return nil, errors.New("missing object file")
	}
	if pkg == "" {
		pkg = "main"
	}
	return goloader.Parse(file, pkg)
}

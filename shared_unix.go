//go:build darwin || freebsd || linux || netbsd

package indirect

import (
	"github.com/ebitengine/purego"
	"log"
	"os"
	"runtime"
	"sync"
)

// DefaultMode is the dlopen mode of a zero SharedLoader: lazy binding, external symbols are resolved on first use.
const DefaultMode = purego.RTLD_LAZY

// SharedLoader loads platform shared objects through dlopen.
type SharedLoader struct {
	Mode  int  //dlopen mode, zero means DefaultMode
	Debug bool //enable debug logging
}

func (l SharedLoader) Load(path string) (Module, error) {
	mode := l.Mode
	if mode == 0 {
		mode = DefaultMode
	}
	h, err := purego.Dlopen(path, mode)
	if err != nil {
		return nil, err
	}
	if l.Debug {
		log.Printf("dlopen %s: %x", path, h)
	}
	return &sharedModule{handle: h, debug: l.Debug}, nil
}

type sharedModule struct {
	handle uintptr
	debug  bool
}

func (s *sharedModule) Resolve(name string) (c Callable, ok bool) {
	if s.handle == 0 {
		return nil, false
	}
	p, err := purego.Dlsym(s.handle, name)
	if err != nil || p == 0 {
		if s.debug {
			log.Printf("dlsym %s: %v", name, err)
		}
		return nil, false
	}
	if s.debug {
		log.Printf("found symbol %s: %x", name, p)
	}
	purego.RegisterFunc(&c, p)
	return c, true
}

// Unload flushes C stdio before closing: the process exits without running libc exit handlers,
// so output a module buffered while stdout is a pipe or file would be lost.
func (s *sharedModule) Unload() error {
	if s.handle == 0 {
		return ErrUnloaded
	}
	h := s.handle
	s.handle = 0
	flushStdio(h)
	_ = os.Stdout.Sync()
	return purego.Dlclose(h)
}

var (
	libcOnce sync.Once
	fflush   func(stream uintptr) int32
)

func libcPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/usr/lib/libSystem.B.dylib"
	case "linux":
		return "libc.so.6"
	case "freebsd":
		return "libc.so.7"
	default:
		return "libc.so"
	}
}

// flushStdio calls fflush(NULL), resolved from libc or else through the module's own dependencies.
func flushStdio(module uintptr) {
	libcOnce.Do(func() {
		if h, err := purego.Dlopen(libcPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL); err == nil {
			if p, err := purego.Dlsym(h, "fflush"); err == nil && p != 0 {
				purego.RegisterFunc(&fflush, p)
			}
		}
	})
	if fflush != nil {
		fflush(0)
		return
	}
	if p, err := purego.Dlsym(module, "fflush"); err == nil && p != 0 {
		var f func(stream uintptr) int32
		purego.RegisterFunc(&f, p)
		f(0)
	}
}

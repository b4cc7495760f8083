//go:build !(darwin || freebsd || linux || netbsd)

package indirect

// DefaultMode is meaningless without a dynamic loader.
const DefaultMode = 0

// SharedLoader always fails with ErrUnsupported on this platform.
type SharedLoader struct {
	Mode  int
	Debug bool
}

func (l SharedLoader) Load(path string) (Module, error) {
	return nil, ErrUnsupported
}

package indirect

import "errors"

var (
	// ErrMissingSymbol occurs when a strict Resolver can't found a symbol.
	ErrMissingSymbol = errors.New("missing symbol")
	// ErrAbsent occurs when use a Handle which failed to load.
	ErrAbsent = errors.New("module absent")
	// ErrUnloaded occurs when use or unload a Handle after it was released.
	ErrUnloaded = errors.New("module unloaded")
	// ErrIndexOutOfRange occurs when a checked table lookup is outside the table.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnsupported occurs when the platform has no dynamic loader.
	ErrUnsupported = errors.New("dynamic loading unsupported on this platform")
)

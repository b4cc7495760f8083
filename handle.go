package indirect

import "fmt"

// State of a Handle.
type State uint8

const (
	// Absent is the terminal state of a Handle whose load failed.
	Absent State = iota
	// Loaded is the state of a usable Handle.
	Loaded
	// Unloaded is the terminal state of a released Handle.
	Unloaded
)

func (s State) String() string {
	switch s {
	case Absent:
		return "Absent"
	case Loaded:
		return "Loaded"
	case Unloaded:
		return "Unloaded"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Handle is the ownership token of a loaded module, created by [Resolver.LoadModule].
type Handle struct {
	path   string
	state  State
	module Module
	err    error
}

// Path the handle was loaded from.
func (h *Handle) Path() string {
	return h.path
}

// State of the handle.
func (h *Handle) State() State {
	return h.state
}

// Loaded reports whether the handle can be used.
func (h *Handle) Loaded() bool {
	return h.state == Loaded
}

// Err is the load failure of an Absent handle, nil otherwise.
func (h *Handle) Err() error {
	return h.err
}

// Module returns the underlying module, nil unless Loaded.
func (h *Handle) Module() Module {
	if h.state != Loaded {
		return nil
	}
	return h.module
}

func (h *Handle) String() string {
	return fmt.Sprintf("Handle{%s %s}", h.path, h.state)
}

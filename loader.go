package indirect

type (
	// Loader maps a module into the process.
	//
	// Implementations: SharedLoader, ObjectLoader and Registry.
	Loader interface {
		Load(path string) (Module, error) //load module at path, returns error when the module can't be loaded
	}
	// Module is a loaded module. It is released by Unload and must not be used afterward.
	Module interface {
		Resolve(name string) (c Callable, ok bool) //resolve an exported symbol by name, ok is false when absent
		Unload() error                             //release the module
	}
)

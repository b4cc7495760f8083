package indirect

import (
	"fmt"
	"io"
	"log"
)

// DefaultSymbols resolved by Demonstrate when none are given.
var DefaultSymbols = []string{"external_func1", "external_func2"}

// Demonstrate runs both kinds of indirect calls.
//
// The two local module functions are called through a Table, then the module at path is loaded by r and
// each symbol is resolved and invoked in order. Headers and local output go to w.
// Failures are never reported: an absent module skips the second part, a missing symbol skips its call.
func Demonstrate(w io.Writer, r *Resolver, path string, symbols ...string) {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	table := NewModuleTable(w)
	_, _ = fmt.Fprintln(w, "Testing intra-module indirect calls:")
	table.Invoke(0)
	table.Invoke(1)

	_ = r.Use(path, func(h *Handle) {
		_, _ = fmt.Fprintln(w, "\nTesting inter-module indirect calls:")
		for _, s := range symbols {
			if err := r.ResolveAndInvoke(h, s); err != nil && r.debug {
				log.Printf("invoke %s: %v", s, err)
			}
		}
	})
}

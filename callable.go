package indirect

import (
	"unsafe"
)

// Callable is a zero argument function without result.
type Callable func()

// As convert a code address into a function value of type T.
//
// T must be a func type whose signature matches the code at addr, otherwise the result is undefined.
func As[T any](addr uintptr) (x T) {
	fv := new(uintptr)
	*fv = addr
	x = *(*T)(unsafe.Pointer(&fv))
	return
}

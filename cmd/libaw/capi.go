package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/roach88/awbridge/internal/boundary"
)

// cHost passes NUL-terminated C strings. Strings it allocates are owned by
// the caller and must be released with aw_string_free.
type cHost struct{}

func (cHost) GetString(h boundary.Handle) (string, error) {
	return C.GoString((*C.char)(unsafe.Pointer(h))), nil
}

func (cHost) NewString(s string) (boundary.Handle, error) {
	return boundary.Handle(unsafe.Pointer(C.CString(s))), nil
}

//export aw_greeting
func aw_greeting(name *C.char) *C.char {
	h := bridge.Greet(cHost{}, boundary.Handle(unsafe.Pointer(name)))
	return (*C.char)(unsafe.Pointer(h))
}

//export aw_string_free
func aw_string_free(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// Package rawmem reads live process memory through unchecked pointers.
//
// Every conversion between unsafe.Pointer and uintptr in this module lives
// here. Nothing in this package validates that the span it is handed is
// mapped, aligned or still owned by the caller: reading past the end of an
// object is undefined behavior. Callers that cannot guarantee that should
// use the serialized path in pkg/snapshot instead.
package rawmem

import (
	"iter"
	"unsafe"
)

// Addr returns the numeric address of p.
func Addr(p unsafe.Pointer) uintptr {
	return uintptr(p)
}

// SliceAddr returns the address of the first element of b's backing array.
// For an empty slice the result is whatever the runtime left in the header,
// which may be zero.
func SliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// Walk yields exactly n consecutive bytes starting at base, one per step,
// paired with their addresses. Memory is read when the sequence is ranged
// over, not when Walk is called, so ranging twice may observe different
// bytes if the value changed in between.
func Walk(base unsafe.Pointer, n uintptr) iter.Seq2[uintptr, byte] {
	return func(yield func(uintptr, byte) bool) {
		for i := uintptr(0); i < n; i++ {
			p := unsafe.Add(base, i)
			if !yield(uintptr(p), *(*byte)(p)) {
				return
			}
		}
	}
}


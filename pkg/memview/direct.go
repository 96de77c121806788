package memview

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
	"unsafe"

	"github.com/willibrandon/memview/internal/rawmem"
)

// TypeName returns the Go spelling of T, e.g. "uint16" or "[]int32".
func TypeName[T any]() string {
	return strings.TrimPrefix(reflect.TypeFor[*T]().String(), "*")
}

func walk(base unsafe.Pointer, n uintptr) iter.Seq[ByteRecord] {
	return func(yield func(ByteRecord) bool) {
		for addr, b := range rawmem.Walk(base, n) {
			if !yield(ByteRecord{Addr: addr, Value: b}) {
				return
			}
		}
	}
}

// Walk yields a record for every byte of *v, read from v's own memory.
func Walk[T any](v *T) iter.Seq[ByteRecord] {
	if v == nil {
		panic(fmt.Sprintf("memview: Walk of nil *%s", TypeName[T]()))
	}
	return walk(unsafe.Pointer(v), unsafe.Sizeof(*v))
}

// Inspect builds a report over the unsafe.Sizeof(*v) bytes at v. For
// strings, slices, maps and pointers that is the header word(s), not the
// data they refer to; see InspectSlice and InspectString.
func Inspect[T any](name string, v *T) *Report {
	if v == nil {
		panic(fmt.Sprintf("memview: Inspect of nil *%s", TypeName[T]()))
	}

	size := unsafe.Sizeof(*v)
	base := unsafe.Pointer(v)
	md := Metadata{
		Name: name,
		Type: TypeName[T](),
		Addr: rawmem.Addr(base),
		Size: size,
	}
	return newReport(md, DirectLayout, walk(base, size))
}

// InspectSlice builds a report over the backing array of s: len(s) elements,
// not its capacity. The type is reported as an array of that length.
func InspectSlice[E any](name string, s []E) *Report {
	var zero E
	size := uintptr(len(s)) * unsafe.Sizeof(zero)
	base := unsafe.Pointer(unsafe.SliceData(s))
	md := Metadata{
		Name: name,
		Type: fmt.Sprintf("[%d]%s", len(s), TypeName[E]()),
		Addr: rawmem.Addr(base),
		Size: size,
	}
	return newReport(md, DirectLayout, walk(base, size))
}

// InspectString builds a report over the bytes of s.
func InspectString(name string, s string) *Report {
	size := uintptr(len(s))
	base := unsafe.Pointer(unsafe.StringData(s))
	md := Metadata{
		Name: name,
		Type: fmt.Sprintf("[%d]byte", len(s)),
		Addr: rawmem.Addr(base),
		Size: size,
	}
	return newReport(md, DirectLayout, walk(base, size))
}

package memview

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/willibrandon/memview/pkg/snapshot"
)

// InspectIsolated serializes *v into an isolation buffer and builds a
// report over that buffer instead of v's memory. Addresses in the report
// belong to the buffer, and for strings, slices and maps the size is that
// of the serialized data rather than the in-memory header.
//
// It fails, before anything could be printed, when v is nil or T (or
// anything T contains) is a pointer, unsafe.Pointer, channel, func or
// interface. The error wraps snapshot.ErrUnsupported.
func InspectIsolated[T any](name string, v *T, framing snapshot.Framing) (*Report, error) {
	if v == nil {
		return nil, fmt.Errorf("inspect %s: nil *%s: %w", name, TypeName[T](), snapshot.ErrUnsupported)
	}

	snap, err := snapshot.Take(reflect.ValueOf(v).Elem(), unsafe.Sizeof(*v), framing)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", name, err)
	}
	return isolatedReport(name, TypeName[T](), snap), nil
}

func isolatedReport(name, typ string, snap *snapshot.Snapshot) *Report {
	payload := snap.Payload()
	base := snap.PayloadAddr()
	md := Metadata{
		Name:          name,
		Type:          typ,
		Addr:          base,
		Size:          uintptr(len(payload)),
		Isolated:      true,
		ContainerAddr: snap.ContainerAddr(),
		ContainerLen:  len(snap.Container),
	}

	records := func(yield func(ByteRecord) bool) {
		for i, b := range payload {
			if !yield(ByteRecord{Addr: base + uintptr(i), Value: b}) {
				return
			}
		}
	}
	return newReport(md, IsolatedLayout, records)
}

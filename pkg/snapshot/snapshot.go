// Package snapshot copies values into isolation buffers.
//
// A Snapshot is the serialized form of a value (see Encode) together with a
// decision about how much of its front is a length header rather than
// value data. Inspecting a Snapshot never touches the original value's
// memory, so it is safe for values whose in-memory layout is not
// contiguous or not owned by the caller. The trade-off is that addresses
// and sizes describe the buffer, not the value.
package snapshot

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/willibrandon/memview/internal/rawmem"
)

// Framing decides whether the first HeaderSize bytes of an encoding are a
// length header to be dropped before display.
type Framing int

const (
	// HeuristicFraming drops the header when the encoding is at least
	// HeaderSize long and its length differs from the value's in-memory
	// size. Exact for scalars. A struct that begins with a string, slice
	// or map also loses its first field's length, and a container whose
	// encoding happens to match its header size keeps it. A padded struct
	// encodes shorter than it is in memory, so once its encoding reaches
	// HeaderSize its first eight bytes of field data are dropped.
	HeuristicFraming Framing = iota

	// ExplicitFraming drops the header only when the encoder wrote one at
	// offset zero, i.e. the value itself is a string, slice or map.
	ExplicitFraming
)

// String returns the flag spelling of the framing
func (f Framing) String() string {
	switch f {
	case HeuristicFraming:
		return "heuristic"
	case ExplicitFraming:
		return "explicit"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

// ParseFraming accepts the spellings produced by Framing.String.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heuristic":
		return HeuristicFraming, nil
	case "explicit":
		return ExplicitFraming, nil
	}
	return HeuristicFraming, fmt.Errorf("unknown framing %q (want heuristic or explicit)", s)
}

// Snapshot is an isolated, serialized copy of one value.
type Snapshot struct {
	// Container is the full encoding, header included.
	Container []byte
	// HeaderLen is the number of leading Container bytes that are not
	// shown: 0 or HeaderSize.
	HeaderLen int
	// Declared is the in-memory size of the value that was copied.
	Declared uintptr
	Framing  Framing
}

// Take serializes v and applies framing. declared is the in-memory size
// of v, used by HeuristicFraming.
func Take(v reflect.Value, declared uintptr, framing Framing) (*Snapshot, error) {
	buf, err := EncodeValue(v)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Container: buf,
		HeaderLen: headerLen(v.Kind(), len(buf), declared, framing),
		Declared:  declared,
		Framing:   framing,
	}, nil
}

func headerLen(kind reflect.Kind, encoded int, declared uintptr, framing Framing) int {
	if framing == ExplicitFraming {
		switch kind {
		case reflect.String, reflect.Slice, reflect.Map:
			return HeaderSize
		}
		return 0
	}

	if encoded >= HeaderSize && uintptr(encoded) != declared {
		return HeaderSize
	}
	return 0
}

// Payload returns the displayed part of the buffer.
func (s *Snapshot) Payload() []byte {
	return s.Container[s.HeaderLen:]
}

// ContainerAddr is the address of the first byte of the full encoding.
func (s *Snapshot) ContainerAddr() uintptr {
	return rawmem.SliceAddr(s.Container)
}

// PayloadAddr is the address of the first displayed byte.
func (s *Snapshot) PayloadAddr() uintptr {
	return s.ContainerAddr() + uintptr(s.HeaderLen)
}

// Stripped reports whether a header was dropped.
func (s *Snapshot) Stripped() bool {
	return s.HeaderLen > 0
}

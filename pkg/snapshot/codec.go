package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"unsafe"
)

// HeaderSize is the width of the little-endian length written ahead of
// every string, slice and map.
const HeaderSize = 8

// ErrUnsupported is returned for values whose type has no serialized form.
var ErrUnsupported = errors.New("value is not serializable")

// Encode serializes v into a freshly allocated buffer.
//
// The format is little-endian with no padding: scalars at their natural
// width (int, uint and uintptr at the platform word size), strings, slices
// and maps behind an 8-byte length, arrays and structs as their elements in
// order. Map entries are ordered by their encoded keys so equal maps encode
// identically.
//
// Pointers, unsafe.Pointer, channels, funcs and interfaces are rejected
// anywhere in the type, even inside an empty container. A map or slice
// that contains itself is rejected when the encoder reaches it again.
func Encode(v any) ([]byte, error) {
	return EncodeValue(reflect.ValueOf(v))
}

// EncodeValue is Encode for a value already held as a reflect.Value. It is
// the entry point for callers that must keep a static interface type from
// being replaced by its dynamic type.
func EncodeValue(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: nil value", ErrUnsupported)
	}

	p := planFor(v.Type())
	if p.err != nil {
		return nil, p.err
	}

	size := p.fixed
	if size < 0 {
		size = 64
	}
	var enc encoder
	if p.recursive {
		enc.active = make(map[visitKey]bool)
	}
	return enc.appendValue(make([]byte, 0, size), v)
}

// visitKey identifies a map or slice by what it shares with its copies.
type visitKey struct {
	ptr unsafe.Pointer
	len int
	typ reflect.Type
}

// encoder carries the maps and slices currently being encoded. active is
// nil for types that cannot refer to themselves.
type encoder struct {
	active map[visitKey]bool
}

// enter marks v as being encoded. The returned func unmarks it; shared
// references that do not loop are encoded once per occurrence.
func (e *encoder) enter(v reflect.Value) (func(), error) {
	if e.active == nil || v.Len() == 0 {
		return func() {}, nil
	}
	key := visitKey{ptr: v.UnsafePointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.len = v.Len()
	}
	if e.active[key] {
		return nil, fmt.Errorf("%w: cyclic %s", ErrUnsupported, v.Type())
	}
	e.active[key] = true
	return func() { delete(e.active, key) }, nil
}

func appendLen(buf []byte, n int) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(n))
}

func appendWord(buf []byte, x uint64, size uintptr) []byte {
	if size == 4 {
		return binary.LittleEndian.AppendUint32(buf, uint32(x))
	}
	return binary.LittleEndian.AppendUint64(buf, x)
}

func (e *encoder) appendValue(buf []byte, v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil

	case reflect.Int8:
		return append(buf, byte(v.Int())), nil
	case reflect.Int16:
		return binary.LittleEndian.AppendUint16(buf, uint16(v.Int())), nil
	case reflect.Int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(v.Int())), nil
	case reflect.Int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(v.Int())), nil
	case reflect.Int:
		return appendWord(buf, uint64(v.Int()), v.Type().Size()), nil

	case reflect.Uint8:
		return append(buf, byte(v.Uint())), nil
	case reflect.Uint16:
		return binary.LittleEndian.AppendUint16(buf, uint16(v.Uint())), nil
	case reflect.Uint32:
		return binary.LittleEndian.AppendUint32(buf, uint32(v.Uint())), nil
	case reflect.Uint64:
		return binary.LittleEndian.AppendUint64(buf, v.Uint()), nil
	case reflect.Uint, reflect.Uintptr:
		return appendWord(buf, v.Uint(), v.Type().Size()), nil

	case reflect.Float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v.Float()))), nil
	case reflect.Float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Float())), nil

	case reflect.Complex64:
		c := v.Complex()
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(real(c))))
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(imag(c)))), nil
	case reflect.Complex128:
		c := v.Complex()
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(real(c)))
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(imag(c))), nil

	case reflect.String:
		s := v.String()
		buf = appendLen(buf, len(s))
		return append(buf, s...), nil

	case reflect.Slice:
		buf = appendLen(buf, v.Len())
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return append(buf, v.Bytes()...), nil
		}
		leave, err := e.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
		return e.appendElems(buf, v)

	case reflect.Array:
		return e.appendElems(buf, v)

	case reflect.Struct:
		var err error
		for i := 0; i < v.NumField(); i++ {
			if buf, err = e.appendValue(buf, v.Field(i)); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case reflect.Map:
		leave, err := e.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
		return e.appendMap(buf, v)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, v.Type())
}

func (e *encoder) appendElems(buf []byte, v reflect.Value) ([]byte, error) {
	var err error
	for i := 0; i < v.Len(); i++ {
		if buf, err = e.appendValue(buf, v.Index(i)); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

type mapEntry struct {
	key, val []byte
}

func (e *encoder) appendMap(buf []byte, v reflect.Value) ([]byte, error) {
	entries := make([]mapEntry, 0, v.Len())
	it := v.MapRange()
	for it.Next() {
		k, err := e.appendValue(nil, it.Key())
		if err != nil {
			return nil, err
		}
		val, err := e.appendValue(nil, it.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, mapEntry{key: k, val: val})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int {
		return bytes.Compare(a.key, b.key)
	})

	buf = appendLen(buf, len(entries))
	for _, e := range entries {
		buf = append(buf, e.key...)
		buf = append(buf, e.val...)
	}
	return buf, nil
}

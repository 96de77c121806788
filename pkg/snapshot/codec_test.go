package snapshot

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packed struct {
	A uint8
	B uint16
	C uint32
}

type private struct {
	a uint8
	s string
}

type tree struct {
	Kids []tree
	V    uint8
}

type selfMap map[string]selfMap

type selfSlice []selfSlice

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []byte
	}{
		{"bool", true, []byte{0x01}},
		{"int8", int8(-2), []byte{0xfe}},
		{"uint16", uint16(69), []byte{0x45, 0x00}},
		{"int32", int32(-1), []byte{0xff, 0xff, 0xff, 0xff}},
		{"uint64", uint64(69), []byte{0x45, 0, 0, 0, 0, 0, 0, 0}},
		{"float32", float32(3.14), []byte{0xc3, 0xf5, 0x48, 0x40}},
		{"float64", float64(1), []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}},
		{"complex64", complex64(1 + 2i), []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40}},
		{"string", "Hello", []byte{5, 0, 0, 0, 0, 0, 0, 0, 'H', 'e', 'l', 'l', 'o'}},
		{"bytes", []byte{0xde, 0xad}, []byte{2, 0, 0, 0, 0, 0, 0, 0, 0xde, 0xad}},
		{"slice", []int32{69, 255}, []byte{
			2, 0, 0, 0, 0, 0, 0, 0,
			0x45, 0, 0, 0,
			0xff, 0, 0, 0,
		}},
		{"array", [2]uint16{1, 2}, []byte{1, 0, 2, 0}},
		{"struct", packed{A: 69, B: 255, C: 70}, []byte{0x45, 0xff, 0x00, 0x46, 0, 0, 0}},
		{"unexported fields", private{a: 7, s: "x"}, []byte{7, 1, 0, 0, 0, 0, 0, 0, 0, 'x'}},
		{"map", map[string]uint8{"b": 2, "a": 1}, []byte{
			2, 0, 0, 0, 0, 0, 0, 0,
			1, 0, 0, 0, 0, 0, 0, 0, 'a', 1,
			1, 0, 0, 0, 0, 0, 0, 0, 'b', 2,
		}},
		{"recursive", tree{V: 1, Kids: []tree{{V: 2}}}, []byte{
			1, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 2,
			1,
		}},
		{"empty slice", []uint32{}, []byte{0, 0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeNativeWord(t *testing.T) {
	got, err := Encode(int(-1))
	require.NoError(t, err)
	assert.Len(t, got, strconv.IntSize/8)
	for _, b := range got {
		assert.Equal(t, byte(0xff), b)
	}

	got, err = Encode(uintptr(1))
	require.NoError(t, err)
	assert.Len(t, got, int(unsafe.Sizeof(uintptr(0))))
}

func TestEncodeRejectsUnserializable(t *testing.T) {
	x := 69

	m := selfMap{}
	m["self"] = m
	sl := make(selfSlice, 1)
	sl[0] = sl
	loop := tree{Kids: make([]tree, 1)}
	loop.Kids[0] = loop

	tests := []struct {
		name    string
		in      any
		mention string
	}{
		{"nil", nil, "nil value"},
		{"pointer", &x, "*int"},
		{"unsafe pointer", unsafe.Pointer(&x), "unsafe.Pointer"},
		{"chan", make(chan int), "chan int"},
		{"func", func() {}, "func()"},
		{"interface elements", []any{1}, "interface {}"},
		{"empty slice of pointers", []*int{}, "*int"},
		{"struct field", struct{ P *int }{}, "field P"},
		{"map values", map[string]*int{}, "*int"},
		{"map keys", map[*int]int{}, "map key"},
		{"map holding itself", m, "cyclic snapshot.selfMap"},
		{"slice holding itself", sl, "cyclic snapshot.selfSlice"},
		{"struct slice holding its owner", loop, "cyclic []snapshot.tree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrUnsupported), "error %v should wrap ErrUnsupported", err)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestEncodeValueKeepsStaticInterfaceType(t *testing.T) {
	var v any = uint16(69)

	_, err := EncodeValue(reflect.ValueOf(&v).Elem())
	assert.ErrorIs(t, err, ErrUnsupported)

	got, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x45, 0x00}, got)
}

func TestEncodeMapIsDeterministic(t *testing.T) {
	m := map[uint16]string{}
	for i := 0; i < 64; i++ {
		m[uint16(i*7)] = strconv.Itoa(i)
	}

	first, err := Encode(m)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Encode(m)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeSharedReferences(t *testing.T) {
	inner := selfMap{"x": nil}
	m := selfMap{"a": inner, "b": inner}

	got, err := Encode(m)
	require.NoError(t, err)

	entry := []byte{
		1, 0, 0, 0, 0, 0, 0, 0, 'x',
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	want := []byte{2, 0, 0, 0, 0, 0, 0, 0}
	for _, k := range []byte{'a', 'b'} {
		want = append(want, 1, 0, 0, 0, 0, 0, 0, 0, k)
		want = append(want, 1, 0, 0, 0, 0, 0, 0, 0)
		want = append(want, entry...)
	}
	assert.Equal(t, want, got)
}

func TestFixedSize(t *testing.T) {
	tests := []struct {
		typ   reflect.Type
		size  int
		fixed bool
	}{
		{reflect.TypeFor[uint16](), 2, true},
		{reflect.TypeFor[packed](), 7, true},
		{reflect.TypeFor[[3]int32](), 12, true},
		{reflect.TypeFor[complex128](), 16, true},
		{reflect.TypeFor[string](), 0, false},
		{reflect.TypeFor[private](), 0, false},
		{reflect.TypeFor[[2]string](), 0, false},
		{reflect.TypeFor[*int](), 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		size, fixed := FixedSize(tt.typ)
		assert.Equal(t, tt.fixed, fixed, "%v", tt.typ)
		assert.Equal(t, tt.size, size, "%v", tt.typ)
	}
}

func TestSupportedIsCached(t *testing.T) {
	typ := reflect.TypeFor[struct{ C chan int }]()

	first := Supported(typ)
	require.ErrorIs(t, first, ErrUnsupported)
	assert.True(t, plans.Contains(typ))
	assert.Equal(t, first, Supported(typ))

	assert.NoError(t, Supported(reflect.TypeFor[tree]()))
	assert.ErrorIs(t, Supported(nil), ErrUnsupported)
}

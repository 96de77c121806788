package snapshot

import (
	"encoding/binary"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func take(t *testing.T, v any, framing Framing) *Snapshot {
	t.Helper()
	rv := reflect.ValueOf(v)
	s, err := Take(rv, rv.Type().Size(), framing)
	require.NoError(t, err)
	return s
}

func TestHeuristicFraming(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		header  int
		payload int
	}{
		{"scalar", uint16(69), 0, 2},
		{"word scalar", uint64(69), 0, 8},
		{"string", "Hello", HeaderSize, 5},
		{"slice", []int32{69, 255, 254, 253, 70}, HeaderSize, 20},
		{"struct shorter than header", packed{A: 69, B: 255, C: 70}, 0, 7},
		// 8 + 4*4 happens to equal the 24-byte slice header.
		{"slice matching header size", []int32{1, 2, 3, 4}, 0, 24},
		// The first field's length prefix is mistaken for a header.
		{"struct led by string", struct {
			S string
			N uint64
		}{"ab", 1}, HeaderSize, 10},
		// 12 encoded bytes against 16 in memory: A and half of B are dropped.
		{"padded struct", struct {
			A uint32
			B uint64
		}{0x11223344, 0x5566778899aabbcc}, HeaderSize, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := take(t, tt.in, HeuristicFraming)
			assert.Equal(t, tt.header, s.HeaderLen)
			assert.Len(t, s.Payload(), tt.payload)
			assert.Equal(t, tt.header > 0, s.Stripped())
		})
	}
}

func TestHeuristicFramingPaddedStruct(t *testing.T) {
	v := struct {
		A uint32
		B uint64
	}{0x11223344, 0x5566778899aabbcc}

	s := take(t, v, HeuristicFraming)
	assert.Len(t, s.Container, 12)
	assert.Equal(t, []byte{0x88, 0x77, 0x66, 0x55}, s.Payload())

	s = take(t, v, ExplicitFraming)
	assert.Equal(t, 0, s.HeaderLen)
	assert.Len(t, s.Payload(), 12)
}

func TestExplicitFraming(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		header int
	}{
		{"scalar", uint64(69), 0},
		{"string", "Hello", HeaderSize},
		{"slice matching header size", []int32{1, 2, 3, 4}, HeaderSize},
		{"empty slice", []int32{}, HeaderSize},
		{"map", map[uint8]uint8{1: 2}, HeaderSize},
		{"struct led by string", struct {
			S string
			N uint64
		}{"ab", 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := take(t, tt.in, ExplicitFraming)
			assert.Equal(t, tt.header, s.HeaderLen)
			assert.Equal(t, ExplicitFraming, s.Framing)
		})
	}
}

func TestSnapshotStringPayload(t *testing.T) {
	s := take(t, "Hello", HeuristicFraming)

	assert.Equal(t, []byte("Hello"), s.Payload())
	assert.Len(t, s.Container, HeaderSize+5)
	assert.Equal(t, s.ContainerAddr()+HeaderSize, s.PayloadAddr())
	assert.Equal(t, unsafe.Sizeof(""), s.Declared)
}

func TestTakeRejectsPointers(t *testing.T) {
	x := 1
	rv := reflect.ValueOf(&x)
	s, err := Take(rv, rv.Type().Size(), HeuristicFraming)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, s)
}

func TestParseFraming(t *testing.T) {
	for _, f := range []Framing{HeuristicFraming, ExplicitFraming} {
		got, err := ParseFraming(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseFraming(" Explicit ")
	require.NoError(t, err)
	assert.Equal(t, ExplicitFraming, got)

	got, err = ParseFraming("")
	require.NoError(t, err)
	assert.Equal(t, HeuristicFraming, got)

	_, err = ParseFraming("bincode")
	assert.Error(t, err)
	assert.Equal(t, "Framing(7)", Framing(7).String())
}

func TestScalarNeverStripped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint32().Draw(t, "x")
		rv := reflect.ValueOf(x)

		s, err := Take(rv, unsafe.Sizeof(x), HeuristicFraming)
		require.NoError(t, err)
		assert.Equal(t, 0, s.HeaderLen)
		assert.Equal(t, binary.LittleEndian.AppendUint32(nil, x), s.Payload())
	})
}

func TestByteSliceHeuristic(t *testing.T) {
	declared := unsafe.Sizeof([]byte(nil))

	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOf(rapid.Byte()).Draw(t, "in")

		s, err := Take(reflect.ValueOf(in), declared, HeuristicFraming)
		require.NoError(t, err)

		encoded := HeaderSize + len(in)
		if uintptr(encoded) != declared {
			assert.Equal(t, HeaderSize, s.HeaderLen)
			assert.Equal(t, in, s.Payload())
		} else {
			assert.Equal(t, 0, s.HeaderLen)
			assert.Len(t, s.Payload(), encoded)
		}
	})
}

package memview

import "fmt"

// ByteRecord is one byte of an inspected span and the address it was read
// from.
type ByteRecord struct {
	Addr  uintptr
	Value byte
}

// Hex returns the byte as two lowercase hex digits.
func (r ByteRecord) Hex() string { return fmt.Sprintf("%02x", r.Value) }

// Dec returns the byte in decimal, zero padded to three digits.
func (r ByteRecord) Dec() string { return fmt.Sprintf("%03d", r.Value) }

// Bin returns the byte as eight binary digits.
func (r ByteRecord) Bin() string { return fmt.Sprintf("%08b", r.Value) }

// Label returns the symbolic ASCII name of the byte.
func (r ByteRecord) Label() string { return Label(r.Value) }

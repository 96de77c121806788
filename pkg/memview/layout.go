package memview

import (
	"fmt"
	"strings"
)

// Layout is the header, divider and row shape of a byte table. The two
// pipelines use different layouts so their output cannot be confused.
type Layout struct {
	Header  string
	Divider string

	addrDigits int
	addrMargin string
}

var (
	// DirectLayout renders spans read straight from a value's memory.
	DirectLayout = Layout{
		Header:     "      Address     | Hex  | Dec |    Bin     | ASCII",
		Divider:    strings.Repeat("-", 51),
		addrDigits: 14,
		addrMargin: " ",
	}

	// IsolatedLayout renders isolation buffers. Addresses are the buffer's,
	// so the column is labelled accordingly and drawn wider.
	IsolatedLayout = Layout{
		Header:     "   Isolated Address   | Hex  | Dec |    Bin     | ASCII",
		Divider:    strings.Repeat("=", 55),
		addrDigits: 16,
		addrMargin: "  ",
	}
)

// FormatAddr renders an address at the layout's fixed width.
func (l Layout) FormatAddr(addr uintptr) string {
	return fmt.Sprintf("0x%0*x", l.addrDigits, addr)
}

// FormatRow renders one table line, without the trailing newline.
func (l Layout) FormatRow(r ByteRecord) string {
	return fmt.Sprintf("%s%s%s| 0x%s | %s | 0b%s |  %-*s",
		l.addrMargin, l.FormatAddr(r.Addr), l.addrMargin,
		r.Hex(), r.Dec(), r.Bin(), labelWidth, r.Label())
}

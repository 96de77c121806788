package memview

// UnknownLabel marks bytes outside 7-bit ASCII.
const UnknownLabel = "..."

// labelWidth is the column width every label is padded to.
const labelWidth = 3

var controlLabels = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Label returns the symbolic ASCII name of b: the C0 mnemonic for 0-31,
// "SPC" for a space, "DEL" for 127, the character itself for the rest of
// printable ASCII and UnknownLabel above 127.
func Label(b byte) string {
	switch {
	case b < 32:
		return controlLabels[b]
	case b == ' ':
		return "SPC"
	case b == 0x7f:
		return "DEL"
	case b > 0x7f:
		return UnknownLabel
	}
	return string(rune(b))
}

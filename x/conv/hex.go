package conv

const hexd = "0123456789ABCDEF"

// AppendByteHex appends two uppercase hex digits without 0x.
func AppendByteHex(dst []byte, b byte) []byte {
	return append(dst, hexd[b>>4], hexd[b&0xF])
}

// HexNibble decodes one hex digit; ok=false on a non-hex byte.
func HexNibble(c byte) (v byte, ok bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// HexByte decodes two hex digits.
func HexByte(hi, lo byte) (byte, bool) {
	h, ok1 := HexNibble(hi)
	l, ok2 := HexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

// Package commonbytes holds the 256-bit common/uncommon byte-value table
// used by the pattern-weights byte-value weight space (spec.md §3, §6.3).
//
// The table is part of the compiler's ABI: two conforming implementations
// that disagree on which bytes are "common" will build differently-shaped
// scan trees, even though both trees remain sound and complete. The table
// is reproduced bit-for-bit, including the three historical values 0x00,
// 0x01 and 0x08 — see DESIGN.md.
package commonbytes

// table marks each of the 256 byte values as common (true) or uncommon
// (false). Common bytes are the ones the signature compiler treats as poor
// discriminators: printable ASCII letters and digits, a handful of
// whitespace controls, space, 0xFF, and the three historical values
// 0x00/0x01/0x08.
var table = buildTable()

func buildTable() [256]bool {
	var t [256]bool

	t[0x09] = true // \t
	t[0x0A] = true // \n
	t[0x0D] = true // \r
	t[0x20] = true // space
	t[0xFF] = true

	for b := byte('0'); b <= '9'; b++ {
		t[b] = true
	}
	for b := byte('A'); b <= 'Z'; b++ {
		t[b] = true
	}
	for b := byte('a'); b <= 'z'; b++ {
		t[b] = true
	}

	// Historical values: common even though they are not text bytes; see
	// DESIGN.md.
	t[0x00] = true
	t[0x01] = true
	t[0x08] = true

	return t
}

// IsCommon reports whether b is in the common set. Uncommon bytes are the
// ones that contribute to an offset's byte-value weight (spec.md §4.3.1):
// an offset dominated by uncommon byte values makes a better discriminator.
func IsCommon(b byte) bool {
	return table[b]
}

// IsUncommon is the complement of IsCommon, spelled out at call sites that
// read more naturally in the negative (the compiler's weight accounting
// adds weight for uncommon bytes, not common ones).
func IsUncommon(b byte) bool {
	return !table[b]
}

// Package simd provides fast byte-level search primitives for the unbound
// scan path: single-byte search (Memchr) and substring search (Memmem).
//
// The package is pure Go, using SWAR (SIMD Within A Register) techniques to
// process 8 bytes per iteration via uint64 bitwise operations rather than
// true vector instructions. It backs the scanner's single-signature fast
// path: when exactly one UNBOUND signature is registered and Aho-Corasick
// is not in use, the scan state finds its occurrences with Memmem instead
// of walking the scan tree.
package simd

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack. Equivalent to bytes.IndexByte,
// implemented with the SWAR zero-byte detection trick for throughput on the
// scan state's internal buffer.
func Memchr(haystack []byte, needle byte) int {
	return memchrGeneric(haystack, needle)
}

// Memchr2 returns the index of the first instance of either needle1 or
// needle2 in haystack, or -1 if neither is present.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	return memchr2Generic(haystack, needle1, needle2)
}

// Memchr3 returns the index of the first instance of needle1, needle2, or
// needle3 in haystack, or -1 if none are present.
func Memchr3(haystack []byte, needle1, needle2, needle3 byte) int {
	return memchr3Generic(haystack, needle1, needle2, needle3)
}

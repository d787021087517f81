// Package sigtable implements the signature table for one scan space
// (header, footer, or unbound): the offset -> byte-value -> signatures
// inversion the scan-tree compiler queries at every recursion step
// (spec.md §4.2, §4.3.1).
//
// Grounded on the reference library's three-layer libsigscan_offsets_list /
// libsigscan_offset_group / libsigscan_byte_value_group split (see
// SPEC_FULL.md, Supplemented Features). This port keeps the same shape:
// Table holds an ordered list of offsets with one group per offset
// (offsets, groups), each group fans out by the byte value found at that
// offset (ByteValueGroup), and each byte value carries the set of
// signatures that put it there.
package sigtable

import (
	"sort"

	"github.com/coregx/sigscan/internal/sig"
)

// Space selects which of a signature's anchoring rules produced the
// offsets indexed by a Table (spec.md §4.2).
type Space int

const (
	// Header indexes BOUND_TO_START signatures; offset = PatternOffset + i.
	Header Space = iota
	// Footer indexes BOUND_TO_END signatures; offset = (windowSize - PatternOffset) + i.
	Footer
	// Unbound indexes UNBOUND signatures; offset = i (all signatures share offset base 0).
	Unbound
)

// ByteValueGroup holds every byte value found at one offset, each mapped
// to the signatures that put it there (libsigscan_byte_value_group).
type ByteValueGroup struct {
	Offset int64
	byByte map[byte][]*sig.Signature
}

// Bytes returns the distinct byte values present at this offset, sorted
// ascending for deterministic iteration.
func (g *ByteValueGroup) Bytes() []byte {
	out := make([]byte, 0, len(g.byByte))
	for b := range g.byByte {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SignaturesAt returns the signatures that put byte value b at this
// group's offset.
func (g *ByteValueGroup) SignaturesAt(b byte) []*sig.Signature {
	return g.byByte[b]
}

// Table is the signature table for one scan space: every offset any
// signature in the space constrains, each fanned out to the byte values
// and signatures found there (libsigscan_offsets_list).
type Table struct {
	space      Space
	offsets    []int64 // ascending, deduplicated
	groups     map[int64]*ByteValueGroup
	signatures []*sig.Signature          // flat, deduplicated set of every signature in the table
	byOffsets  map[*sig.Signature][]int64 // per-signature offsets it contributes to, for pin-tracking
}

// Offsets returns every offset the table indexes, ascending.
func (t *Table) Offsets() []int64 {
	return t.offsets
}

// GroupAt returns the byte-value group recorded at offset, if any.
func (t *Table) GroupAt(offset int64) (*ByteValueGroup, bool) {
	g, ok := t.groups[offset]
	return g, ok
}

// Signatures returns the flat, deduplicated set of signatures indexed by
// the table (SUPPLEMENTED FEATURES item 4: signatures array vs list duality).
func (t *Table) Signatures() []*sig.Signature {
	return t.signatures
}

// OffsetsFor returns the offsets within offs that signature s contributes
// a byte to — used by the scan-tree compiler to decide whether a
// singleton working set has any of its bytes still unresolved
// (spec.md §4.3.3, "no further unresolved bytes").
func (t *Table) OffsetsFor(s *sig.Signature) []int64 {
	return t.byOffsets[s]
}

// windowOffset computes the table offset for the i-th pattern byte of a
// signature in the given scan space (spec.md §4.2).
func windowOffset(space Space, s *sig.Signature, i int, footerWindowSize int64) int64 {
	switch space {
	case Header:
		return s.PatternOffset + int64(i)
	case Footer:
		return (footerWindowSize - s.PatternOffset) + int64(i)
	default: // Unbound
		return int64(i)
	}
}

// Build constructs the signature table for one scan space from the given
// signatures (already filtered by the caller to those belonging to this
// space). footerWindowSize is only consulted for Space == Footer.
// ignoreOffsets, if non-nil, prunes specific offsets from the table entirely
// — used when building the unbound table to avoid re-indexing positions
// already covered by the header or footer trees (spec.md §4.2).
func Build(signatures []*sig.Signature, space Space, footerWindowSize int64, ignoreOffsets map[int64]bool) *Table {
	t := &Table{
		space:     space,
		groups:    make(map[int64]*ByteValueGroup),
		byOffsets: make(map[*sig.Signature][]int64),
	}

	offsetSet := make(map[int64]struct{})
	seen := make(map[*sig.Signature]bool)

	for _, s := range signatures {
		if !seen[s] {
			seen[s] = true
			t.signatures = append(t.signatures, s)
		}
		for i, b := range s.Pattern {
			offset := windowOffset(space, s, i, footerWindowSize)
			if ignoreOffsets != nil && ignoreOffsets[offset] {
				continue
			}
			g, ok := t.groups[offset]
			if !ok {
				g = &ByteValueGroup{Offset: offset, byByte: make(map[byte][]*sig.Signature)}
				t.groups[offset] = g
				offsetSet[offset] = struct{}{}
			}
			g.byByte[b] = append(g.byByte[b], s)
			t.byOffsets[s] = append(t.byOffsets[s], offset)
		}
	}

	t.offsets = make([]int64, 0, len(offsetSet))
	for o := range offsetSet {
		t.offsets = append(t.offsets, o)
	}
	sort.Slice(t.offsets, func(i, j int) bool { return t.offsets[i] < t.offsets[j] })

	return t
}

// Package skiptable implements the Boyer-Moore-Horspool bad-character
// skip table used to decide how far the unbound scan window can safely
// advance once it has been verified not to match (spec.md §4.4).
//
// Grounded on the reference library's libsigscan_skip_table, which fills
// a 256-entry table from the shortest UNBOUND pattern length and every
// UNBOUND signature's closest-to-the-end byte occurrences, excluding
// each pattern's own final byte (the position Horspool never uses to
// compute a shift, since the window must already have been compared
// there).
package skiptable

import "github.com/coregx/sigscan/internal/sig"

// Table is a 256-entry Horspool bad-character skip table: the shift
// distance safe to apply after a scan window has already been verified
// not to match. A zero entry means the byte never occurs anywhere a
// shift could be computed from (spec.md §4.4's "treat 0 as skip by
// smallest_pattern_size" is not followed here — see scan_state.go's
// scanUnboundSkipTable for why the shift is only ever trusted post-verification).
type Table struct {
	shortest int
	skip     [256]int
}

// Build constructs the skip table from the UNBOUND signatures in the
// scan space. Signatures with BOUND_TO_START or BOUND_TO_END flags are
// ignored — anchored signatures are located by the scan trees, not the
// skip table.
func Build(signatures []*sig.Signature) *Table {
	t := &Table{}

	shortest := -1
	for _, s := range signatures {
		if s.Flags != sig.Unbound {
			continue
		}
		if shortest == -1 || s.Size() < shortest {
			shortest = s.Size()
		}
	}
	if shortest <= 0 {
		shortest = 1
	}
	t.shortest = shortest

	for _, s := range signatures {
		if s.Flags != sig.Unbound {
			continue
		}
		size := s.Size()
		// Every byte position but the pattern's own final one can set a
		// shift distance; only distances within reach of the shortest
		// pattern length are usable, and the closest occurrence to the
		// pattern's end wins.
		for i := 0; i < size-1; i++ {
			d := size - 1 - i
			if d > shortest {
				continue
			}
			b := s.Pattern[i]
			if t.skip[b] == 0 || d < t.skip[b] {
				t.skip[b] = d
			}
		}
	}

	return t
}

// Skip returns the shift distance recorded for b, or 0 if none was
// recorded.
func (t *Table) Skip(b byte) int {
	return t.skip[b]
}

// ShortestPattern returns the length of the shortest UNBOUND pattern the
// table was built from — the minimum window size a scan needs to
// consider before consulting the skip table.
func (t *Table) ShortestPattern() int {
	return t.shortest
}

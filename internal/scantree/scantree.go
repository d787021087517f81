// Package scantree compiles a signature table into a scan tree: a
// recursive, weighted decision tree that picks, at each node, the single
// offset within a working set of signatures that best discriminates
// between them (spec.md §4.3).
//
// Grounded on the reference library's libsigscan_scan_tree_node build
// algorithm and the three pattern-weight spaces it maintains while
// choosing each node's offset (libsigscan_pattern_weights, ported as
// internal/weights). The "default" slot and the relaxation that lets a
// terminal carry more than one signature are this port's own additions —
// see DESIGN.md.
package scantree

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/coregx/sigscan/internal/commonbytes"
	"github.com/coregx/sigscan/internal/sig"
	"github.com/coregx/sigscan/internal/sigtable"
	"github.com/coregx/sigscan/internal/weights"
)

// Node is one decision point in the tree: the scanner reads the byte at
// PatternOffset and follows Children[b], or Default if no signature in
// this node's working set constrained that byte value.
type Node struct {
	PatternOffset int64
	Children      map[byte]*Slot
	Default       *Slot
}

// Slot is the tagged union stored at every tree position (SUPPLEMENTED
// FEATURES item 5): exactly one of Node or Signatures is non-nil/non-empty,
// or both are empty/nil, representing no match possible down this path.
type Slot struct {
	Node       *Node
	Signatures []*sig.Signature
}

func emptySlot() *Slot { return &Slot{} }

// MaxOffset returns the largest PatternOffset reachable anywhere in the
// tree rooted at slot, or -1 if the tree contains no decision nodes (a
// bare terminal or empty root). The unbound scanner uses this to size
// its look-ahead window: a candidate position needs at least
// MaxOffset()+1 bytes available before the tree can be fully resolved.
func MaxOffset(slot *Slot) int64 {
	if slot == nil || slot.Node == nil {
		return -1
	}
	max := slot.Node.PatternOffset
	if d := MaxOffset(slot.Node.Default); d > max {
		max = d
	}
	for _, child := range slot.Node.Children {
		if d := MaxOffset(child); d > max {
			max = d
		}
	}
	return max
}

// IsEmpty reports whether this slot can never yield a match.
func (s *Slot) IsEmpty() bool {
	return s.Node == nil && len(s.Signatures) == 0
}

// Build compiles the scan tree for every signature in table, starting
// from the full signature set and offset list (spec.md §4.3.4).
func Build(table *sigtable.Table) *Slot {
	return buildSlot(table, table.Signatures(), newOffsetSet(table.Offsets()))
}

// offsetSet is the "remaining offsets" threaded through the recursion:
// the offsets not yet consumed as a decision point on the current path,
// kept both ordered (for deterministic tie-breaking) and as a set (for
// O(1) membership checks against a single signature's own offsets).
type offsetSet struct {
	ordered []int64
	present map[int64]struct{}
}

func newOffsetSet(offsets []int64) *offsetSet {
	present := make(map[int64]struct{}, len(offsets))
	for _, o := range offsets {
		present[o] = struct{}{}
	}
	return &offsetSet{ordered: offsets, present: present}
}

func (os *offsetSet) without(offset int64) *offsetSet {
	ordered := make([]int64, 0, len(os.ordered))
	present := make(map[int64]struct{}, len(os.present))
	for _, o := range os.ordered {
		if o == offset {
			continue
		}
		ordered = append(ordered, o)
		present[o] = struct{}{}
	}
	return &offsetSet{ordered: ordered, present: present}
}

func (os *offsetSet) intersectsAny(offsets []int64) bool {
	for _, o := range offsets {
		if _, ok := os.present[o]; ok {
			return true
		}
	}
	return false
}

// buildSlot recursively builds the scan tree for workingSet, considering
// only offsets still present in remaining (spec.md §4.3.3, §4.3.4).
func buildSlot(table *sigtable.Table, workingSet []*sig.Signature, remaining *offsetSet) *Slot {
	if len(workingSet) == 0 {
		return emptySlot()
	}

	// Nothing left to discriminate by: every remaining signature is a
	// terminal, whether there is one (the common case) or more than one
	// (distinct identifiers sharing a byte-identical pattern — spec.md
	// never fully resolves this; see DESIGN.md).
	if len(remaining.ordered) == 0 {
		return &Slot{Signatures: workingSet}
	}

	if len(workingSet) == 1 {
		s := workingSet[0]
		if !remaining.intersectsAny(table.OffsetsFor(s)) {
			return &Slot{Signatures: workingSet}
		}
	}

	offset, ok := pickOffset(table, workingSet, remaining.ordered)
	if !ok {
		// Defensive: no offset distinguishes anything further in the
		// working set. Treat the whole set as terminal rather than loop.
		return &Slot{Signatures: workingSet}
	}

	group, _ := table.GroupAt(offset)
	inSet := toSet(workingSet)

	node := &Node{PatternOffset: offset, Children: make(map[byte]*Slot)}
	consumed := make(map[*sig.Signature]bool, len(workingSet))
	nextRemaining := remaining.without(offset)

	for _, b := range group.Bytes() {
		var partition []*sig.Signature
		for _, s := range group.SignaturesAt(b) {
			if inSet[s] {
				partition = append(partition, s)
				consumed[s] = true
			}
		}
		if len(partition) == 0 {
			continue
		}
		node.Children[b] = buildSlot(table, partition, nextRemaining)
	}

	var unconstrained []*sig.Signature
	for _, s := range workingSet {
		if !consumed[s] {
			unconstrained = append(unconstrained, s)
		}
	}
	if len(unconstrained) > 0 {
		node.Default = buildSlot(table, unconstrained, nextRemaining)
	} else {
		node.Default = emptySlot()
	}

	return &Slot{Node: node}
}

// Dump writes a human-readable rendering of slot to w, one line per
// decision node or terminal, indented by tree depth. Grounded on the
// original library's libsigscan_debug_print_scan_tree, a diagnostic
// affordance carried here without its C formatting.
func Dump(w io.Writer, slot *Slot) {
	dump(w, slot, 0)
}

func dump(w io.Writer, slot *Slot, depth int) {
	indent := strings.Repeat("  ", depth)
	if slot == nil || slot.IsEmpty() {
		fmt.Fprintf(w, "%s(empty)\n", indent)
		return
	}
	if slot.Node == nil {
		ids := make([]string, len(slot.Signatures))
		for i, sg := range slot.Signatures {
			ids[i] = sg.Identifier
		}
		fmt.Fprintf(w, "%s-> %s\n", indent, strings.Join(ids, ", "))
		return
	}

	fmt.Fprintf(w, "%soffset %d:\n", indent, slot.Node.PatternOffset)
	bytes := make([]int, 0, len(slot.Node.Children))
	for b := range slot.Node.Children {
		bytes = append(bytes, int(b))
	}
	sort.Ints(bytes)
	for _, b := range bytes {
		fmt.Fprintf(w, "%s  0x%02x:\n", indent, b)
		dump(w, slot.Node.Children[byte(b)], depth+2)
	}
	if slot.Node.Default != nil && !slot.Node.Default.IsEmpty() {
		fmt.Fprintf(w, "%s  default:\n", indent)
		dump(w, slot.Node.Default, depth+2)
	}
}

func toSet(signatures []*sig.Signature) map[*sig.Signature]bool {
	m := make(map[*sig.Signature]bool, len(signatures))
	for _, s := range signatures {
		m[s] = true
	}
	return m
}

// pickOffset implements the weighted three-tier selection of spec.md
// §4.3.1-§4.3.2: evaluate occurrence, similarity, and byte-value weight
// for every candidate offset (restricted to the current working set),
// then tie-break by highest byte-value weight, then highest occurrence
// weight, then lowest similarity weight, then smallest offset.
func pickOffset(table *sigtable.Table, workingSet []*sig.Signature, candidateOffsets []int64) (int64, bool) {
	inSet := toSet(workingSet)

	occurrence := weights.New()
	similarity := weights.New()
	byteValue := weights.New()
	var candidates []int64

	for _, offset := range candidateOffsets {
		group, ok := table.GroupAt(offset)
		if !ok {
			continue
		}
		distinct := 0
		for _, b := range group.Bytes() {
			var k int
			for _, s := range group.SignaturesAt(b) {
				if inSet[s] {
					k++
				}
			}
			if k == 0 {
				continue
			}
			distinct++
			if k > 1 {
				// Similarity weight: sum over byte values at this offset
				// of (signatures sharing that byte - 1) — spec.md §3.
				// High similarity weight means poor discrimination.
				similarity.AddWeight(offset, k-1)
			}
			if commonbytes.IsUncommon(b) {
				byteValue.AddWeight(offset, 1)
			}
		}
		if distinct == 0 {
			continue
		}
		if distinct > 1 {
			occurrence.SetWeight(offset, distinct)
		}
		candidates = append(candidates, offset)
	}

	if len(candidates) == 0 {
		return 0, false
	}

	tier1 := filterByMax(candidates, byteValue)
	tier2 := filterByMax(tier1, occurrence)
	tier3 := filterByMin(tier2, similarity)

	sort.Slice(tier3, func(i, j int) bool { return tier3[i] < tier3[j] })
	return tier3[0], true
}

func filterByMax(offsets []int64, w *weights.Weights) []int64 {
	best := 0
	vals := make(map[int64]int, len(offsets))
	for _, o := range offsets {
		v, _ := w.GetWeight(o)
		vals[o] = v
		if v > best {
			best = v
		}
	}
	var out []int64
	for _, o := range offsets {
		if vals[o] == best {
			out = append(out, o)
		}
	}
	return out
}

func filterByMin(offsets []int64, w *weights.Weights) []int64 {
	best := 0
	vals := make(map[int64]int, len(offsets))
	for i, o := range offsets {
		v, _ := w.GetWeight(o)
		vals[o] = v
		if i == 0 || v < best {
			best = v
		}
	}
	var out []int64
	for _, o := range offsets {
		if vals[o] == best {
			out = append(out, o)
		}
	}
	return out
}

// Package weights implements a single pattern-weights space (spec.md §3,
// §4.3.1): a bidirectional index between pattern offsets and their current
// weight, used by the scan-tree compiler to find "the largest weight" and
// "the weight at this offset" in either direction.
//
// The scan-tree compiler keeps three independent instances of this
// structure — occurrence, similarity, byte-value — one per weight space
// (spec.md §4.3.1). This package only implements the bookkeeping structure;
// which weight space an instance represents is the caller's concern.
//
// Grounded on the reference library's libsigscan_pattern_weights, which
// keeps two parallel libcdata_list instances (offset_groups_list sorted by
// weight, weight_groups_list sorted by offset) so that "largest weight" is
// always the list's last element. This port keeps the same two-index shape
// but backs it with a map plus a weight-sorted slice of groups, per the
// design note's suggested BTreeMap<weight, Set<offset>> + HashMap<offset,
// weight> replacement.
package weights

import "sort"

// group holds every offset currently sharing one weight.
type group struct {
	weight  int
	offsets map[int64]struct{}
}

// Weights is one weight space: offset -> weight and weight -> {offsets}.
type Weights struct {
	byOffset map[int64]int
	groups   []*group // sorted ascending by weight; largest is the last element
}

// New returns an empty weight space.
func New() *Weights {
	return &Weights{byOffset: make(map[int64]int)}
}

// groupIndex returns the index of the group with the given weight, and
// whether it exists, via binary search over the weight-sorted slice.
func (w *Weights) groupIndex(weight int) (int, bool) {
	i := sort.Search(len(w.groups), func(i int) bool { return w.groups[i].weight >= weight })
	if i < len(w.groups) && w.groups[i].weight == weight {
		return i, true
	}
	return i, false
}

// removeFromGroup detaches offset from the group at the given weight,
// deleting the group entirely once it becomes empty.
func (w *Weights) removeFromGroup(weight int, offset int64) {
	idx, found := w.groupIndex(weight)
	if !found {
		return
	}
	delete(w.groups[idx].offsets, offset)
	if len(w.groups[idx].offsets) == 0 {
		w.groups = append(w.groups[:idx], w.groups[idx+1:]...)
	}
}

// ensureGroup returns the group for weight, inserting a new one in sorted
// position if none exists yet.
func (w *Weights) ensureGroup(weight int) *group {
	idx, found := w.groupIndex(weight)
	if found {
		return w.groups[idx]
	}
	g := &group{weight: weight, offsets: make(map[int64]struct{})}
	w.groups = append(w.groups, nil)
	copy(w.groups[idx+1:], w.groups[idx:])
	w.groups[idx] = g
	return g
}

// SetWeight assigns offset's weight directly, replacing whatever it held
// before. This is the "set" operation spec.md §4.3.1 uses for occurrence
// weight (counting distinct bytes is a set, not an accumulation).
func (w *Weights) SetWeight(offset int64, weight int) {
	if old, ok := w.byOffset[offset]; ok {
		if old == weight {
			return
		}
		w.removeFromGroup(old, offset)
	}
	w.byOffset[offset] = weight
	w.ensureGroup(weight).offsets[offset] = struct{}{}
}

// AddWeight accumulates delta onto offset's current weight (starting from
// zero if the offset has no weight yet). This is the "add" operation
// spec.md §4.3.1 uses for similarity and byte-value weight.
func (w *Weights) AddWeight(offset int64, delta int) {
	w.SetWeight(offset, w.byOffset[offset]+delta)
}

// GetWeight returns the current weight for offset, or (0, false) if the
// offset has never been weighted.
func (w *Weights) GetWeight(offset int64) (int, bool) {
	v, ok := w.byOffset[offset]
	return v, ok
}

// GetLargestWeight returns the highest weight present in the space, or
// (0, false) if the space is empty.
func (w *Weights) GetLargestWeight() (int, bool) {
	if len(w.groups) == 0 {
		return 0, false
	}
	return w.groups[len(w.groups)-1].weight, true
}

// OffsetsAtWeight returns every offset currently holding exactly weight,
// sorted ascending for deterministic tie-breaking (spec.md §4.3.2 step 4).
func (w *Weights) OffsetsAtWeight(weight int) []int64 {
	idx, found := w.groupIndex(weight)
	if !found {
		return nil
	}
	return sortedOffsets(w.groups[idx].offsets)
}

// OffsetsAtLargestWeight returns every offset sharing the highest weight in
// the space, sorted ascending.
func (w *Weights) OffsetsAtLargestWeight() []int64 {
	if len(w.groups) == 0 {
		return nil
	}
	return sortedOffsets(w.groups[len(w.groups)-1].offsets)
}

func sortedOffsets(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

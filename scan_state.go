package sigscan

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/coregx/sigscan/internal/scantree"
	"github.com/coregx/sigscan/internal/sig"
	"github.com/coregx/sigscan/simd"
)

type scanStatus int

const (
	statusInitialized scanStatus = iota
	statusStarted
	statusStopped
)

// ScanState is the streaming cursor through a compiled Scanner's three
// scan trees: it buffers input, tracks the active node in each tree, and
// collects results (spec.md §3, §4.6).
type ScanState struct {
	mu sync.Mutex

	status     scanStatus
	dataSize   int64
	dataOffset int64

	scanner *Scanner

	bufferSize   int
	headerActive *scantree.Slot
	footerActive *scantree.Slot
	unboundTail  []byte

	results []ScanResult
	seen    map[resultKey]struct{}
}

type resultKey struct {
	identifier string
	offset     int64
}

// NewScanState returns a freshly INITIALIZED scan state.
func NewScanState() *ScanState {
	return &ScanState{status: statusInitialized, seen: make(map[resultKey]struct{})}
}

// SetDataSize records the total expected input size. Must be called
// before start (spec.md §4.6).
func (st *ScanState) SetDataSize(n int64) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != statusInitialized {
		return fmt.Errorf("%w: SetDataSize must be called before StartScan", ErrInvalidState)
	}
	if n <= 0 {
		return fmt.Errorf("%w: data size must be positive, got %d", ErrInvalidArgument, n)
	}
	st.dataSize = n
	return nil
}

func (st *ScanState) start(scanner *Scanner) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != statusInitialized {
		return fmt.Errorf("%w: scan state already started", ErrInvalidState)
	}
	if st.dataSize <= 0 {
		return fmt.Errorf("%w: call SetDataSize before StartScan", ErrInvalidArgument)
	}
	st.scanner = scanner
	st.bufferSize = scanner.config.ScanBufferSize
	st.headerActive = scanner.headerTree
	st.footerActive = scanner.footerTree
	st.status = statusStarted
	return nil
}

// scanBuffer feeds buf, whose first byte sits at the absolute stream
// position offset, through all three scan paths (spec.md §4.6.1).
func (st *ScanState) scanBuffer(offset int64, buf []byte) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.status != statusStarted {
		return &ScanError{Op: "scan_buffer", Err: fmt.Errorf("%w: not in STARTED state", ErrInvalidState)}
	}
	if offset != st.dataOffset {
		return &ScanError{Op: "scan_buffer", Err: fmt.Errorf(
			"%w: offset %d does not continue from current data offset %d", ErrInvalidArgument, offset, st.dataOffset)}
	}
	if len(buf) == 0 {
		return nil
	}

	st.scanHeaderFooter(offset, buf)
	st.scanUnbound(offset, buf)

	st.dataOffset = offset + int64(len(buf))
	return nil
}

// scanHeaderFooter walks the header and footer trees one byte at a time,
// since each tree's PatternOffset values are absolute positions that
// only ever need to be inspected once as the matching byte streams past
// (spec.md §4.6.1).
func (st *ScanState) scanHeaderFooter(offset int64, buf []byte) {
	scanner := st.scanner
	footerStart := st.dataSize - scanner.footerWindowSize

	for i, b := range buf {
		d := offset + int64(i)

		if scanner.headerRangeSize > 0 && d < scanner.headerRangeSize {
			st.headerActive = st.stepTree(st.headerActive, scanner.headerTree, d, b, func(sg *sig.Signature) int64 {
				return sg.PatternOffset
			})
		}

		if scanner.footerWindowSize > 0 && d >= footerStart {
			f := d - footerStart
			st.footerActive = st.stepTree(st.footerActive, scanner.footerTree, f, b, func(sg *sig.Signature) int64 {
				return st.dataSize - sg.PatternOffset
			})
		}
	}
}

// stepTree advances one anchored tree's active node by one byte. If the
// active node's PatternOffset matches the current absolute position d,
// it dispatches on b; otherwise the node is left untouched (this byte
// isn't one the tree cares about yet). matchOffset computes the absolute
// offset to report for a terminal signature.
func (st *ScanState) stepTree(active, root *scantree.Slot, d int64, b byte, matchOffset func(*sig.Signature) int64) *scantree.Slot {
	if active == nil || active.Node == nil || active.Node.PatternOffset != d {
		return active
	}

	next, ok := active.Node.Children[b]
	if !ok || next.IsEmpty() {
		next = active.Node.Default
	}
	if next == nil || next.IsEmpty() {
		return root
	}
	if next.Node != nil {
		return next
	}
	for _, sg := range next.Signatures {
		st.emit(sg, matchOffset(sg))
	}
	return root
}

// scanUnbound advances the unbound scan path: Aho-Corasick if the
// scanner built one, otherwise simd.Memmem for a lone UNBOUND signature,
// otherwise the Boyer-Moore-Horspool skip table (spec.md §4.6.1, §4.6.2).
func (st *ScanState) scanUnbound(offset int64, buf []byte) {
	scanner := st.scanner
	combined := append(append([]byte(nil), st.unboundTail...), buf...)
	base := offset - int64(len(st.unboundTail))

	switch {
	case scanner.aho != nil:
		st.scanUnboundAho(combined, base)
	case scanner.unboundSingle != nil:
		st.scanUnboundSingle(combined, base)
	case scanner.skip != nil:
		st.scanUnboundSkipTable(combined, base)
	}
}

// scanUnboundSingle handles the common case of exactly one UNBOUND
// signature: simd.Memmem's rare-byte heuristic locates every occurrence
// directly, with no scan tree or skip table needed to discriminate
// between candidates that don't exist.
func (st *ScanState) scanUnboundSingle(combined []byte, base int64) {
	sg := st.scanner.unboundSingle
	at := 0
	for at <= len(combined)-len(sg.Pattern) {
		idx := simd.Memmem(combined[at:], sg.Pattern)
		if idx < 0 {
			break
		}
		st.emit(sg, base+int64(at+idx))
		at += idx + 1
	}
	st.retainUnboundTail(combined)
}

func (st *ScanState) scanUnboundAho(combined []byte, base int64) {
	scanner := st.scanner
	at := 0
	for at <= len(combined) {
		m := scanner.aho.Find(combined, at)
		if m == nil {
			break
		}
		matched := combined[m.Start:m.End]
		for _, sg := range scanner.ahoSignatures {
			if len(sg.Pattern) == len(matched) && bytes.Equal(sg.Pattern, matched) {
				st.emit(sg, base+int64(m.Start))
			}
		}
		at = m.Start + 1
	}
	st.retainUnboundTail(combined)
}

// scanUnboundSkipTable walks the unbound tree at every candidate window
// start and only uses the skip table to decide how far to advance past a
// window that did not match. The skip table's distances are only safe to
// trust once a window has been verified not to match: a byte that closes
// out an UNBOUND pattern (its own final byte) never sets a skip-table
// entry (internal/skiptable), so gating the tree walk itself on skip > 0
// would, for a pattern whose last byte also recurs earlier in the same
// pattern (e.g. "ABAB"), skip straight over a real match. Matches always
// advance by exactly 1 so overlapping occurrences are still found.
func (st *ScanState) scanUnboundSkipTable(combined []byte, base int64) {
	scanner := st.scanner
	shortest := scanner.skip.ShortestPattern()
	windowNeeded := scanner.unboundWindow

	p := 0
	for p+windowNeeded <= len(combined) {
		if st.walkUnboundTree(combined, p, base+int64(p)) {
			p++
			continue
		}
		shift := scanner.skip.Skip(combined[p+shortest-1])
		if shift < 1 {
			shift = 1
		}
		p += shift
	}
	st.retainUnboundTail(combined)
}

func (st *ScanState) walkUnboundTree(combined []byte, p int, absoluteStart int64) bool {
	slot := st.scanner.unboundTree
	for slot.Node != nil {
		idx := p + int(slot.Node.PatternOffset)
		if idx >= len(combined) {
			return false
		}
		b := combined[idx]
		next, ok := slot.Node.Children[b]
		if !ok || next.IsEmpty() {
			next = slot.Node.Default
		}
		if next.IsEmpty() {
			return false
		}
		slot = next
	}
	matched := false
	for _, sg := range slot.Signatures {
		st.emit(sg, absoluteStart)
		matched = true
	}
	return matched
}

func (st *ScanState) retainUnboundTail(combined []byte) {
	tailLen := st.scanner.unboundWindow - 1
	if tailLen < 0 {
		tailLen = 0
	}
	start := len(combined) - tailLen
	if start < 0 {
		start = 0
	}
	st.unboundTail = append([]byte(nil), combined[start:]...)
}

// flush processes any internally buffered tail that cannot yet complete
// a scan window. For sigscan's byte-paced header/footer walk and
// boundary-sized unbound tail, there is nothing left to resolve once a
// scan_buffer call returns — flush exists to satisfy the streaming
// contract of spec.md §4.6 and to make stop's finalization explicit.
func (st *ScanState) flush() {
	st.unboundTail = nil
}

// stop transitions STARTED -> STOPPED, flushing first. Idempotent once
// stopped (spec.md §7).
func (st *ScanState) stop() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status == statusStopped {
		return nil
	}
	if st.status != statusStarted {
		return &ScanError{Op: "stop", Err: fmt.Errorf("%w: stop called outside STARTED state", ErrInvalidState)}
	}
	st.flush()
	st.status = statusStopped
	return nil
}

func (st *ScanState) emit(sg *sig.Signature, offset int64) {
	key := resultKey{identifier: sg.Identifier, offset: offset}
	if _, dup := st.seen[key]; dup {
		return
	}
	st.seen[key] = struct{}{}
	st.results = append(st.results, ScanResult{Signature: sg, Offset: offset})
}

// NumberOfResults returns the number of results collected so far. Valid
// once the state has been stopped (spec.md §4.6).
func (st *ScanState) NumberOfResults() (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != statusStopped {
		return 0, fmt.Errorf("%w: NumberOfResults valid only after stop", ErrInvalidState)
	}
	return len(st.results), nil
}

// GetResult returns the i-th result in emission order.
func (st *ScanState) GetResult(i int) (ScanResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != statusStopped {
		return ScanResult{}, fmt.Errorf("%w: GetResult valid only after stop", ErrInvalidState)
	}
	if i < 0 || i >= len(st.results) {
		return ScanResult{}, fmt.Errorf("%w: result index %d out of range [0, %d)", ErrInvalidArgument, i, len(st.results))
	}
	return st.results[i], nil
}

// Results returns every collected result in emission order. A
// convenience beyond spec.md's index-based get_result, grounded in Go's
// preference for returning slices over index/length accessor pairs.
func (st *ScanState) Results() ([]ScanResult, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.status != statusStopped {
		return nil, fmt.Errorf("%w: Results valid only after stop", ErrInvalidState)
	}
	out := make([]ScanResult, len(st.results))
	copy(out, st.results)
	return out, nil
}

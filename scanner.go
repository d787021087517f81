package sigscan

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/sigscan/internal/scantree"
	"github.com/coregx/sigscan/internal/sig"
	"github.com/coregx/sigscan/internal/sigtable"
	"github.com/coregx/sigscan/internal/skiptable"
	"github.com/coregx/sigscan/simd"
)

// Source is the file-like I/O collaborator a Scanner reads through in
// ScanFile (spec.md §1, "Out of scope... Language bindings and file-I/O
// wrappers"). *os.File provides Read and Seek but not Size, so it needs a
// small adapter (see fileSource in cmd/sigscan).
type Source interface {
	io.Reader
	Seek(offset int64, whence int) (int64, error)
	Size() (int64, error)
}

// Scanner holds a compiled set of signatures: three scan trees (header,
// footer, unbound) plus the unbound skip table (spec.md §4.5). It is
// immutable once compiled and safe to share across goroutines; each
// ScanState using it must be owned by a single goroutine for its
// lifetime (spec.md §5).
type Scanner struct {
	mu     sync.Mutex
	config Config
	store  *signatureStore

	compiled bool

	headerTree       *scantree.Slot
	footerTree       *scantree.Slot
	unboundTree      *scantree.Slot
	headerRangeSize  int64
	footerWindowSize int64
	skip             *skiptable.Table
	unboundWindow    int
	unboundSingle    *sig.Signature

	aho           *ahocorasick.Automaton
	ahoSignatures []*sig.Signature

	aborted atomic.Bool
}

// New constructs an uncompiled Scanner from config.
func New(config Config) (*Scanner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{config: config, store: newSignatureStore()}, nil
}

// AddSignature registers a signature. Fails with ErrInvalidState once the
// scanner has compiled (spec.md §4.1).
func (s *Scanner) AddSignature(identifier string, patternOffset int64, pattern []byte, flags Flags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.add(identifier, patternOffset, pattern, flags, s.config)
}

// SetScanBufferSize overrides the configured internal buffer size.
func (s *Scanner) SetScanBufferSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: scan buffer size must be positive, got %d", ErrInvalidArgument, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.ScanBufferSize = n
	return nil
}

// SignalAbort sets the cooperative abort flag (spec.md §4.6.4). Observed
// by any ScanState using this scanner at the next byte-window boundary.
func (s *Scanner) SignalAbort() {
	s.aborted.Store(true)
}

// compile builds the three scan trees and the skip table from the
// signature store. Must be called with s.mu held.
func (s *Scanner) compile() error {
	header, footer, unbound := s.store.bySpace()

	var headerRangeSize int64
	for _, sg := range header {
		if end := sg.PatternOffset + int64(sg.Size()); end > headerRangeSize {
			headerRangeSize = end
		}
	}
	var footerWindowSize int64
	for _, sg := range footer {
		if sg.PatternOffset > footerWindowSize {
			footerWindowSize = sg.PatternOffset
		}
	}

	headerTable := sigtable.Build(header, sigtable.Header, 0, nil)
	footerTable := sigtable.Build(footer, sigtable.Footer, footerWindowSize, nil)
	unboundTable := sigtable.Build(unbound, sigtable.Unbound, 0, nil)

	s.headerTree = scantree.Build(headerTable)
	s.footerTree = scantree.Build(footerTable)
	s.unboundTree = scantree.Build(unboundTable)
	s.headerRangeSize = headerRangeSize
	s.footerWindowSize = footerWindowSize
	s.skip = skiptable.Build(unbound)

	windowNeeded := s.skip.ShortestPattern()
	if maxOffset := scantree.MaxOffset(s.unboundTree); int(maxOffset)+1 > windowNeeded {
		windowNeeded = int(maxOffset) + 1
	}
	s.unboundWindow = windowNeeded

	s.maybeBuildAhoCorasick(unbound)

	// A single UNBOUND signature needs no discrimination at all: the
	// scan-tree/skip-table machinery exists to arbitrate between many
	// candidate patterns, which is wasted work when there is only one.
	// simd.Memmem's rare-byte heuristic finds it directly (see simd
	// package doc; grounded on the same corpus's SWAR/memchr-based
	// search primitives).
	if s.aho == nil && len(unbound) == 1 {
		s.unboundSingle = unbound[0]
	}

	s.store.compiled = true
	return nil
}

// maybeBuildAhoCorasick swaps the skip-table fast path for an
// Aho-Corasick automaton over the unbound signature set once it grows
// past AhoCorasickThreshold, or unconditionally when
// UseAhoCorasickUnbound is set (see SPEC_FULL.md, Domain Stack; grounded
// on coregex meta/compile.go's own ahocorasick.NewBuilder usage for large
// literal alternations). Build failure falls back to the skip table
// silently — Aho-Corasick is a performance path, not a correctness
// requirement.
func (s *Scanner) maybeBuildAhoCorasick(unbound []*sig.Signature) {
	threshold := s.config.AhoCorasickThreshold
	useAho := s.config.UseAhoCorasickUnbound || (threshold > 0 && len(unbound) >= threshold)
	if !useAho || len(unbound) == 0 {
		return
	}

	builder := ahocorasick.NewBuilder()
	for _, sg := range unbound {
		builder.AddPattern(sg.Pattern)
	}
	auto, err := builder.Build()
	if err != nil {
		return
	}
	s.aho = auto
	s.ahoSignatures = unbound
}

// StartScan binds state to this scanner, compiling on first call
// (spec.md §4.6, §6.1).
func (s *Scanner) StartScan(state *ScanState) error {
	s.mu.Lock()
	if !s.compiled {
		if err := s.compile(); err != nil {
			s.mu.Unlock()
			return &CompileError{Stage: "scan-tree", Err: err}
		}
		s.compiled = true
	}
	s.mu.Unlock()
	return state.start(s)
}

// ScanBuffer feeds offset..offset+len(buf) into state.
func (s *Scanner) ScanBuffer(state *ScanState, offset int64, buf []byte) error {
	if s.aborted.Load() {
		return &ScanError{Op: "scan_buffer", Err: ErrAborted}
	}
	return state.scanBuffer(offset, buf)
}

// StopScan flushes and finalizes state.
func (s *Scanner) StopScan(state *ScanState) error {
	return state.stop()
}

// DumpTree writes a human-readable rendering of the compiled header,
// footer, and unbound scan trees to w, compiling first if necessary.
// Diagnostic only — not part of the scan hot path (SUPPLEMENTED FEATURES
// item 2, SPEC_FULL.md).
func (s *Scanner) DumpTree(w io.Writer) error {
	s.mu.Lock()
	if !s.compiled {
		if err := s.compile(); err != nil {
			s.mu.Unlock()
			return &CompileError{Stage: "scan-tree", Err: err}
		}
		s.compiled = true
	}
	header, footer, unbound := s.headerTree, s.footerTree, s.unboundTree
	s.mu.Unlock()

	fmt.Fprintln(w, "header:")
	scantree.Dump(w, header)
	fmt.Fprintln(w, "footer:")
	scantree.Dump(w, footer)
	fmt.Fprintln(w, "unbound:")
	scantree.Dump(w, unbound)
	return nil
}

// ScanFile drives ScanBuffer over a Source's full contents in
// Scanner-buffer-sized chunks, opening the lifecycle with SetDataSize and
// StartScan and closing it with StopScan (spec.md §6.1).
func (s *Scanner) ScanFile(state *ScanState, source Source) error {
	size, err := source.Size()
	if err != nil {
		return &ScanError{Op: "scan_file", Err: fmt.Errorf("%w: %w", ErrIOError, err)}
	}
	if err := state.SetDataSize(size); err != nil {
		return err
	}
	if err := s.StartScan(state); err != nil {
		return err
	}

	buf := make([]byte, state.bufferSize)
	var offset int64
	for {
		if s.aborted.Load() {
			break
		}
		n, readErr := source.Read(buf)
		if n > 0 {
			if err := s.ScanBuffer(state, offset, buf[:n]); err != nil {
				return err
			}
			offset += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return &ScanError{Op: "scan_file", Err: fmt.Errorf("%w: %w", ErrIOError, readErr)}
		}
	}
	return s.StopScan(state)
}

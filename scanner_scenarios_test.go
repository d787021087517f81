package sigscan_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/coregx/sigscan"
)

func scanAll(t *testing.T, scanner *sigscan.Scanner, data []byte) []sigscan.ScanResult {
	t.Helper()
	state := sigscan.NewScanState()
	if err := state.SetDataSize(int64(len(data))); err != nil {
		t.Fatalf("SetDataSize: %v", err)
	}
	if err := scanner.StartScan(state); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if err := scanner.ScanBuffer(state, 0, data); err != nil {
		t.Fatalf("ScanBuffer: %v", err)
	}
	if err := scanner.StopScan(state); err != nil {
		t.Fatalf("StopScan: %v", err)
	}
	results, err := state.Results()
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	return results
}

func wantResults(t *testing.T, got []sigscan.ScanResult, want ...sigscan.ScanResult) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d results %+v, want %d %+v", len(got), got, len(want), want)
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g.Identifier() == w.Identifier() && g.Offset == w.Offset {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing expected result %+v in %+v", w, got)
		}
	}
}

// Scenario 1: lnk signature at the stream start (spec.md §8 table, row 1).
func TestScenarioHeaderMatchAtStart(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x4C, 0x00, 0x00, 0x00, 0x01, 0x14, 0x02, 0x00}
	if err := scanner.AddSignature("lnk", 0, pattern, sigscan.BoundToStart); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	data := append(append([]byte{}, pattern...), 0xFF, 0xFF)
	got := scanAll(t, scanner, data)
	wantResults(t, got, sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "lnk"}, Offset: 0})
}

// Scenario 2: same pattern present but not at offset 0 — must not match.
func TestScenarioHeaderMatchRejectedWhenNotAtStart(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x30, 0x00, 0x00, 0x00, 0x4C, 0x66, 0x4C, 0x65}
	if err := scanner.AddSignature("evt", 0, pattern, sigscan.BoundToStart); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	data := append(make([]byte, 8), pattern...)
	got := scanAll(t, scanner, data)
	if len(got) != 0 {
		t.Fatalf("expected no results, got %+v", got)
	}
}

// Scenario 3: end-anchored signature 512 bytes from the end of a 1024-byte stream.
func TestScenarioFooterMatch(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x63, 0x6F, 0x6E, 0x65, 0x63, 0x74, 0x69, 0x78} // "conectix"
	if err := scanner.AddSignature("vhdi_f", 512, pattern, sigscan.BoundToEnd); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	data := make([]byte, 1024)
	copy(data[512:], pattern)
	got := scanAll(t, scanner, data)
	wantResults(t, got, sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "vhdi_f"}, Offset: 512})
}

// Scenario 4: unbound signature found mid-stream.
func TestScenarioUnboundMatch(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x50, 0x4B, 0x07, 0x08}
	if err := scanner.AddSignature("pk", 0, pattern, sigscan.Unbound); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	data := []byte{0x00, 0x00, 0x00, 0x50, 0x4B, 0x07, 0x08, 0x00, 0x00}
	got := scanAll(t, scanner, data)
	wantResults(t, got, sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "pk"}, Offset: 3})
}

// Scenario 5: two header signatures sharing offset 0 but diverging on the
// first byte — compile must discriminate without reporting both.
func TestScenarioHeaderDiscrimination(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	regf := []byte{0x72, 0x65, 0x67, 0x66}
	cmmm := []byte{0x43, 0x4D, 0x4D, 0x4D}
	if err := scanner.AddSignature("regf", 0, regf, sigscan.BoundToStart); err != nil {
		t.Fatalf("AddSignature regf: %v", err)
	}
	if err := scanner.AddSignature("cmmm", 0, cmmm, sigscan.BoundToStart); err != nil {
		t.Fatalf("AddSignature cmmm: %v", err)
	}

	data := append(append([]byte{}, regf...), 0x00, 0x00, 0x00, 0x00)
	got := scanAll(t, scanner, data)
	wantResults(t, got, sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "regf"}, Offset: 0})
}

// Scenario 6: overlapping unbound matches are all emitted.
func TestScenarioOverlappingUnboundMatches(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x41, 0x42, 0x41, 0x42}
	if err := scanner.AddSignature("sig", 0, pattern, sigscan.Unbound); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	data := []byte{0x41, 0x42, 0x41, 0x42, 0x41, 0x42}
	got := scanAll(t, scanner, data)
	wantResults(t, got,
		sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "sig"}, Offset: 0},
		sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "sig"}, Offset: 2},
	)
}

// Buffer-boundary invariance (spec.md §8, invariant 5): splitting the
// same input across many scan_buffer calls must not change the results.
func TestBufferBoundaryInvariance(t *testing.T) {
	pattern := []byte{0x41, 0x42, 0x41, 0x42}
	data := []byte{0x00, 0x41, 0x42, 0x41, 0x42, 0x00, 0x41, 0x42, 0x41, 0x42, 0x00}

	newScanner := func() *sigscan.Scanner {
		scanner, err := sigscan.New(sigscan.DefaultConfig())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := scanner.AddSignature("sig", 0, pattern, sigscan.Unbound); err != nil {
			t.Fatalf("AddSignature: %v", err)
		}
		return scanner
	}

	whole := scanAll(t, newScanner(), data)

	// Feed the same bytes one at a time.
	scanner := newScanner()
	state := sigscan.NewScanState()
	if err := state.SetDataSize(int64(len(data))); err != nil {
		t.Fatalf("SetDataSize: %v", err)
	}
	if err := scanner.StartScan(state); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	for i, b := range data {
		if err := scanner.ScanBuffer(state, int64(i), []byte{b}); err != nil {
			t.Fatalf("ScanBuffer at %d: %v", i, err)
		}
	}
	if err := scanner.StopScan(state); err != nil {
		t.Fatalf("StopScan: %v", err)
	}
	piecewise, err := state.Results()
	if err != nil {
		t.Fatalf("Results: %v", err)
	}

	if len(whole) != len(piecewise) {
		t.Fatalf("whole-buffer scan found %d results, piecewise scan found %d: %+v vs %+v",
			len(whole), len(piecewise), whole, piecewise)
	}
	wantResults(t, piecewise, whole...)
}

// Abort safety (spec.md §8, invariant 6): after SignalAbort, no further
// results are emitted, but results collected before the abort remain.
func TestAbortSafety(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := []byte{0x41, 0x42, 0x41, 0x42}
	if err := scanner.AddSignature("sig", 0, pattern, sigscan.Unbound); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}

	state := sigscan.NewScanState()
	data := []byte{0x41, 0x42, 0x41, 0x42, 0x41, 0x42, 0x41, 0x42}
	if err := state.SetDataSize(int64(len(data))); err != nil {
		t.Fatalf("SetDataSize: %v", err)
	}
	if err := scanner.StartScan(state); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if err := scanner.ScanBuffer(state, 0, data[:4]); err != nil {
		t.Fatalf("ScanBuffer: %v", err)
	}
	scanner.SignalAbort()
	if err := scanner.ScanBuffer(state, 4, data[4:]); err == nil {
		t.Fatalf("expected ScanBuffer to fail after SignalAbort")
	}
	if err := scanner.StopScan(state); err != nil {
		t.Fatalf("StopScan after abort: %v", err)
	}
	results, err := state.Results()
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	wantResults(t, results, sigscan.ScanResult{Signature: &sigscan.Signature{Identifier: "sig"}, Offset: 0})
}

func TestDuplicateSignatureIdentifierRejected(t *testing.T) {
	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pattern := bytes.Repeat([]byte{0xAB}, 4)
	if err := scanner.AddSignature("dup", 0, pattern, sigscan.Unbound); err != nil {
		t.Fatalf("AddSignature: %v", err)
	}
	err = scanner.AddSignature("dup", 0, pattern, sigscan.Unbound)
	if err == nil {
		t.Fatalf("expected duplicate identifier to be rejected")
	}
	var dupErr *sigscan.DuplicateSignatureError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected *DuplicateSignatureError, got %T: %v", err, err)
	}
	if !errors.Is(err, sigscan.ErrAlreadyExists) {
		t.Fatalf("expected error to unwrap to ErrAlreadyExists, got %v", err)
	}
}

package sigtable

import (
	"testing"

	"github.com/coregx/sigscan/internal/sig"
)

func mustSig(t *testing.T, id string, offset int64, pattern string, flags sig.Flags) *sig.Signature {
	t.Helper()
	s, err := sig.New(id, offset, []byte(pattern), flags)
	if err != nil {
		t.Fatalf("sig.New(%q) failed: %v", id, err)
	}
	return s
}

func TestBuildHeaderOffsets(t *testing.T) {
	a := mustSig(t, "a", 0, "ABCD", sig.BoundToStart)
	b := mustSig(t, "b", 2, "XYZZ", sig.BoundToStart)

	tbl := Build([]*sig.Signature{a, b}, Header, 0, nil)

	got := tbl.Offsets()
	want := []int64{0, 1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Offsets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Offsets() = %v, want %v", got, want)
		}
	}

	g, ok := tbl.GroupAt(0)
	if !ok || len(g.SignaturesAt('A')) != 1 {
		t.Fatalf("GroupAt(0) missing signature a's byte 'A'")
	}
	g2, ok := tbl.GroupAt(2)
	if !ok {
		t.Fatalf("GroupAt(2) missing")
	}
	if len(g2.SignaturesAt('C')) != 1 || len(g2.SignaturesAt('X')) != 1 {
		t.Fatalf("GroupAt(2) should have both a's 'C' and b's 'X'")
	}
}

func TestBuildFooterOffsets(t *testing.T) {
	a := mustSig(t, "a", 4, "ABCD", sig.BoundToEnd)
	tbl := Build([]*sig.Signature{a}, Footer, 4, nil)

	got := tbl.Offsets()
	want := []int64{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Offsets() = %v, want %v", got, want)
	}
}

func TestBuildUnboundSharesOffsetBase(t *testing.T) {
	a := mustSig(t, "a", 0, "ABCD", sig.Unbound)
	b := mustSig(t, "b", 0, "CDEF", sig.Unbound)
	tbl := Build([]*sig.Signature{a, b}, Unbound, 0, nil)

	got := tbl.Offsets()
	if len(got) != 4 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("Offsets() = %v, want [0 1 2 3]", got)
	}
	g, _ := tbl.GroupAt(0)
	if len(g.Bytes()) != 2 {
		t.Fatalf("GroupAt(0).Bytes() = %v, want 2 distinct byte values", g.Bytes())
	}
}

func TestBuildIgnoreOffsets(t *testing.T) {
	a := mustSig(t, "a", 0, "ABCD", sig.Unbound)
	tbl := Build([]*sig.Signature{a}, Unbound, 0, map[int64]bool{1: true})

	if _, ok := tbl.GroupAt(1); ok {
		t.Fatalf("GroupAt(1) should be pruned by ignoreOffsets")
	}
	for _, o := range tbl.Offsets() {
		if o == 1 {
			t.Fatalf("Offsets() still contains ignored offset 1")
		}
	}
}

func TestOffsetsForTracksPerSignatureContribution(t *testing.T) {
	a := mustSig(t, "a", 0, "ABCD", sig.BoundToStart)
	b := mustSig(t, "b", 5, "CDEF", sig.BoundToStart)
	tbl := Build([]*sig.Signature{a, b}, Header, 0, nil)

	gotA := tbl.OffsetsFor(a)
	wantA := []int64{0, 1, 2, 3}
	if len(gotA) != len(wantA) || gotA[0] != wantA[0] || gotA[1] != wantA[1] {
		t.Fatalf("OffsetsFor(a) = %v, want %v", gotA, wantA)
	}

	gotB := tbl.OffsetsFor(b)
	wantB := []int64{5, 6, 7, 8}
	if len(gotB) != len(wantB) || gotB[0] != wantB[0] || gotB[1] != wantB[1] {
		t.Fatalf("OffsetsFor(b) = %v, want %v", gotB, wantB)
	}
}

func TestSignaturesDeduplicated(t *testing.T) {
	a := mustSig(t, "a", 0, "AAAA", sig.BoundToStart)
	tbl := Build([]*sig.Signature{a}, Header, 0, nil)
	if len(tbl.Signatures()) != 1 {
		t.Fatalf("Signatures() = %v, want 1 entry (repeated byte should not duplicate)", tbl.Signatures())
	}
}

package sigscan

import "github.com/coregx/sigscan/internal/sig"

// Flags anchors a Signature's PatternOffset to the stream start, the
// stream end, or leaves it unbound (the pattern may appear anywhere).
type Flags = sig.Flags

const (
	Unbound      = sig.Unbound
	BoundToStart = sig.BoundToStart
	BoundToEnd   = sig.BoundToEnd
)

// MinPatternSize is the shortest pattern a SignatureStore will accept.
const MinPatternSize = sig.MinPatternSize

// Signature is a fixed byte pattern anchored at a declared offset.
type Signature = sig.Signature

// NewSignature validates and constructs a Signature.
func NewSignature(identifier string, patternOffset int64, pattern []byte, flags Flags) (*Signature, error) {
	return sig.New(identifier, patternOffset, pattern, flags)
}

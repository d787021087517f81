package sig

import "fmt"

// Flags anchors a Signature's PatternOffset to the stream start, the stream
// end, or leaves it unbound (the pattern may appear anywhere).
//
// The bit values match the reference ABI (spec.md §6.2) bit-for-bit.
type Flags uint32

const (
	// Unbound signatures may match anywhere in the stream.
	Unbound Flags = 0x00000000

	// BoundToStart anchors PatternOffset to the stream start.
	BoundToStart Flags = 0x00000001

	// BoundToEnd anchors PatternOffset to the stream end.
	BoundToEnd Flags = 0x00000002
)

func (f Flags) String() string {
	switch f {
	case BoundToStart:
		return "BOUND_TO_START"
	case BoundToEnd:
		return "BOUND_TO_END"
	case Unbound:
		return "UNBOUND"
	default:
		return fmt.Sprintf("Flags(0x%02x)", uint32(f))
	}
}

// MinPatternSize is the shortest pattern the store will accept. The
// reference library rejects anything shorter as too weak a discriminator;
// this spec preserves that limit (spec.md §3).
const MinPatternSize = 4

// Signature is a fixed byte pattern anchored at a declared offset. It is
// immutable once constructed: the pattern bytes, offset, and flags never
// change.
type Signature struct {
	Identifier    string
	Pattern       []byte
	PatternOffset int64
	Flags         Flags
}

// New validates and constructs a Signature.
//
// Validation order matters: the pattern length is computed from the
// parameter before anything else touches it, so a signature can never be
// constructed with a stale size (see DESIGN.md, "stale-size bug" — the
// original library's libsigscan_signature_set allocates the pattern buffer
// from sizeof(uint8_t) * pattern_size before assigning pattern_size).
func New(identifier string, patternOffset int64, pattern []byte, flags Flags) (*Signature, error) {
	patternSize := len(pattern)

	if identifier == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrInvalidArgument)
	}
	if patternSize < MinPatternSize {
		return nil, fmt.Errorf("%w: pattern for %q is %d bytes, minimum is %d",
			ErrInvalidArgument, identifier, patternSize, MinPatternSize)
	}
	switch flags {
	case Unbound, BoundToStart, BoundToEnd:
	default:
		return nil, fmt.Errorf("%w: signature %q has invalid flags 0x%x", ErrInvalidArgument, identifier, uint32(flags))
	}
	if flags == BoundToEnd && patternOffset < 0 {
		// The reference ABI accepts a negative end-relative offset as a
		// convenience; normalize to the "distance from end" magnitude used
		// throughout the rest of the package.
		patternOffset = -patternOffset
	}

	return &Signature{
		Identifier:    identifier,
		Pattern:       pattern,
		PatternOffset: patternOffset,
		Flags:         flags,
	}, nil
}

// Size returns the pattern length in bytes.
func (s *Signature) Size() int {
	return len(s.Pattern)
}

package sigscan

import (
	"fmt"

	"github.com/coregx/sigscan/internal/sig"
)

// signatureStore owns the signatures added to a Scanner before compile
// (spec.md §4.1). It enforces identifier uniqueness and pattern-size
// limits, and refuses further additions once the scanner has compiled.
type signatureStore struct {
	signatures  []*sig.Signature
	identifiers map[string]struct{}
	compiled    bool
}

func newSignatureStore() *signatureStore {
	return &signatureStore{identifiers: make(map[string]struct{})}
}

func (s *signatureStore) add(identifier string, patternOffset int64, pattern []byte, flags Flags, cfg Config) error {
	if s.compiled {
		return fmt.Errorf("%w: cannot add signature %q after compile", ErrInvalidState, identifier)
	}
	if _, exists := s.identifiers[identifier]; exists {
		return &DuplicateSignatureError{Identifier: identifier}
	}
	if cfg.MaxPatternSize > 0 && len(pattern) > cfg.MaxPatternSize {
		return fmt.Errorf("%w: pattern for %q is %d bytes, exceeds MaxPatternSize %d",
			ErrInvalidArgument, identifier, len(pattern), cfg.MaxPatternSize)
	}
	if cfg.MaxSignatures > 0 && len(s.signatures) >= cfg.MaxSignatures {
		return fmt.Errorf("%w: store already holds MaxSignatures (%d) signatures", ErrInvalidArgument, cfg.MaxSignatures)
	}

	signature, err := sig.New(identifier, patternOffset, pattern, flags)
	if err != nil {
		return err
	}
	s.signatures = append(s.signatures, signature)
	s.identifiers[identifier] = struct{}{}
	return nil
}

// bySpace partitions the store's signatures by anchoring flag.
func (s *signatureStore) bySpace() (header, footer, unbound []*sig.Signature) {
	for _, signature := range s.signatures {
		switch signature.Flags {
		case sig.BoundToStart:
			header = append(header, signature)
		case sig.BoundToEnd:
			footer = append(footer, signature)
		default:
			unbound = append(unbound, signature)
		}
	}
	return header, footer, unbound
}

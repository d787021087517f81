package sigscan

import "fmt"

// defaultScanBufferSize is the suggested internal buffer size (spec.md §4.5):
// at least the largest pattern, defaulting to 64 KiB.
const defaultScanBufferSize = 64 * 1024

// Config controls Scanner compile- and scan-time behavior.
//
// Example:
//
//	config := sigscan.DefaultConfig()
//	config.ScanBufferSize = 256 * 1024
//	scanner, err := sigscan.New(config)
type Config struct {
	// ScanBufferSize sets the chunk size ScanFile reads from its Source and
	// feeds to ScanBuffer. It is not checked against signature pattern
	// lengths; ScanBuffer itself accepts chunks of any size.
	//
	// Default: 64 KiB.
	ScanBufferSize int

	// MaxSignatures caps the number of signatures a SignatureStore will
	// accept. Zero means unbounded. This is a guard rail against
	// accidentally-unbounded signature sets blowing up compile time; it is
	// not part of spec.md's core contract.
	//
	// Default: 0 (unbounded).
	MaxSignatures int

	// MaxPatternSize caps signature pattern length at AddSignature time.
	// Zero means unbounded.
	//
	// Default: 0 (unbounded).
	MaxPatternSize int

	// UseAhoCorasickUnbound swaps the unbound scan space's default
	// Boyer-Moore-Horspool skip-table walk for an Aho-Corasick automaton
	// built over the same UNBOUND signature set (see SPEC_FULL.md, Domain
	// Stack). Useful once the unbound set is large enough that building one
	// automaton beats repeated skip-and-walk.
	//
	// Default: false.
	UseAhoCorasickUnbound bool

	// AhoCorasickThreshold is the number of UNBOUND signatures at or above
	// which Scanner automatically prefers Aho-Corasick even when
	// UseAhoCorasickUnbound is false, mirroring the teacher's own
	// literal-count strategy threshold (meta/strategy.go: Aho-Corasick past
	// Teddy's 64-literal ceiling). Zero disables automatic selection.
	//
	// Default: 64.
	AhoCorasickThreshold int
}

// DefaultConfig returns a Config with the defaults documented on each field.
func DefaultConfig() Config {
	return Config{
		ScanBufferSize:        defaultScanBufferSize,
		MaxSignatures:         0,
		MaxPatternSize:        0,
		UseAhoCorasickUnbound: false,
		AhoCorasickThreshold:  64,
	}
}

// Validate checks the configuration for internally-consistent values.
func (c Config) Validate() error {
	if c.ScanBufferSize <= 0 {
		return fmt.Errorf("%w: ScanBufferSize must be positive, got %d", ErrInvalidArgument, c.ScanBufferSize)
	}
	if c.MaxSignatures < 0 {
		return fmt.Errorf("%w: MaxSignatures must be >= 0, got %d", ErrInvalidArgument, c.MaxSignatures)
	}
	if c.MaxPatternSize < 0 {
		return fmt.Errorf("%w: MaxPatternSize must be >= 0, got %d", ErrInvalidArgument, c.MaxPatternSize)
	}
	if c.AhoCorasickThreshold < 0 {
		return fmt.Errorf("%w: AhoCorasickThreshold must be >= 0, got %d", ErrInvalidArgument, c.AhoCorasickThreshold)
	}
	return nil
}

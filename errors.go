package sigscan

import "github.com/coregx/sigscan/internal/sig"

// Sentinel errors identifying the broad class of failure (spec.md §7).
// Use errors.Is to test against these; wrapped errors (DuplicateSignatureError,
// CompileError, ScanError) all unwrap to one of these.
var (
	ErrInvalidArgument = sig.ErrInvalidArgument
	ErrInvalidState    = sig.ErrInvalidState
	ErrOutOfMemory     = sig.ErrOutOfMemory
	ErrIOError         = sig.ErrIOError
	ErrAborted         = sig.ErrAborted
	ErrAlreadyExists   = sig.ErrAlreadyExists
	ErrCorruptInput    = sig.ErrCorruptInput
)

// DuplicateSignatureError reports which identifier collided on AddSignature.
type DuplicateSignatureError = sig.DuplicateSignatureError

// CompileError wraps a failure encountered while building the scan trees
// or skip table from a compiled signature set.
type CompileError = sig.CompileError

// ScanError wraps an I/O or state failure encountered while feeding or
// stopping a ScanState.
type ScanError = sig.ScanError

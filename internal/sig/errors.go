// Package sig holds the signature domain primitive shared by every internal
// subsystem (signature table, pattern weights, scan-tree compiler, skip
// table) without those packages importing back up to the public root
// package. The root package type-aliases these names onto its own public
// API, the same way coregex's root package sits atop its meta/nfa layering
// without those lower packages reaching back up.
package sig

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scanner's error kinds (spec.md §7). The root
// package re-exports these values directly so errors.Is works the same way
// whether callers import sigscan or, for internal diagnostics, this package.
var (
	ErrInvalidArgument = errors.New("sigscan: invalid argument")
	ErrInvalidState    = errors.New("sigscan: invalid state")
	ErrOutOfMemory     = errors.New("sigscan: out of memory")
	ErrIOError         = errors.New("sigscan: I/O error")
	ErrAborted         = errors.New("sigscan: scan aborted")
	ErrAlreadyExists   = errors.New("sigscan: signature already exists")
	ErrCorruptInput    = errors.New("sigscan: corrupt input")
)

// DuplicateSignatureError reports which identifier collided on AddSignature.
type DuplicateSignatureError struct {
	Identifier string
}

func (e *DuplicateSignatureError) Error() string {
	return fmt.Sprintf("sigscan: signature %q already exists", e.Identifier)
}

func (e *DuplicateSignatureError) Unwrap() error {
	return ErrAlreadyExists
}

// CompileError wraps a failure encountered while building the scan trees or
// skip table from a compiled signature set.
type CompileError struct {
	Stage string // "signature-table", "scan-tree", "skip-table"
	Err   error
}

func (e *CompileError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("sigscan: compile failed at %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("sigscan: compile failed: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ScanError wraps an I/O or state failure encountered while feeding or
// stopping a ScanState.
type ScanError struct {
	Op  string // "scan_buffer", "flush", "stop", "scan_file"
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("sigscan: %s: %v", e.Op, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

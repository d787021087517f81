package sigscan

// ScanResult is an immutable (signature, absolute offset) match record
// (spec.md §3). The Signature field is borrowed from the Scanner's
// signature store and remains valid only as long as the Scanner that
// produced it is alive.
type ScanResult struct {
	Signature *Signature
	Offset    int64
}

// Identifier returns the matched signature's identifier, mirroring the
// reference library's scan_result_get_identifier (spec.md §6.1).
func (r ScanResult) Identifier() string {
	return r.Signature.Identifier
}

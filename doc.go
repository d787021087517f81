// Package sigscan detects binary signatures — fixed byte patterns
// anchored to a stream's start, its end, or unanchored — within an
// arbitrary byte stream.
//
// Compile a Scanner once from a set of signatures, then drive any number
// of ScanStates through it:
//
//	scanner, err := sigscan.New(sigscan.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if err := scanner.AddSignature("lnk", 0, []byte{0x4C, 0x00, 0x00, 0x00}, sigscan.BoundToStart); err != nil {
//		return err
//	}
//
//	state := sigscan.NewScanState()
//	if err := state.SetDataSize(int64(len(data))); err != nil {
//		return err
//	}
//	if err := scanner.StartScan(state); err != nil {
//		return err
//	}
//	if err := scanner.ScanBuffer(state, 0, data); err != nil {
//		return err
//	}
//	if err := scanner.StopScan(state); err != nil {
//		return err
//	}
//	results, err := state.Results()
package sigscan

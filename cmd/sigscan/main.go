// Command sigscan scans a file for binary signatures described by a
// HuJSON config file (spec.md §6.4: out of scope for the core library,
// specified here only for testability).
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/coregx/sigscan"
)

const usage = `sigscan [-c config] [-hvV] [-d] source

Scans source for the binary signatures described by the HuJSON config
file passed via -c (default: sigscan.json in the current directory).
With -d, prints the compiled scan trees instead of scanning (source
may be omitted).
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("sigscan", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	configPath := flagSet.StringP("config", "c", "sigscan.json", "signature config file")
	verbose := flagSet.BoolP("verbose", "v", false, "print every result instead of a match count")
	dumpTree := flagSet.BoolP("dump-tree", "d", false, "print the compiled scan trees and exit")
	showVersion := flagSet.BoolP("version", "V", false, "print version and exit")
	help := flagSet.BoolP("help", "h", false, "print this help and exit")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if *help {
		fmt.Fprint(out, usage)
		return 0
	}
	if *showVersion {
		fmt.Fprintln(out, "sigscan (module github.com/coregx/sigscan)")
		return 0
	}

	remaining := flagSet.Args()
	if !*dumpTree && len(remaining) != 1 {
		fmt.Fprintln(errOut, "error: exactly one source file required")
		fmt.Fprint(errOut, usage)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	scanner, err := sigscan.New(sigscan.DefaultConfig())
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if err := applyConfig(scanner, cfg); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if *dumpTree {
		if err := scanner.DumpTree(out); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		return 0
	}

	results, err := scanFile(scanner, remaining[0])
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	for _, r := range results {
		if *verbose {
			fmt.Fprintf(out, "%s @ %d\n", r.Identifier(), r.Offset)
		}
	}
	if !*verbose {
		fmt.Fprintf(out, "%d match(es)\n", len(results))
	}
	return 0
}

func scanFile(scanner *sigscan.Scanner, path string) ([]sigscan.ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	state := sigscan.NewScanState()
	if err := scanner.ScanFile(state, fileSource{f}); err != nil {
		return nil, err
	}
	return state.Results()
}

// fileSource adapts *os.File to sigscan.Source: Read and Seek already
// match, Size is derived from Stat (spec.md §1's file-I/O collaborator
// contract names Size as its own call rather than requiring Stat).
type fileSource struct {
	*os.File
}

func (f fileSource) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

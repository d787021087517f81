package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/coregx/sigscan"
)

// fileConfig is the on-disk signature set a -c config file describes
// (spec.md §6.4: "Config file format (caller-defined) maps to repeated
// scanner_add_signature calls"). HuJSON lets the config carry comments
// and trailing commas.
type fileConfig struct {
	Signatures []signatureConfig `json:"signatures"`
}

type signatureConfig struct {
	Identifier    string `json:"identifier"`
	PatternOffset int64  `json:"pattern_offset"`
	PatternHex    string `json:"pattern_hex"`
	Flags         string `json:"flags"` // "start", "end", or "unbound"
}

func loadConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

func (c signatureConfig) flags() (sigscan.Flags, error) {
	switch c.Flags {
	case "start":
		return sigscan.BoundToStart, nil
	case "end":
		return sigscan.BoundToEnd, nil
	case "unbound", "":
		return sigscan.Unbound, nil
	default:
		return 0, fmt.Errorf("signature %q: unknown flags %q", c.Identifier, c.Flags)
	}
}

func (c signatureConfig) pattern() ([]byte, error) {
	pattern, err := hex.DecodeString(c.PatternHex)
	if err != nil {
		return nil, fmt.Errorf("signature %q: invalid pattern_hex %q: %w", c.Identifier, c.PatternHex, err)
	}
	return pattern, nil
}

func applyConfig(scanner *sigscan.Scanner, cfg fileConfig) error {
	for _, sc := range cfg.Signatures {
		flags, err := sc.flags()
		if err != nil {
			return err
		}
		pattern, err := sc.pattern()
		if err != nil {
			return err
		}
		if err := scanner.AddSignature(sc.Identifier, sc.PatternOffset, pattern, flags); err != nil {
			return fmt.Errorf("adding signature %q: %w", sc.Identifier, err)
		}
	}
	return nil
}

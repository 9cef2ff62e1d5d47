// Package output serializes prompts, fables, and evaluations to flat
// files (text, JSONL, CSV) and reads them back. These are thin wrappers;
// the only invariants that matter are the JSONL line shapes, which stay
// round-trip stable.
package output

import (
	"errors"
	"fmt"
)

var ErrFormat = errors.New("unsupported output format")

// Format selects a serialization for writers that support more than one.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSONL, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want text, jsonl, or csv)", ErrFormat, s)
	}
}

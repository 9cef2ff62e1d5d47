package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/evaluate"
)

// WriteEvaluations serializes evaluation records as JSONL or a readable
// text listing.
func WriteEvaluations(w io.Writer, records []evaluate.EvaluationRecord, format Format) error {
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("writing evaluations: %w", err)
			}
		}
		return nil
	case FormatText:
		for _, r := range records {
			fmt.Fprintf(w, "model: %s | evaluation: %s/10\n", r.Model, r.Grade)
			fmt.Fprintln(w, strings.Repeat("-", 80))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q for evaluations", ErrFormat, format)
	}
}

// ReadEvaluations parses an evaluations JSONL stream back into records.
func ReadEvaluations(r io.Reader) ([]evaluate.EvaluationRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []evaluate.EvaluationRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec evaluate.EvaluationRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%w: evaluations line %d: %v", config.ErrConfig, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading evaluations: %v", config.ErrConfig, err)
	}
	return records, nil
}

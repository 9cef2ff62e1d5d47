package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/dispatch"
)

var fableFields = []string{"model", "prompt", "fable", "hash"}

// WriteFables serializes fable records. The text form is a plain block per
// record separated by a dashed rule, matching what a human skims after a
// run; jsonl and csv are the machine forms.
func WriteFables(w io.Writer, records []dispatch.FableRecord, format Format) error {
	return writeFables(w, records, format, true)
}

// AppendFables writes records without the CSV header, for appending to a
// file that already carries one.
func AppendFables(w io.Writer, records []dispatch.FableRecord, format Format) error {
	return writeFables(w, records, format, false)
}

// OpenResults opens the results file for a run. In append mode existing
// content is preserved so a rerun never destroys earlier records; the
// returned flag reports whether a header still needs to be written (true
// only when the file starts out empty). Without append mode the file is
// truncated.
func OpenResults(path string, appendMode bool) (*os.File, bool, error) {
	if !appendMode {
		f, err := os.Create(path)
		if err != nil {
			return nil, false, fmt.Errorf("creating output file: %w", err)
		}
		return f, true, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("opening output file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("opening output file: %w", err)
	}
	return f, info.Size() == 0, nil
}

func writeFables(w io.Writer, records []dispatch.FableRecord, format Format, withHeader bool) error {
	switch format {
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("writing fables: %w", err)
			}
		}
		return nil
	case FormatCSV:
		cw := csv.NewWriter(w)
		if withHeader {
			if err := cw.Write(fableFields); err != nil {
				return fmt.Errorf("writing fables: %w", err)
			}
		}
		for _, r := range records {
			if err := cw.Write([]string{r.Model, r.Prompt, r.Fable, r.Hash}); err != nil {
				return fmt.Errorf("writing fables: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatText:
		for _, r := range records {
			fmt.Fprintf(w, "\nModel: %s\n", r.Model)
			fmt.Fprintf(w, "\nPrompt:\n%s\n", r.Prompt)
			fmt.Fprintf(w, "\nFable:\n%s\n", r.Fable)
			fmt.Fprintf(w, "\nHash: %s\n", r.Hash)
			fmt.Fprintln(w, strings.Repeat("-", 80))
		}
		return nil
	default:
		return fmt.Errorf("%w: %q for fables", ErrFormat, format)
	}
}

// ReadFables parses a fables JSONL stream back into records.
func ReadFables(r io.Reader) ([]dispatch.FableRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []dispatch.FableRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec dispatch.FableRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("%w: fables line %d: %v", config.ErrConfig, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading fables: %v", config.ErrConfig, err)
	}
	return records, nil
}

// LoadExistingHashes collects the content hashes already present in a
// previous output file so a rerun can skip completed (model, prompt)
// pairs. A missing file yields an empty set; text outputs carry no
// recoverable hashes.
func LoadExistingHashes(path string, format Format) (map[string]struct{}, error) {
	hashes := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hashes, nil
		}
		return nil, fmt.Errorf("reading output file %s: %w", path, err)
	}
	defer f.Close()

	switch format {
	case FormatJSONL:
		records, err := ReadFables(f)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			if r.Hash != "" {
				hashes[r.Hash] = struct{}{}
			}
		}
	case FormatCSV:
		cr := csv.NewReader(f)
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading output file %s: %w", path, err)
		}
		hashCol := -1
		for i, name := range rowOrNil(rows, 0) {
			if name == "hash" {
				hashCol = i
			}
		}
		if hashCol < 0 {
			return hashes, nil
		}
		for _, row := range rows[1:] {
			if hashCol < len(row) && row[hashCol] != "" {
				hashes[row[hashCol]] = struct{}{}
			}
		}
	}
	return hashes, nil
}

func rowOrNil(rows [][]string, i int) []string {
	if i < len(rows) {
		return rows[i]
	}
	return nil
}

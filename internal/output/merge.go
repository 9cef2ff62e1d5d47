package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tinyfabulist/tinyfabulist/internal/dispatch"
	"github.com/tinyfabulist/tinyfabulist/internal/evaluate"
)

// MergedRecord is a fable record joined with its evaluation, the final
// per-fable row of a full pipeline run.
type MergedRecord struct {
	Model    string
	Prompt   string
	Fable    string
	Hash     string
	Score    string
	Comments string
}

var mergedFields = []string{"model", "prompt", "fable", "hash", "eval_score", "eval_comments"}

// ParseEvaluationText extracts a numeric score from a judge verdict.
// Multi-metric verdicts such as
//
//	Grammar: 10/10
//	Creativity: 9/10
//	Consistency: 10/10
//
// average the recognized metric lines, with everything else collected as
// comments. A verdict that is just a bare number becomes the score
// directly. Anything else yields an empty score and the raw text as
// comments.
func ParseEvaluationText(text string) (score, comments string) {
	metrics := []string{"grammar:", "creativity:", "consistency:"}

	var values []float64
	var leftover []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		matched := false
		for _, metric := range metrics {
			if strings.HasPrefix(strings.ToLower(line), metric) {
				after := strings.TrimSpace(line[len(metric):])
				if v, ok := parseScoreFraction(after); ok {
					values = append(values, v)
					matched = true
				}
				break
			}
		}
		if !matched && line != "" {
			leftover = append(leftover, line)
		}
	}

	if len(values) > 0 {
		avg := 0.0
		for _, v := range values {
			avg += v
		}
		avg /= float64(len(values))
		return strconv.FormatFloat(avg, 'f', 2, 64), strings.Join(leftover, "\n")
	}

	trimmed := strings.TrimSpace(text)
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return trimmed, ""
	}
	return "", trimmed
}

// parseScoreFraction reads the numerator of an "n/10"-style value.
func parseScoreFraction(s string) (float64, bool) {
	num := strings.TrimSpace(strings.SplitN(s, "/", 2)[0])
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Merge joins evaluation records onto fable records, matching on
// (model, fable) content. Fables without a matching evaluation keep empty
// evaluation columns rather than being dropped.
func Merge(fables []dispatch.FableRecord, evals []evaluate.EvaluationRecord) []MergedRecord {
	type key struct{ model, fable string }
	verdicts := make(map[key]evaluate.EvaluationRecord, len(evals))
	for _, e := range evals {
		verdicts[key{e.Model, e.Fable}] = e
	}

	merged := make([]MergedRecord, 0, len(fables))
	for _, f := range fables {
		row := MergedRecord{
			Model:  f.Model,
			Prompt: f.Prompt,
			Fable:  f.Fable,
			Hash:   f.Hash,
		}
		if e, ok := verdicts[key{f.Model, f.Fable}]; ok {
			row.Score, row.Comments = ParseEvaluationText(e.Grade)
		}
		merged = append(merged, row)
	}
	return merged
}

// WriteMergedCSV writes the final merged rows with a header.
func WriteMergedCSV(w io.Writer, records []MergedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mergedFields); err != nil {
		return fmt.Errorf("writing merged csv: %w", err)
	}
	for _, r := range records {
		row := []string{r.Model, r.Prompt, r.Fable, r.Hash, r.Score, r.Comments}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing merged csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package evaluate grades generated fables with a separate judge model.
// The judge runs at temperature zero for reproducibility and its answer is
// surfaced as unparsed text; validating that it is actually numeric is an
// explicit non-goal.
package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/llm"
	"github.com/tinyfabulist/tinyfabulist/internal/template"
)

// EvaluationRecord pairs a graded fable with the judge's verdict.
type EvaluationRecord struct {
	Model string `json:"model"`
	Fable string `json:"fable"`
	Grade string `json:"grade"`
}

// Evaluator sends fables to the judge model configured in settings.
type Evaluator struct {
	client llm.Client
	cfg    config.Evaluator
	engine *template.Engine
}

// New builds an evaluator and verifies the evaluation prompt template up
// front: a template that cannot render a fable indicates a broken
// deployment and must fail before any judge calls are made.
func New(client llm.Client, cfg config.Evaluator, engine *template.Engine) (*Evaluator, error) {
	if _, err := engine.Render(cfg.Prompt, map[string]any{"fable": "sample"}); err != nil {
		return nil, fmt.Errorf("evaluation prompt template: %w", err)
	}
	return &Evaluator{client: client, cfg: cfg, engine: engine}, nil
}

// Evaluate grades one fable. Transport failures are logged and degraded to
// a sentinel grade so a bad judge call never aborts the batch.
func (e *Evaluator) Evaluate(ctx context.Context, fableText string) string {
	prompt, err := e.engine.Render(e.cfg.Prompt, map[string]any{"fable": fableText})
	if err != nil {
		// Caught at construction for the configured template; this only
		// triggers if rendering fails for a specific fable value.
		ctxlog.FromContext(ctx).Error("evaluation prompt render failed", "error", err)
		return fmt.Sprintf("Error evaluating fable: %v", err)
	}

	grade, err := e.client.Complete(ctx, e.cfg.System, prompt)
	if err != nil {
		ctxlog.FromContext(ctx).Error("evaluation failed", "error", err)
		return fmt.Sprintf("Error evaluating fable: %v", err)
	}
	// Judge endpoints tend to pad the verdict with whitespace or a
	// trailing newline.
	return strings.TrimSpace(grade)
}

// EvaluateAll grades every fable record in order and logs each verdict.
func (e *Evaluator) EvaluateAll(ctx context.Context, fables []FableInput) []EvaluationRecord {
	logger := ctxlog.FromContext(ctx)
	records := make([]EvaluationRecord, 0, len(fables))
	for _, f := range fables {
		grade := e.Evaluate(ctx, f.Fable)
		logger.Info("evaluated fable", "model", f.Model, "evaluation", grade+"/10")
		records = append(records, EvaluationRecord{Model: f.Model, Fable: f.Fable, Grade: grade})
	}
	return records
}

// FableInput is the minimal shape the evaluator needs from a generation
// record.
type FableInput struct {
	Model string
	Fable string
}

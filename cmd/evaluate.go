package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/evaluate"
	"github.com/tinyfabulist/tinyfabulist/internal/llm"
	"github.com/tinyfabulist/tinyfabulist/internal/output"
	"github.com/tinyfabulist/tinyfabulist/internal/template"
)

var evalFormat string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [fables-file]",
	Short: "Grade generated fables with the judge model",
	Long: `Grade each fable in a JSONL results file using the configured judge
model at temperature zero. The judge's verdict is surfaced as-is; no
validation of the returned grade is attempted.

Required environment variables:
  OPENAI_TOKEN - API key for the judge model endpoint

Examples:
  tinyfabulist evaluate results.jsonl
  tinyfabulist evaluate results.jsonl --output jsonl > evaluations.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalFormat, "output", "text", "Output format: text or jsonl")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := runContext()
	logger := ctxlog.FromContext(ctx)

	format, err := output.ParseFormat(evalFormat)
	if err != nil {
		return err
	}
	if format == output.FormatCSV {
		return fmt.Errorf("evaluate output supports text or jsonl, not csv")
	}

	token, err := requireEnv("OPENAI_TOKEN")
	if err != nil {
		return err
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger.Info("settings loaded successfully", "file", configFile)

	f, err := os.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: fables file '%s' not found", config.ErrConfig, args[0])
		}
		return fmt.Errorf("opening fables file: %w", err)
	}
	fables, err := output.ReadFables(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(fables) == 0 {
		return fmt.Errorf("%w: no fables found in '%s'", config.ErrConfig, args[0])
	}

	client, err := llm.NewOpenAIClient(llm.EvaluationConfig(
		settings.Evaluator.Model, token, settings.Evaluator.MaxTokens))
	if err != nil {
		return fmt.Errorf("configuring judge model: %w", err)
	}

	evaluator, err := evaluate.New(client, settings.Evaluator, template.NewEngine())
	if err != nil {
		return err
	}

	inputs := make([]evaluate.FableInput, 0, len(fables))
	for _, rec := range fables {
		inputs = append(inputs, evaluate.FableInput{Model: rec.Model, Fable: rec.Fable})
	}

	records := evaluator.EvaluateAll(ctx, inputs)
	return output.WriteEvaluations(os.Stdout, records, format)
}

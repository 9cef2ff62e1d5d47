package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/dispatch"
	"github.com/tinyfabulist/tinyfabulist/internal/llm"
	"github.com/tinyfabulist/tinyfabulist/internal/output"
)

var (
	fableModels      []string
	fableFormat      string
	fableOutputFile  string
	fableConcurrency int
	fableSkip        bool
)

var fablesCmd = &cobra.Command{
	Use:   "fables [prompts-file]",
	Short: "Generate fables from a JSONL prompt file",
	Long: `Generate fables by sending every prompt in the JSONL file to every
selected model endpoint. One generation request runs per (model, prompt)
pair; failures are logged and recorded as error sentinels without
aborting the batch.

Required environment variables:
  HF_ACCESS_TOKEN - access token for the configured generation endpoints

Examples:
  tinyfabulist fables prompts.jsonl --output jsonl --output-file results.jsonl
  tinyfabulist fables prompts.jsonl --models llama-8b,mistral-7b --concurrency 8
  tinyfabulist fables prompts.jsonl --output csv --skip-existing --output-file results.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runFables,
}

func init() {
	rootCmd.AddCommand(fablesCmd)
	fablesCmd.Flags().StringSliceVar(&fableModels, "models", nil, "Model keys to use (default: all configured)")
	fablesCmd.Flags().StringVar(&fableFormat, "output", "text", "Output format: text, jsonl, or csv")
	fablesCmd.Flags().StringVar(&fableOutputFile, "output-file", "", "Write results to a file instead of stdout")
	fablesCmd.Flags().IntVar(&fableConcurrency, "concurrency", -1, "Max in-flight requests (0 = unbounded, -1 = from config)")
	fablesCmd.Flags().BoolVar(&fableSkip, "skip-existing", false, "Skip (model, prompt) pairs already present in the output file")
}

func runFables(cmd *cobra.Command, args []string) error {
	ctx := runContext()
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	format, err := output.ParseFormat(fableFormat)
	if err != nil {
		return err
	}

	token, err := requireEnv("HF_ACCESS_TOKEN")
	if err != nil {
		return err
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger.Info("settings loaded successfully", "file", configFile)

	models, err := settings.SelectModels(fableModels)
	if err != nil {
		return err
	}

	promptFile, err := os.Open(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: prompt file '%s' not found", config.ErrConfig, args[0])
		}
		return fmt.Errorf("opening prompt file: %w", err)
	}
	systemPrompt, prompts, err := output.ReadPrompts(promptFile)
	promptFile.Close()
	if err != nil {
		return err
	}

	targets := make([]dispatch.Target, 0, len(models))
	for key, m := range models {
		client, err := llm.NewOpenAIClient(llm.GenerationConfig(m.BaseURL, token))
		if err != nil {
			return fmt.Errorf("configuring model %s: %w", key, err)
		}
		targets = append(targets, dispatch.Target{Key: key, Name: m.Name, Client: client})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Key < targets[j].Key })

	opts := dispatch.Options{
		Concurrency:    settings.Concurrency,
		RequestTimeout: settings.RequestTimeout(),
	}
	if fableConcurrency >= 0 {
		opts.Concurrency = fableConcurrency
	}
	if fableSkip {
		if fableOutputFile == "" {
			return fmt.Errorf("--skip-existing requires --output-file")
		}
		opts.ExistingHashes, err = output.LoadExistingHashes(fableOutputFile, format)
		if err != nil {
			return err
		}
		logger.Info("loaded existing hashes", "count", len(opts.ExistingHashes), "file", fableOutputFile)
	}

	records := dispatch.Run(ctx, targets, systemPrompt, prompts, opts)

	// With --skip-existing the output file is the dedup source, so it is
	// opened for append: earlier records must survive the rerun.
	var w io.Writer = os.Stdout
	writeHeader := true
	if fableOutputFile != "" {
		f, header, err := output.OpenResults(fableOutputFile, fableSkip)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
		writeHeader = header
	}
	if writeHeader {
		err = output.WriteFables(w, records, format)
	} else {
		err = output.AppendFables(w, records, format)
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("fable generation completed",
		"records", len(records),
		"models", len(targets),
		"prompts", len(prompts),
		"elapsed", elapsed.Round(time.Millisecond))

	if format == output.FormatText && fableOutputFile == "" {
		successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
		fmt.Fprintln(os.Stderr, successStyle.Render(
			fmt.Sprintf("✓ Generated %d fables across %d models in %s",
				len(records), len(targets), elapsed.Round(time.Second))))
	}
	return nil
}

package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/fable"
	"github.com/tinyfabulist/tinyfabulist/internal/output"
	"github.com/tinyfabulist/tinyfabulist/internal/template"
)

var (
	promptCount     int
	promptRandomize bool
	promptFormat    string
	promptSeed      int64
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Generate fable prompts from the configured feature lists",
	Long: `Generate fable prompts by expanding the configured feature lists
(characters, traits, settings, conflicts, resolutions, morals) into
combinations and rendering each through the fable prompt template.

Sequential selection walks each feature list round-robin; --randomize
draws uniformly random combinations with full-tuple deduplication.

Examples:
  tinyfabulist prompts --count 10
  tinyfabulist prompts --count 100 --randomize --output jsonl > prompts.jsonl`,
	Args: cobra.NoArgs,
	RunE: runPrompts,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.Flags().IntVar(&promptCount, "count", 100, "Number of prompts to generate")
	promptsCmd.Flags().BoolVar(&promptRandomize, "randomize", false, "Randomize feature selection")
	promptsCmd.Flags().StringVar(&promptFormat, "output", "text", "Output format: text or jsonl")
	promptsCmd.Flags().Int64Var(&promptSeed, "seed", 0, "Random seed for --randomize (0 = time-based)")
}

func runPrompts(cmd *cobra.Command, args []string) error {
	ctx := runContext()
	logger := ctxlog.FromContext(ctx)

	format, err := output.ParseFormat(promptFormat)
	if err != nil {
		return err
	}
	if format == output.FormatCSV {
		return fmt.Errorf("prompts output supports text or jsonl, not csv")
	}
	if promptCount <= 0 {
		return fmt.Errorf("count must be positive, got %d", promptCount)
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger.Info("settings loaded successfully", "file", configFile)

	features := fable.NewFeatureSet(settings.Generator.Features)

	var combos []fable.Combination
	if promptRandomize {
		seed := promptSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		combos, err = fable.Randomized(features, promptCount, rand.New(rand.NewSource(seed)))
		if err != nil {
			return err
		}
	} else {
		combos = fable.Sequential(features, promptCount)
	}

	set, err := fable.BuildPrompts(template.NewEngine(), settings.Generator.Prompt, combos)
	if err != nil {
		return err
	}

	return output.WritePrompts(os.Stdout, set, format)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
	"github.com/tinyfabulist/tinyfabulist/internal/output"
)

var (
	mergeFablesFile string
	mergeEvalsFile  string
	mergeOutFile    string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join evaluations onto fable results into a final CSV",
	Long: `Merge a fables JSONL file with an evaluations JSONL file into one CSV,
matching rows on (model, fable). Multi-metric judge verdicts like
"Grammar: 9/10" are averaged into a numeric score column; fables
without a verdict keep empty evaluation columns.

Example:
  tinyfabulist merge --fables results.jsonl --evals evaluations.jsonl --out final.csv`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeFablesFile, "fables", "", "Fables JSONL file (required)")
	mergeCmd.Flags().StringVar(&mergeEvalsFile, "evals", "", "Evaluations JSONL file (required)")
	mergeCmd.Flags().StringVar(&mergeOutFile, "out", "fables_final.csv", "Output CSV file")
	_ = mergeCmd.MarkFlagRequired("fables")
	_ = mergeCmd.MarkFlagRequired("evals")
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := runContext()
	logger := ctxlog.FromContext(ctx)

	ff, err := os.Open(mergeFablesFile)
	if err != nil {
		return fmt.Errorf("opening fables file: %w", err)
	}
	fables, err := output.ReadFables(ff)
	ff.Close()
	if err != nil {
		return err
	}

	ef, err := os.Open(mergeEvalsFile)
	if err != nil {
		return fmt.Errorf("opening evaluations file: %w", err)
	}
	evals, err := output.ReadEvaluations(ef)
	ef.Close()
	if err != nil {
		return err
	}

	merged := output.Merge(fables, evals)

	out, err := os.Create(mergeOutFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()
	if err := output.WriteMergedCSV(out, merged); err != nil {
		return err
	}

	logger.Info("merged results written", "rows", len(merged), "file", mergeOutFile)
	return nil
}

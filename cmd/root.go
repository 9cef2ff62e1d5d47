package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
	"github.com/tinyfabulist/tinyfabulist/internal/ctxlog"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tinyfabulist",
	Short: "TinyFabulist - A fable prompt generator",
	Long: `TinyFabulist generates short fables by combining structured narrative
parameters (character, trait, setting, conflict, resolution, moral) into
prompts, fanning them out across hosted model endpoints, and optionally
grading the results with a judge model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultFile, "Path to the settings file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

// Execute runs the root command. Configuration and template errors
// surface here and exit non-zero; generation failures never do.
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runContext builds the context every command runs under: a slog logger
// on stderr, carried via ctxlog so concurrent units can log without
// global state. Stdout stays reserved for data output.
func runContext() context.Context {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// requireEnv fetches a credential that must be present before any work
// begins.
func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s environment variable is required", name)
	}
	return v, nil
}

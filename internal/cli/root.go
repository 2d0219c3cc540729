// Package cli defines the diffwhisperer command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/freema/diffwhisperer/internal/config"
	"github.com/freema/diffwhisperer/internal/gemini"
	"github.com/freema/diffwhisperer/internal/generate"
	"github.com/freema/diffwhisperer/internal/git"
	"github.com/freema/diffwhisperer/internal/history"
	"github.com/freema/diffwhisperer/internal/logger"
	"github.com/freema/diffwhisperer/internal/tracing"
)

var (
	flagModel     string
	flagMaxTokens int
	flagRepoPath  string
	flagConfig    string

	cfg             *config.Config
	tracingShutdown func(context.Context) error

	rootCmd = &cobra.Command{
		Use:           "diffwhisperer",
		Short:         "Generate conventional commit messages from staged changes",
		Long:          "diffwhisperer summarizes the staged diff, asks a Gemini model for a Conventional Commits message, and prints or applies it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the command tree and returns the first error.
func Execute(version string) error {
	rootCmd.Version = version

	defer func() {
		if tracingShutdown != nil {
			if err := tracingShutdown(context.Background()); err != nil {
				slog.Warn("tracing shutdown failed", "error", err)
			}
		}
	}()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Gemini model name (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagMaxTokens, "max-tokens", 0, "Max output tokens for the generated message (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRepoPath, "repo-path", "", "Path to the git repository (default \".\")")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./diffwhisperer.yaml, ~/.diffwhisperer/config.yaml)")

	rootCmd.PersistentPreRunE = setup

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup loads config, applies flag overrides, and initializes logging and
// tracing before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("model") {
		cfg.Gemini.Model = flagModel
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.Gemini.MaxTokens = flagMaxTokens
	}
	if cmd.Flags().Changed("repo-path") {
		cfg.Git.RepoPath = flagRepoPath
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	tracingShutdown, err = tracing.Setup(cmd.Context(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Version:      rootCmd.Version,
	})
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}

	return nil
}

// newService assembles the pipeline for the configured repository.
// The returned closer releases the history store, if any.
func newService(ctx context.Context) (*generate.Service, func(), error) {
	repo, err := git.Open(ctx, cfg.Git.RepoPath)
	if err != nil {
		return nil, nil, err
	}

	client := gemini.NewClient(gemini.Options{
		Endpoint: cfg.Gemini.Endpoint,
		APIKey:   cfg.Gemini.APIKey,
		Timeout:  cfg.Gemini.Timeout,
		Traced:   cfg.Tracing.Enabled,
	})

	hist := openHistory()
	closer := func() {
		if hist != nil {
			hist.Close()
		}
	}

	return generate.NewService(repo, client, hist), closer, nil
}

// openHistory opens the history store; any failure downgrades to a warning
// because history is a convenience, not part of the pipeline contract.
func openHistory() *history.Store {
	if !cfg.History.Enabled || cfg.History.Path == "" {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("history disabled", "error", err)
		return nil
	}
	return store
}

func pipelineOptions() generate.Options {
	return generate.Options{
		Model:        cfg.Gemini.Model,
		MaxTokens:    cfg.Gemini.MaxTokens,
		MaxDiffBytes: cfg.Git.MaxDiffBytes,
	}
}

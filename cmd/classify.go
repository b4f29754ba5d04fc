package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loanscope/bankmatch/internal/checkpoint"
	"github.com/loanscope/bankmatch/internal/classify"
	"github.com/loanscope/bankmatch/internal/runlog"
	anthropicpkg "github.com/loanscope/bankmatch/pkg/anthropic"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify lender names as bank or non-bank with Claude",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		names, err := readColumn(cfg.Paths.UniqueLendersFile(), "Lender_Name")
		if err != nil {
			return err
		}

		client, err := anthropicpkg.New(anthropicpkg.Config{
			Key:       cfg.LLM.Key,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.LLM.Timeout(),
		})
		if err != nil {
			return err
		}

		store, err := checkpoint.Open(cfg.Paths.ClassifiedFile(),
			classify.Header, classify.KeyColumn, cfg.Batch.FlushClassify)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		runner := classify.NewRunner(
			classify.NewLLMClassifier(client, cfg.LLM.ClassifierModel),
			cfg.Batch.ClassifySize, cfg.Batch.LLMWorkers)

		return withRunLog(ctx, "classify", func(ctx context.Context) (runlog.Counts, error) {
			stats, err := runner.Run(ctx, names, store)
			counts := runlog.Counts{Processed: stats.Processed, Skipped: stats.Skipped, Failed: stats.Failed}
			if err != nil {
				return counts, err
			}
			fmt.Printf("Classified %d names (%d skipped, %d failed) -> %s\n",
				stats.Processed, stats.Skipped, stats.Failed, cfg.Paths.ClassifiedFile())
			return counts, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

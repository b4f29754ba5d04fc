package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loanscope/bankmatch/internal/checkpoint"
	"github.com/loanscope/bankmatch/internal/match"
	"github.com/loanscope/bankmatch/internal/runlog"
	"github.com/loanscope/bankmatch/pkg/fdic"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Resolve normalized lenders against the FDIC institution registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputs, err := match.ReadInputs(cfg.Paths.QueriesFile())
		if err != nil {
			return err
		}

		client, err := fdic.New(fdic.Config{
			Endpoint:           cfg.FDIC.Endpoint,
			Timeout:            cfg.FDIC.Timeout(),
			MaxRetries:         cfg.FDIC.MaxRetries,
			RatePerSec:         cfg.FDIC.RatePerSec,
			ProxyURL:           cfg.FDIC.ProxyURL,
			InsecureSkipVerify: cfg.FDIC.InsecureSkipVerify,
		})
		if err != nil {
			return err
		}

		store, err := checkpoint.Open(cfg.Paths.MasterMapFile(),
			match.Header, match.KeyColumn, cfg.Batch.FlushMatch)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		runner := match.NewRunner(
			match.NewMatcher(client, match.DefaultConfig()),
			cfg.Batch.MatchWorkers)

		return withRunLog(ctx, "match", func(ctx context.Context) (runlog.Counts, error) {
			stats, err := runner.Run(ctx, inputs, store)
			counts := runlog.Counts{Processed: stats.Processed, Skipped: stats.Skipped, Failed: stats.Failed}
			if err != nil {
				return counts, err
			}
			fmt.Printf("Matched %d of %d lenders (%d skipped, %d failed) -> %s\n",
				stats.Found, stats.Processed, stats.Skipped, stats.Failed, cfg.Paths.MasterMapFile())
			return counts, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

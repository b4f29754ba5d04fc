package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loanscope/bankmatch/internal/filter"
	"github.com/loanscope/bankmatch/internal/runlog"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Collect unique US bank-like lender names from DealScan files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withRunLog(ctx, "aggregate", func(ctx context.Context) (runlog.Counts, error) {
			stats, err := filter.Aggregate(cfg.Paths.DealscanDir, cfg.Paths.UniqueLendersFile())
			counts := runlog.Counts{
				Processed: int64(stats.UniqueNames),
				Skipped:   int64(stats.FilesSkipped),
			}
			if err != nil {
				return counts, err
			}
			fmt.Printf("Scanned %d files (%d skipped), kept %d rows, %d unique lenders -> %s\n",
				stats.FilesScanned, stats.FilesSkipped, stats.RowsKept, stats.UniqueNames,
				cfg.Paths.UniqueLendersFile())
			return counts, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}

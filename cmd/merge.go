package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loanscope/bankmatch/internal/merge"
	"github.com/loanscope/bankmatch/internal/runlog"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge call reports with matched DealScan lenders into yearly panels",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withRunLog(ctx, "merge", func(ctx context.Context) (runlog.Counts, error) {
			stats, err := merge.Merge(
				cfg.Paths.MasterMapFile(),
				cfg.Paths.CallDir,
				cfg.Paths.DealscanDir,
				cfg.Paths.FinalDir,
			)
			counts := runlog.Counts{
				Processed: int64(stats.RowsWritten),
				Skipped:   int64(stats.FilesSkipped),
			}
			if err != nil {
				return counts, err
			}
			fmt.Printf("Wrote %d panel files, %d rows (%d matched), %d files skipped -> %s\n",
				stats.FilesProcessed, stats.RowsWritten, stats.RowsMatched, stats.FilesSkipped,
				cfg.Paths.FinalDir)
			return counts, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

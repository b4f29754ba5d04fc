package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/loanscope/bankmatch/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded stage runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rl, err := runlog.Open(ctx, cfg.RunLog.Path)
		if err != nil {
			return err
		}
		defer rl.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := rl.List(ctx, limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded.")
			return nil
		}

		formatRuns(os.Stdout, entries)
		return nil
	},
}

func formatRuns(out io.Writer, entries []runlog.Entry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTAGE\tSTATUS\tSTARTED\tDURATION\tPROCESSED\tSKIPPED\tFAILED")

	for _, e := range entries {
		dur := ""
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			id,
			e.Stage,
			e.Status,
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			dur,
			e.Processed,
			e.Skipped,
			e.Failed,
		)
	}
	_ = w.Flush()
}

func init() {
	runsCmd.Flags().Int("limit", 50, "max number of runs to display")
	rootCmd.AddCommand(runsCmd)
}

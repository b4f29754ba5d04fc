package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/internal/checkpoint"
	"github.com/loanscope/bankmatch/internal/normalize"
	"github.com/loanscope/bankmatch/internal/runlog"
	anthropicpkg "github.com/loanscope/bankmatch/pkg/anthropic"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize lender names and derive registry queries with Claude",
	Long:  "Reads bank-classified lender names (falling back to the full unique list when no classification checkpoint exists), asks Claude for the legal name, search core, predecessor, and status of each, and persists them with derived registry query strings.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		names, err := normalizeInput()
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

		store, err := checkpoint.Open(cfg.Paths.QueriesFile(),
			normalize.Header, normalize.KeyColumn, cfg.Batch.FlushNormalize)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		runner := normalize.NewRunner(
			normalize.NewLLMNormalizer(client, cfg.LLM.ReasoningModel),
			cfg.Batch.NormalizeSize, cfg.Batch.LLMWorkers)

		return withRunLog(ctx, "normalize", func(ctx context.Context) (runlog.Counts, error) {
			stats, err := runner.Run(ctx, names, store)
			counts := runlog.Counts{Processed: stats.Processed, Skipped: stats.Skipped, Failed: stats.Failed}
			if err != nil {
				return counts, err
			}
			fmt.Printf("Normalized %d names (%d skipped, %d failed) -> %s\n",
				stats.Processed, stats.Skipped, stats.Failed, cfg.Paths.QueriesFile())
			return counts, nil
		})
	},
}

// normalizeInput prefers the classify checkpoint, keeping only names judged
// to be banks. Without one it falls back to the full unique lender list.
func normalizeInput() ([]string, error) {
	classified := cfg.Paths.ClassifiedFile()
	if _, err := os.Stat(classified); err != nil {
		zap.L().Info("no classification checkpoint, using full lender list",
			zap.String("file", cfg.Paths.UniqueLendersFile()))
		return readColumn(cfg.Paths.UniqueLendersFile(), "Lender_Name")
	}

	f, err := os.Open(classified)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open %s", classified)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read header of %s", classified)
	}
	nameIdx, bankIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))) {
		case "name":
			nameIdx = i
		case "is_bank":
			bankIdx = i
		}
	}
	if nameIdx < 0 || bankIdx < 0 {
		return nil, eris.Errorf("cmd: %s: missing name/is_bank columns", classified)
	}

	var names []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "cmd: read row of %s", classified)
		}
		if nameIdx >= len(record) || bankIdx >= len(record) {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(record[bankIdx]), "true") {
			continue
		}
		name := strings.TrimSpace(record[nameIdx])
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/loanscope/bankmatch/internal/runlog"
)

// withRunLog brackets a stage with run-log bookkeeping. The stage still
// runs if the run log cannot be opened; bookkeeping is best-effort.
func withRunLog(ctx context.Context, stage string, fn func(context.Context) (runlog.Counts, error)) error {
	rl, err := runlog.Open(ctx, cfg.RunLog.Path)
	if err != nil {
		zap.L().Warn("run log unavailable", zap.Error(err))
		_, runErr := fn(ctx)
		return runErr
	}
	defer rl.Close() //nolint:errcheck

	runID, err := rl.Start(ctx, stage)
	if err != nil {
		zap.L().Warn("run log start failed", zap.Error(err))
	}

	counts, runErr := fn(ctx)
	if runID != "" {
		if runErr != nil {
			_ = rl.Fail(context.WithoutCancel(ctx), runID, runErr.Error())
		} else {
			_ = rl.Complete(context.WithoutCancel(ctx), runID, counts)
		}
	}
	return runErr
}

// readColumn reads one named column from a CSV file. Column lookup is
// case-insensitive and BOM-tolerant.
func readColumn(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read header of %s", path)
	}
	want := strings.ToLower(column)
	colIdx := -1
	for i, col := range header {
		col = strings.TrimPrefix(col, "\uFEFF")
		if strings.ToLower(strings.TrimSpace(col)) == want {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, eris.Errorf("cmd: %s: missing column %s", path, column)
	}

	var values []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "cmd: read row of %s", path)
		}
		if colIdx >= len(record) {
			continue
		}
		v := strings.TrimSpace(record[colIdx])
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

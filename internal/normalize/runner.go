package normalize

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/loanscope/bankmatch/internal/checkpoint"
)

// Header is the checkpoint schema for this stage.
var Header = []string{
	"original", "clean_legal_name", "search_core_name",
	"predecessor", "status", "fdic_query_main", "fdic_query_pred",
}

// KeyColumn is the business key of the normalize checkpoint.
const KeyColumn = "original"

// Row renders a normalized lender as a checkpoint record, deriving the
// registry query strings from the core and predecessor names.
func Row(l Lender) []string {
	return []string{
		l.Original,
		l.LegalName,
		l.CoreName,
		l.Predecessor,
		l.Status,
		BuildQuery(l.CoreName),
		BuildQuery(l.Predecessor),
	}
}

// Stats summarizes one normalize run.
type Stats struct {
	Skipped   int64
	Processed int64
	Failed    int64
}

// Runner fans batches out to a worker pool; the calling goroutine owns all
// checkpoint writes.
type Runner struct {
	normalizer Normalizer
	batchSize  int
	workers    int
}

// NewRunner creates a runner.
func NewRunner(normalizer Normalizer, batchSize, workers int) *Runner {
	if batchSize < 1 {
		batchSize = 30
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{normalizer: normalizer, batchSize: batchSize, workers: workers}
}

// Run normalizes every name not already in the checkpoint.
func (r *Runner) Run(ctx context.Context, names []string, store checkpoint.Log) (Stats, error) {
	var stats Stats
	log := zap.L().With(zap.String("stage", "normalize"))

	var pending []string
	for _, name := range names {
		if len(name) < 2 {
			continue
		}
		if store.Contains(name) {
			stats.Skipped++
			continue
		}
		pending = append(pending, name)
	}
	if len(pending) == 0 {
		log.Info("all names already normalized", zap.Int64("skipped", stats.Skipped))
		return stats, nil
	}

	var batches [][]string
	for start := 0; start < len(pending); start += r.batchSize {
		end := min(start+r.batchSize, len(pending))
		batches = append(batches, pending[start:end])
	}

	log.Info("normalizing names",
		zap.Int("pending", len(pending)),
		zap.Int("batches", len(batches)),
		zap.Int("workers", r.workers),
	)

	results := make(chan []Lender, r.workers)
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	go func() {
		for _, batch := range batches {
			g.Go(func() error {
				lenders, err := r.normalizer.NormalizeBatch(gctx, batch)
				if err != nil {
					failed.Add(int64(len(batch)))
					log.Warn("normalization batch failed", zap.Error(err))
					return nil
				}
				select {
				case results <- lenders:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for lenders := range results {
		for _, l := range lenders {
			if err := store.Append(Row(l)); err != nil {
				return stats, err
			}
			stats.Processed++
		}
	}
	if err := store.Flush(); err != nil {
		return stats, err
	}

	stats.Failed = failed.Load()
	log.Info("normalization complete",
		zap.Int64("processed", stats.Processed),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("failed", stats.Failed),
	)
	return stats, ctx.Err()
}

package classify

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/loanscope/bankmatch/internal/checkpoint"
)

// Header is the checkpoint schema for this stage; KeyColumn is its key.
var Header = []string{"name", "is_bank"}

// KeyColumn is the business key of the classify checkpoint.
const KeyColumn = "name"

// Stats summarizes one classify run.
type Stats struct {
	Skipped   int64
	Processed int64
	Failed    int64
}

// Runner fans batches out to a worker pool and funnels verdicts back to the
// checkpoint. Workers never touch the file; all writes happen on the
// calling goroutine.
type Runner struct {
	classifier Classifier
	batchSize  int
	workers    int
}

// NewRunner creates a runner.
func NewRunner(classifier Classifier, batchSize, workers int) *Runner {
	if batchSize < 1 {
		batchSize = 80
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{classifier: classifier, batchSize: batchSize, workers: workers}
}

// Run classifies every name not already in the checkpoint.
func (r *Runner) Run(ctx context.Context, names []string, store checkpoint.Log) (Stats, error) {
	var stats Stats
	log := zap.L().With(zap.String("stage", "classify"))

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
		log.Info("all names already classified", zap.Int64("skipped", stats.Skipped))
		return stats, nil
	}

	batches := chunk(pending, r.batchSize)
	log.Info("classifying names",
		zap.Int("pending", len(pending)),
		zap.Int("batches", len(batches)),
		zap.Int("workers", r.workers),
	)

	results := make(chan []Verdict, r.workers)
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	go func() {
		for _, batch := range batches {
			g.Go(func() error {
				verdicts, err := r.classifier.ClassifyBatch(gctx, batch)
				if err != nil {
					failed.Add(int64(len(batch)))
					log.Warn("classification batch failed", zap.Error(err))
					return nil // don't abort the pool on one batch
				}
				select {
				case results <- verdicts:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for verdicts := range results {
		for _, v := range verdicts {
			if v.Name == "" {
				continue
			}
			if err := store.Append([]string{v.Name, strconv.FormatBool(v.IsBank)}); err != nil {
				return stats, err
			}
			stats.Processed++
		}
	}
	if err := store.Flush(); err != nil {
		return stats, err
	}

	stats.Failed = failed.Load()
	log.Info("classification complete",
		zap.Int64("processed", stats.Processed),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("failed", stats.Failed),
	)
	return stats, ctx.Err()
}

// chunk splits names into batches of at most size.
func chunk(names []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(names); start += size {
		end := min(start+size, len(names))
		batches = append(batches, names[start:end])
	}
	return batches
}

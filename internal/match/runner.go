package match

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/loanscope/bankmatch/internal/checkpoint"
)

// Stats summarizes one match run.
type Stats struct {
	Skipped   int64
	Processed int64
	Found     int64
	Failed    int64
}

// Runner resolves lenders on a worker pool, one lender per task, and
// funnels ranked results back to the master map checkpoint. Workers never
// touch the file.
type Runner struct {
	matcher *Matcher
	workers int
}

func NewRunner(matcher *Matcher, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{matcher: matcher, workers: workers}
}

// Run resolves every input not already in the checkpoint.
func (r *Runner) Run(ctx context.Context, inputs []Input, store checkpoint.Log) (Stats, error) {
	var stats Stats
	log := zap.L().With(zap.String("stage", "match"))

	var pending []Input
	for _, in := range inputs {
		if in.Original == "" {
			continue
		}
		if store.Contains(in.Original) {
			stats.Skipped++
			continue
		}
		pending = append(pending, in)
	}
	if len(pending) == 0 {
		log.Info("all lenders already matched", zap.Int64("skipped", stats.Skipped))
		return stats, nil
	}

	log.Info("matching lenders",
		zap.Int("pending", len(pending)),
		zap.Int("workers", r.workers),
	)

	results := make(chan Result, r.workers)
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	go func() {
		for _, in := range pending {
			g.Go(func() error {
				res, err := r.matcher.Resolve(gctx, in)
				if err != nil {
					failed.Add(1)
					log.Warn("lender resolution aborted",
						zap.String("lender", in.Original), zap.Error(err))
					return nil
				}
				select {
				case results <- res:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		if err := store.Append(Row(res)); err != nil {
			return stats, err
		}
		stats.Processed++
		if len(res.Matches) > 0 {
			stats.Found++
		}
	}
	if err := store.Flush(); err != nil {
		return stats, err
	}

	stats.Failed = failed.Load()
	log.Info("matching complete",
		zap.Int64("processed", stats.Processed),
		zap.Int64("found", stats.Found),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("failed", stats.Failed),
	)
	return stats, ctx.Err()
}

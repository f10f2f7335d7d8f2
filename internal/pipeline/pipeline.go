// Package pipeline drives a task over a clause list: batching, fallback
// completion per batch, parse recovery, and reconciliation into exactly one
// record per input clause. Batches run sequentially with pacing by default,
// or concurrently under a worker limit.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/clauseline/clauseline/internal/batch"
	"github.com/clauseline/clauseline/internal/domain"
	"github.com/clauseline/clauseline/internal/llm/configuration"
	"github.com/clauseline/clauseline/internal/llm/fallback"
	"github.com/clauseline/clauseline/internal/llm/registry"
	"github.com/clauseline/clauseline/internal/parse"
	"github.com/clauseline/clauseline/internal/reconcile"
)

// errReasonLimit bounds how much of an error message is embedded in a
// failure record.
const errReasonLimit = 200

// Task is one judgment pass over clauses: it renders the batch prompt and
// maps parsed entries (or failures) into records of its result type.
type Task[R any] interface {
	Name() string
	Prompt(batch []domain.Clause) string
	reconcile.Mapper[R]
}

// Completer executes one prompt through a fallback chain. Satisfied by
// *fallback.Orchestrator.
type Completer interface {
	Complete(ctx context.Context, prompt string, chain []registry.Candidate) (*fallback.Result, error)
}

// Options carries the batching and execution knobs for one run.
type Options struct {
	Batch    configuration.BatchConfig
	Pipeline configuration.PipelineConfig
}

// Run executes the task over all clauses and returns one record per input
// clause, in batch order. A failed batch degrades to error records rather
// than aborting the run; only context cancellation stops early.
func Run[R any](ctx context.Context, completer Completer, task Task[R], clauses []domain.Clause, chain []registry.Candidate, opts Options) ([]R, error) {
	if len(clauses) == 0 {
		return []R{}, nil
	}

	logger := slog.Default().With("component", "pipeline", "task", task.Name())

	batcher := batch.New(opts.Batch)
	batches := batch.Split(batcher, clauses, func(c domain.Clause) string { return c.Text })
	logger.Info("starting run",
		"clauses", len(clauses),
		"batches", len(batches),
		"char_limit", batcher.CharLimit(),
		"parallel", opts.Pipeline.Parallel)

	if opts.Pipeline.Parallel {
		return runParallel(ctx, completer, task, batches, chain, opts, logger)
	}
	return runSequential(ctx, completer, task, batches, chain, opts, logger)
}

func runSequential[R any](ctx context.Context, completer Completer, task Task[R], batches [][]domain.Clause, chain []registry.Candidate, opts Options, logger *slog.Logger) ([]R, error) {
	// Burst 1 with the inter-batch delay as the refill period: the first
	// batch starts immediately, later ones are paced.
	limiter := rate.NewLimiter(rate.Every(opts.Pipeline.InterBatchDelay), 1)

	var results []R
	for i, b := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		logger.Info("processing batch", "batch", i+1, "total", len(batches), "clauses", len(b))
		results = append(results, processBatch(ctx, completer, task, b, chain, logger)...)
	}
	return results, nil
}

func runParallel[R any](ctx context.Context, completer Completer, task Task[R], batches [][]domain.Clause, chain []registry.Candidate, opts Options, logger *slog.Logger) ([]R, error) {
	workers := opts.Pipeline.Workers
	if workers > opts.Pipeline.WorkerCap {
		workers = opts.Pipeline.WorkerCap
	}
	if workers < 1 {
		workers = 1
	}

	perBatch := make([][]R, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Info("processing batch", "batch", i+1, "total", len(batches), "clauses", len(b))
			perBatch[i] = processBatch(gctx, completer, task, b, chain, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []R
	for _, rs := range perBatch {
		results = append(results, rs...)
	}
	return results, nil
}

// processBatch runs one batch end to end. Completion or parse failures
// degrade to one error record per clause so cardinality holds.
func processBatch[R any](ctx context.Context, completer Completer, task Task[R], b []domain.Clause, chain []registry.Candidate, logger *slog.Logger) []R {
	res, err := completer.Complete(ctx, task.Prompt(b), chain)
	if err != nil {
		logger.Error("batch completion failed", "clauses", len(b), "error", err)
		return reconcile.Failure[R](task, b, "LLM call failed: "+truncate(err.Error(), errReasonLimit))
	}

	entries, err := parse.ExtractArray(res.Text)
	if err != nil {
		logger.Error("batch parse failed",
			"clauses", len(b),
			"provider", res.Provider,
			"model", res.Model,
			"raw_preview", truncate(res.Text, 800))
		return reconcile.Failure[R](task, b, "JSON parsing failed for LLM response")
	}

	if res.FallbackUsed || res.Degraded {
		logger.Warn("batch completed degraded",
			"provider", res.Provider,
			"model", res.Model,
			"fallback_used", res.FallbackUsed,
			"degraded", res.Degraded)
	}
	return reconcile.Entries[R](task, b, entries)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/common/metrics"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/store"
)

// GenerationProcessor is the per-generation step the batch runner fans out.
type GenerationProcessor interface {
	ProcessGeneration(ctx context.Context, gen *model.Generation) Result
}

type BatchResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// BatchRunner processes every pending generation through a bounded pool.
type BatchRunner struct {
	generations store.GenerationStore
	processor   GenerationProcessor
	metrics     *metrics.Metrics
	concurrency int
}

func NewBatchRunner(generations store.GenerationStore, processor GenerationProcessor, m *metrics.Metrics, concurrency int) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchRunner{
		generations: generations,
		processor:   processor,
		metrics:     m,
		concurrency: concurrency,
	}
}

// ProcessPending runs all pending generations and waits for every one of them
// to settle. Only a failure to list the pending set is returned as an error.
func (r *BatchRunner) ProcessPending(ctx context.Context) (BatchResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "generator.batch"})
	start := time.Now()

	pending, err := r.generations.ListPending(ctx)
	if err != nil {
		r.metrics.RecordBatch(0, err)
		return BatchResult{}, fmt.Errorf("listing pending generations: %w", err)
	}
	if len(pending) == 0 {
		r.metrics.RecordBatch(0, nil)
		return BatchResult{}, nil
	}

	slog.InfoContext(ctx, "processing pending generations",
		"count", len(pending),
		"concurrency", r.concurrency)

	results := make([]Result, len(pending))

	// Goroutines never return an error, so one failure cannot cancel its siblings.
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i := range pending {
		gen := &pending[i]
		g.Go(func() error {
			results[i] = r.processor.ProcessGeneration(ctx, gen)
			return nil
		})
	}
	_ = g.Wait()

	summary := BatchResult{Processed: len(pending)}
	for _, res := range results {
		switch {
		case res.Success:
			summary.Succeeded++
		case res.Skipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	r.metrics.RecordBatch(len(pending), nil)
	slog.InfoContext(ctx, "pending generations processed",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration_ms", time.Since(start).Milliseconds())

	return summary, nil
}

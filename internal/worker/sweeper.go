package worker

import (
	"context"
	"log/slog"
	"time"

	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/internal/model"
)

type SweeperConfig struct {
	Interval      time.Duration
	StaleRunAfter time.Duration // 0 disables stale-run recovery
}

// Sweeper periodically processes pending generations whose job was lost and
// fails generations stuck in running after a worker crash. It stays idle while
// the completion provider is reported unhealthy.
type Sweeper struct {
	generations GenerationReader
	runner      PendingRunner
	health      HealthGate
	cfg         SweeperConfig
	now         func() time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewSweeper(generations GenerationReader, runner PendingRunner, health HealthGate, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Sweeper{
		generations: generations,
		runner:      runner,
		health:      health,
		cfg:         cfg,
		now:         time.Now,
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "generator.worker.sweeper"})
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "sweeper started",
		"interval", s.cfg.Interval,
		"stale_run_after", s.cfg.StaleRunAfter)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "sweeper stopping")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}

// SweepOnce runs one sweep cycle.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	if s.cfg.StaleRunAfter > 0 {
		ids, err := s.generations.FailStaleRunning(ctx, s.now().Add(-s.cfg.StaleRunAfter),
			model.ErrorCodeStaleRun, "generation did not finish in time")
		if err != nil {
			slog.ErrorContext(ctx, "failing stale generations", "error", err)
		} else if len(ids) > 0 {
			slog.WarnContext(ctx, "failed stale running generations",
				"count", len(ids),
				"generation_ids", ids)
		}
	}

	if s.health != nil && !s.health.Allow() {
		slog.InfoContext(ctx, "completion provider unhealthy, skipping pending sweep")
		return
	}

	result, err := s.runner.ProcessPending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "pending sweep failed", "error", err)
		return
	}
	if result.Processed > 0 {
		slog.InfoContext(ctx, "pending sweep finished",
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"skipped", result.Skipped)
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/store"
)

type Config struct {
	MaxAttempts int
	ErrorDelay  time.Duration // pause after a failed read
}

// Worker consumes generation jobs from the stream. Each generation job runs
// the processor; a sweep job runs the batch runner.
type Worker struct {
	consumer    Consumer
	generations GenerationReader
	processor   GenerationProcessor
	runner      PendingRunner
	cfg         Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, generations GenerationReader, processor GenerationProcessor, runner PendingRunner, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = time.Second
	}
	return &Worker{
		consumer:    consumer,
		generations: generations,
		processor:   processor,
		runner:      runner,
		cfg:         cfg,
		stopCh:      make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "generator.worker"})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-time.After(w.cfg.ErrorDelay):
				case <-w.stopCh:
					slog.InfoContext(ctx, "worker stopping")
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"generation_id", msg.GenerationID)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID,
				"generation_id", msg.GenerationID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage handles one job and acks it. A returned error means the
// message was not acked and should be retried. Exported for the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	msgID := msg.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{MessageID: &msgID})
	if msg.GenerationID != 0 {
		ctx = logger.WithLogFields(ctx, logger.LogFields{GenerationID: &msg.GenerationID})
	}

	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.process_message")
	defer span.End()
	ctx = span.Context()

	slog.InfoContext(ctx, "processing message",
		"task_type", msg.TaskType,
		"attempt", msg.Attempt)

	switch msg.TaskType {
	case queue.TaskTypeProcessPending:
		result, err := w.runner.ProcessPending(ctx)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("processing pending generations: %w", err)
		}
		slog.InfoContext(ctx, "pending sweep finished",
			"processed", result.Processed,
			"succeeded", result.Succeeded,
			"failed", result.Failed,
			"skipped", result.Skipped)

	default:
		gen, err := w.generations.GetByID(ctx, msg.GenerationID)
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "generation not found, dropping job")
			break
		}
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("loading generation: %w", err)
		}

		// Failures are recorded on the generation itself; the job is done either way.
		result := w.processor.ProcessGeneration(ctx, gen)
		slog.InfoContext(ctx, "generation job finished",
			"success", result.Success,
			"skipped", result.Skipped,
			"candidates_created", result.CandidatesCreated,
			"error_code", result.ErrorCode)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will redeliver; processing a finished generation is a no-op.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"generation_id", msg.GenerationID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"generation_id", msg.GenerationID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}

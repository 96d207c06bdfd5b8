package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Job is what the API publishes after inserting a pending generation.
type Job struct {
	TaskType     TaskType
	GenerationID int64
	UserID       string
	TraceID      *string
	Attempt      int
}

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, job Job) error {
	attempt := job.Attempt
	if attempt <= 0 {
		attempt = 1
	}
	taskType := job.TaskType
	if taskType == "" {
		taskType = TaskTypeGeneration
	}

	fields := map[string]any{
		"task_type": string(taskType),
		"attempt":   attempt,
	}
	if job.GenerationID != 0 {
		fields["generation_id"] = job.GenerationID
	}
	if job.UserID != "" {
		fields["user_id"] = job.UserID
	}
	if job.TraceID != nil && *job.TraceID != "" {
		fields["trace_id"] = *job.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue generation job: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued generation job",
		"task_type", taskType,
		"generation_id", job.GenerationID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

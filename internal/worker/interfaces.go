package worker

import (
	"context"
	"time"

	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// GenerationProcessor runs a single generation to a terminal status.
type GenerationProcessor interface {
	ProcessGeneration(ctx context.Context, gen *model.Generation) generation.Result
}

// PendingRunner processes every pending generation.
type PendingRunner interface {
	ProcessPending(ctx context.Context) (generation.BatchResult, error)
}

// GenerationReader is the subset of store.GenerationStore the worker needs.
type GenerationReader interface {
	GetByID(ctx context.Context, id int64) (*model.Generation, error)
	FailStaleRunning(ctx context.Context, startedBefore time.Time, code, message string) ([]int64, error)
}

// HealthGate reports whether the completion provider should be called now.
type HealthGate interface {
	Allow() bool
}

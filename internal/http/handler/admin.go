package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/http/dto"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/queue"
)

type GenerationGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Generation, error)
}

type GenerationProcessor interface {
	ProcessGeneration(ctx context.Context, gen *model.Generation) generation.Result
}

type PendingRunner interface {
	ProcessPending(ctx context.Context) (generation.BatchResult, error)
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// AdminHandler runs generations for operators. The worker is the normal
// path; these exist for backfills and debugging.
type AdminHandler struct {
	generations GenerationGetter
	processor   GenerationProcessor
	runner      PendingRunner
	jobs        JobEnqueuer
}

func NewAdminHandler(generations GenerationGetter, processor GenerationProcessor, runner PendingRunner, jobs JobEnqueuer) *AdminHandler {
	return &AdminHandler{
		generations: generations,
		processor:   processor,
		runner:      runner,
		jobs:        jobs,
	}
}

// ProcessPending sweeps every pending generation. With ?async=true the sweep
// is handed to a worker as a process_pending job and 202 is returned.
func (h *AdminHandler) ProcessPending(c *gin.Context) {
	if c.Query("async") == "true" {
		h.enqueueSweep(c)
		return
	}

	result, err := h.runner.ProcessPending(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to process pending generations")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(result))
}

// ProcessOne runs a single generation. The result body is returned with 200
// whether or not the run succeeded; failures are part of the result.
func (h *AdminHandler) ProcessOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	gen, err := h.generations.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to load generation")
		return
	}

	c.JSON(http.StatusOK, h.processor.ProcessGeneration(c.Request.Context(), gen))
}

func (h *AdminHandler) enqueueSweep(c *gin.Context) {
	ctx := c.Request.Context()
	job := queue.Job{TaskType: queue.TaskTypeProcessPending}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		job.TraceID = logger.Ptr(sc.TraceID().String())
	}
	if err := h.jobs.Enqueue(ctx, job); err != nil {
		respondError(c, err, "failed to enqueue pending sweep")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true, "task_type": string(queue.TaskTypeProcessPending)})
}

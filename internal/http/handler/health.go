package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"flashcards.app/generator/common/llm"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthReporter interface {
	Snapshot() llm.HealthSnapshot
}

type HealthHandler struct {
	db  Pinger
	llm HealthReporter
}

func NewHealthHandler(db Pinger, llmHealth HealthReporter) *HealthHandler {
	return &HealthHandler{db: db, llm: llmHealth}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check: database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// LLM reports the completion provider tracker. It always answers 200; the
// state field tells callers whether background work is backing off.
func (h *HealthHandler) LLM(c *gin.Context) {
	if h.llm == nil {
		c.JSON(http.StatusOK, llm.HealthSnapshot{State: llm.HealthStateClosed})
		return
	}
	c.JSON(http.StatusOK, h.llm.Snapshot())
}

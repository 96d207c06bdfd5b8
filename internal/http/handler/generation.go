package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flashcards.app/generator/internal/http/dto"
	"flashcards.app/generator/internal/service"
)

type GenerationHandler struct {
	genService service.GenerationService
}

func NewGenerationHandler(genService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{genService: genService}
}

// Create accepts source text and queues a generation. A repeat of an active
// request returns the existing generation with 200 instead of 202.
func (h *GenerationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gen, created, err := h.genService.Create(ctx, userID, service.CreateGenerationInput{
		SourceText:  req.SourceText,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		respondError(c, err, "failed to create generation")
		return
	}

	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToGenerationResponse(gen))
}

func (h *GenerationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	gens, err := h.genService.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "failed to list generations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListGenerationsResponse(gens))
}

func (h *GenerationHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	gen, err := h.genService.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "failed to get generation")
		return
	}
	c.JSON(http.StatusOK, dto.ToGenerationResponse(gen))
}

func (h *GenerationHandler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	gen, err := h.genService.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "failed to cancel generation")
		return
	}
	c.JSON(http.StatusOK, dto.ToGenerationResponse(gen))
}

func (h *GenerationHandler) ListCandidates(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	candidates, err := h.genService.ListCandidates(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "failed to list candidates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCandidatesResponse(candidates))
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"flashcards.app/generator/internal/http/dto"
	"flashcards.app/generator/internal/service"
)

type CandidateHandler struct {
	candidateService service.CandidateService
}

func NewCandidateHandler(candidateService service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

func (h *CandidateHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.EditCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidate, err := h.candidateService.Edit(ctx, id, userID, req.Front, req.Back)
	if err != nil {
		respondError(c, err, "failed to edit candidate")
		return
	}
	c.JSON(http.StatusOK, dto.ToCandidateResponse(candidate))
}

func (h *CandidateHandler) Accept(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	card, candidate, err := h.candidateService.Accept(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "failed to accept candidate")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAcceptCandidateResponse(card, candidate))
}

func (h *CandidateHandler) Reject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateService.Reject(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err, "failed to reject candidate")
		return
	}
	c.JSON(http.StatusOK, dto.ToCandidateResponse(candidate))
}

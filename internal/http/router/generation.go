package router

import (
	"github.com/gin-gonic/gin"

	"flashcards.app/generator/internal/http/handler"
)

func GenerationRouter(rg *gin.RouterGroup, h *handler.GenerationHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/cancel", h.Cancel)
	rg.GET("/:id/candidates", h.ListCandidates)
}

func CandidateRouter(rg *gin.RouterGroup, h *handler.CandidateHandler) {
	rg.PATCH("/:id", h.Edit)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/reject", h.Reject)
}

// AdminRouter mounts processing routes; the caller applies the admin key check.
func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler) {
	rg.POST("/process", h.ProcessPending)
	rg.POST("/:id/process", h.ProcessOne)
}

func HealthRouter(router *gin.Engine, h *handler.HealthHandler) {
	router.GET("/health", h.Health)
	router.GET("/health/llm", h.LLM)
}

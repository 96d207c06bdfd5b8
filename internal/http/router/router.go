package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flashcards.app/generator/internal/http/handler"
	"flashcards.app/generator/internal/http/middleware"
	"flashcards.app/generator/internal/service"
)

type RouterConfig struct {
	AdminAPIKey string
	// Gatherer backs /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
}

// Handlers that are not built from Services.
type Handlers struct {
	Health *handler.HealthHandler
	Admin  *handler.AdminHandler
}

func SetupRoutes(router *gin.Engine, services *service.Services, handlers Handlers, cfg RouterConfig) {
	HealthRouter(router, handlers.Health)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		user := v1.Group("")
		user.Use(middleware.RequireUser())

		genHandler := handler.NewGenerationHandler(services.Generations())
		GenerationRouter(user.Group("/generations"), genHandler)

		candidateHandler := handler.NewCandidateHandler(services.Candidates())
		CandidateRouter(user.Group("/candidates"), candidateHandler)

		if handlers.Admin != nil {
			admin := v1.Group("/admin")
			admin.Use(middleware.RequireAdminKey(cfg.AdminAPIKey))
			AdminRouter(admin.Group("/generations"), handlers.Admin)
		}
	}
}

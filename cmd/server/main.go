package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"flashcards.app/generator/common/id"
	"flashcards.app/generator/common/llm"
	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/common/metrics"
	"flashcards.app/generator/common/otel"
	"flashcards.app/generator/core/config"
	"flashcards.app/generator/core/db"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/http/handler"
	"flashcards.app/generator/internal/http/middleware"
	httprouter "flashcards.app/generator/internal/http/router"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/service"
	"flashcards.app/generator/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, string(config.ServiceTypeServer))
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "generator api starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to register metrics", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.Stream)

	producer := queue.NewRedisProducer(redisClient, cfg.Queue.Stream, slog.Default())

	health := llm.NewHealth(llm.HealthConfig{
		FailureThreshold: cfg.Health.FailureThreshold,
		Cooldown:         cfg.Health.Cooldown,
	})
	llmClient, err := llm.New(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
		AppURL:    cfg.LLM.AppURL,
		AppTitle:  cfg.LLM.AppTitle,
	}, health, llm.WithObserver(m))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Queries())

	services := service.NewServices(stores, service.NewTxRunner(database), producer, service.GenerationConfig{
		MinSourceLength: cfg.Generation.MinSourceLength,
		MaxSourceLength: cfg.Generation.MaxSourceLength,
		DefaultModel:    cfg.LLM.Model,
	})

	processor := generation.NewProcessor(
		stores.Generations(),
		stores.Tags(),
		generation.NewTxRunner(database),
		llmClient,
		m,
		generationConfig(cfg),
	)
	runner := generation.NewBatchRunner(stores.Generations(), processor, m, cfg.Generation.Concurrency)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, httprouter.Handlers{
		Health: handler.NewHealthHandler(database, health),
		Admin:  handler.NewAdminHandler(stores.Generations(), processor, runner, producer),
	}, m, registry)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Admin processing routes wait on the completion provider.
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := redisClient.Close(); err != nil {
		slog.ErrorContext(shutdownCtx, "redis close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, handlers httprouter.Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(m))

	if !cfg.AdminEnabled() {
		slog.Warn("ADMIN_API_KEY not set, admin routes will refuse requests")
	}

	httprouter.SetupRoutes(router, services, handlers, httprouter.RouterConfig{
		AdminAPIKey: cfg.AdminAPIKey,
		Gatherer:    gatherer,
	})

	return router
}

func generationConfig(cfg config.Config) generation.Config {
	return generation.Config{
		DefaultTemperature: llm.Temp(cfg.Generation.DefaultTemperature),
		MaxTokens:          cfg.LLM.MaxTokens,
		RateLimitBackoff:   cfg.Generation.RateLimitBackoff,
		MaxRetryAfter:      cfg.Generation.MaxRetryAfter,
		Concurrency:        cfg.Generation.Concurrency,
	}
}

const banner = `
  __ _           _                   _
 / _| | __ _ ___| |__   ___ __ _ _ __| |___
| |_| |/ _' / __| '_ \ / __/ _' | '__| / __|
|  _| | (_| \__ \ | | | (_| (_| | |  | \__ \
|_| |_|\__,_|___/_| |_|\___\__,_|_|  |_|___/   api
`

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"flashcards.app/generator/common/id"
	"flashcards.app/generator/common/llm"
	"flashcards.app/generator/common/logger"
	"flashcards.app/generator/common/metrics"
	"flashcards.app/generator/common/otel"
	"flashcards.app/generator/core/config"
	"flashcards.app/generator/core/db"
	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/store"
	"flashcards.app/generator/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel, string(config.ServiceTypeWorker))
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "generator worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Queue.Group,
		"consumer_name", cfg.Queue.Consumer)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
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
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.Stream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Queue.Stream,
		Group:        cfg.Queue.Group,
		Consumer:     cfg.Queue.Consumer,
		DLQStream:    cfg.Queue.DLQStream,
		BatchSize:    int64(cfg.Generation.Concurrency),
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

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
	generations := stores.Generations()

	processor := generation.NewProcessor(
		generations,
		stores.Tags(),
		generation.NewTxRunner(database),
		llmClient,
		m,
		generation.Config{
			DefaultTemperature: llm.Temp(cfg.Generation.DefaultTemperature),
			MaxTokens:          cfg.LLM.MaxTokens,
			RateLimitBackoff:   cfg.Generation.RateLimitBackoff,
			MaxRetryAfter:      cfg.Generation.MaxRetryAfter,
			Concurrency:        cfg.Generation.Concurrency,
		},
	)
	runner := generation.NewBatchRunner(generations, processor, m, cfg.Generation.Concurrency)

	w := worker.New(consumer, generations, processor, runner, worker.Config{
		MaxAttempts: cfg.Worker.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:      cfg.Queue.Stream,
		Group:       cfg.Queue.Group,
		Consumer:    cfg.Queue.Consumer + "-reclaimer",
		MinIdle:     cfg.Worker.ReclaimMinIdle,
		Interval:    cfg.Worker.ReclaimInterval,
		BatchSize:   10,
		MaxAttempts: cfg.Worker.MaxAttempts,
	}, consumer, w.ProcessMessage)

	var sweeper *worker.Sweeper
	if cfg.Worker.SweepInterval > 0 {
		sweeper = worker.NewSweeper(generations, runner, health, worker.SweeperConfig{
			Interval:      cfg.Worker.SweepInterval,
			StaleRunAfter: cfg.Worker.StaleRunAfter,
		})
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.InfoContext(ctx, "metrics server starting", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go reclaimer.Run(ctx)
	if sweeper != nil {
		go sweeper.Run(ctx)
	}

	slog.InfoContext(ctx, "worker initialized and running",
		"sweep_interval", cfg.Worker.SweepInterval,
		"concurrency", cfg.Generation.Concurrency)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Periodic loops first; the worker may be mid-generation.
	loops := []worker.Stopper{reclaimer}
	if sweeper != nil {
		loops = append(loops, sweeper)
	}
	loops = append(loops, w)

	if err := worker.Shutdown(shutdownCtx, loops...); err != nil {
		slog.WarnContext(ctx, "shutdown timeout exceeded, abandoning in-flight work", "error", err)
	} else if err := <-errCh; err != nil {
		slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
	}

	flushCtx, flushCancel := context.WithTimeout(ctx, 5*time.Second)
	defer flushCancel()

	if err := metricsServer.Shutdown(flushCtx); err != nil {
		slog.ErrorContext(flushCtx, "metrics server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(flushCtx); err != nil {
			slog.ErrorContext(flushCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
  __ _           _                   _
 / _| | __ _ ___| |__   ___ __ _ _ __| |___
| |_| |/ _' / __| '_ \ / __/ _' | '__| / __|
|  _| | (_| \__ \ | | | (_| (_| | |  | \__ \
|_| |_|\__,_|___/_| |_|\___\__,_|_|  |_|___/   worker
`

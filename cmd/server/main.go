package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/flagpost/flagpost/internal/adapter/api"
	"github.com/flagpost/flagpost/internal/adapter/api/middleware"
	"github.com/flagpost/flagpost/internal/adapter/metrics"
	"github.com/flagpost/flagpost/internal/adapter/redact"
	"github.com/flagpost/flagpost/internal/adapter/repository/memory"
	"github.com/flagpost/flagpost/internal/adapter/repository/postgres"
	redisrepo "github.com/flagpost/flagpost/internal/adapter/repository/redis"
	"github.com/flagpost/flagpost/internal/admission"
	"github.com/flagpost/flagpost/internal/domain"
	"github.com/flagpost/flagpost/internal/pkg/config"
	"github.com/flagpost/flagpost/internal/pkg/logger"
	"github.com/flagpost/flagpost/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewServiceMetrics()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")

	// --- Admission Counter Store ---
	// Redis is optional. Without it, counters live in process memory and the
	// fixed windows are per instance rather than fleet wide.
	var counterStore domain.CounterStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, admission checks will fail open until it recovers", "error", err)
		}
		counterStore = redisrepo.NewCounterStore(redisClient, logger)
		logger.Info("using redis counter store", "addr", cfg.RedisAddr)
	} else {
		counterStore = memory.NewCounterStore()
		logger.Info("using in-memory counter store")
	}

	admissionCtrl := admission.NewController(counterStore, cfg.RateLimitEnabled, logger)

	// --- Repositories ---
	flagRepo := postgres.NewFlagRepository(db, logger)
	eventRepo := postgres.NewEventRepository(db, logger)

	// --- Use Cases ---
	redactor := redact.NewRedactor(strings.Split(cfg.RedactionFields, ","), logger)

	evaluateUseCase := usecase.NewEvaluateUseCase(
		flagRepo, admissionCtrl, logger, m,
		cfg.DefaultRolloutPercent, cfg.RateLimitRequests, cfg.RateLimitWindowSeconds,
	)
	flagAdminUseCase := usecase.NewFlagAdminUseCase(
		flagRepo, admissionCtrl, logger, m,
		cfg.RateLimitRequests, cfg.RateLimitWindowSeconds,
	)
	ingestUseCase := usecase.NewIngestEventsUseCase(eventRepo, redactor, logger, m)

	// --- HTTP Server ---
	router := api.NewRouter(cfg, logger, evaluateUseCase, flagAdminUseCase, ingestUseCase)
	throttle := middleware.Throttle(rate.NewLimiter(rate.Limit(cfg.GlobalRatePerSecond), int(cfg.GlobalRatePerSecond)))

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(logger)(throttle(router)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server shut down gracefully")
}

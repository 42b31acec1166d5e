package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flagpost/flagpost/internal/adapter/api/handler"
	"github.com/flagpost/flagpost/internal/adapter/api/middleware"
	"github.com/flagpost/flagpost/internal/pkg/config"
	"github.com/flagpost/flagpost/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the flag service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	evaluateUseCase *usecase.EvaluateUseCase,
	flagAdminUseCase *usecase.FlagAdminUseCase,
	ingestUseCase *usecase.IngestEventsUseCase,
) http.Handler {
	mux := http.NewServeMux()

	// Handlers
	evaluateHandler := handler.NewEvaluateHandler(evaluateUseCase, logger, cfg.MaxBodyBytes)
	flagHandler := handler.NewFlagHandler(flagAdminUseCase, logger)
	eventHandler := handler.NewEventHandler(ingestUseCase, logger, cfg.MaxBodyBytes)

	// Middleware
	authMiddleware := middleware.Auth(cfg.APIToken, logger)

	// Routes
	mux.Handle("POST /evaluate", authMiddleware(http.HandlerFunc(evaluateHandler.Evaluate)))
	mux.Handle("POST /flags", authMiddleware(http.HandlerFunc(flagHandler.Create)))
	mux.Handle("GET /flags", authMiddleware(http.HandlerFunc(flagHandler.List)))
	mux.Handle("GET /flags/{key}", authMiddleware(http.HandlerFunc(flagHandler.Get)))
	mux.Handle("PUT /flags/{key}", authMiddleware(http.HandlerFunc(flagHandler.Update)))
	mux.Handle("POST /events", authMiddleware(http.HandlerFunc(eventHandler.Ingest)))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

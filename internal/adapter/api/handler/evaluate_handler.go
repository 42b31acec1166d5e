package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flagpost/flagpost/internal/adapter/api/middleware"
	"github.com/flagpost/flagpost/internal/usecase"
)

// Evaluator is the evaluation surface the handler depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, in usecase.EvaluateInput) (usecase.EvaluateResult, error)
}

// EvaluateHandler handles HTTP requests for flag evaluation, the service's
// primary endpoint.
type EvaluateHandler struct {
	useCase      Evaluator
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(uc Evaluator, logger *slog.Logger, maxBodyBytes int64) *EvaluateHandler {
	return &EvaluateHandler{useCase: uc, logger: logger, maxBodyBytes: maxBodyBytes}
}

// Evaluate handles POST /evaluate.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload struct {
		FlagKey string `json:"flag_key"`
		User    *struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, h.logger, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.FlagKey == "" {
		respondValidation(w, h.logger, map[string]string{"flag_key": "is required"})
		return
	}

	userID := ""
	if payload.User != nil {
		userID = payload.User.ID
	}

	res, err := h.useCase.Evaluate(r.Context(), usecase.EvaluateInput{
		FlagKey: payload.FlagKey,
		UserID:  userID,
		Caller:  middleware.Caller(r),
	})
	if err != nil {
		h.logger.Error("evaluation failed", "error", err, "key", payload.FlagKey)
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeRateLimitHeaders(w, res.Admission)

	switch res.Outcome {
	case usecase.OutcomeRateLimited:
		respondError(w, h.logger, http.StatusTooManyRequests, "rate limit exceeded")
	case usecase.OutcomeNotFound:
		respondError(w, h.logger, http.StatusNotFound, "flag not found")
	default:
		if res.Fingerprint != "" {
			w.Header().Set("ETag", `"`+res.Fingerprint+`"`)
			w.Header().Set("Cache-Control", "no-cache")
		}
		respondWithJSON(w, h.logger, http.StatusOK, res.Decision)
	}
}

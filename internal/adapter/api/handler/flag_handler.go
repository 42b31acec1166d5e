package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/flagpost/flagpost/internal/adapter/api/middleware"
	"github.com/flagpost/flagpost/internal/admission"
	"github.com/flagpost/flagpost/internal/domain"
	"github.com/flagpost/flagpost/internal/usecase"
)

const maxKeyLength = 128

// FlagAdmin is the flag management surface the handler depends on.
type FlagAdmin interface {
	Create(ctx context.Context, caller string, in usecase.CreateFlagInput) (domain.Flag, admission.Result, error)
	Patch(ctx context.Context, caller, key string, patch domain.FlagPatch) (domain.Flag, admission.Result, error)
	List(ctx context.Context, limit int) ([]domain.Flag, error)
	Get(ctx context.Context, key string) (domain.Flag, string, error)
	ObserveNotModified()
}

// FlagHandler handles HTTP requests for flag management.
type FlagHandler struct {
	useCase FlagAdmin
	logger  *slog.Logger
}

// NewFlagHandler creates a new FlagHandler.
func NewFlagHandler(uc FlagAdmin, logger *slog.Logger) *FlagHandler {
	return &FlagHandler{useCase: uc, logger: logger}
}

// Create handles POST /flags.
func (h *FlagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key         string `json:"key"`
		Description string `json:"description"`
		Enabled     bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if fields := validateKey(payload.Key); fields != nil {
		respondValidation(w, h.logger, fields)
		return
	}

	flag, adm, err := h.useCase.Create(r.Context(), middleware.Caller(r), usecase.CreateFlagInput{
		Key:         payload.Key,
		Description: payload.Description,
		Enabled:     payload.Enabled,
	})
	writeRateLimitHeaders(w, adm)

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, h.logger, http.StatusTooManyRequests, "rate limit exceeded")
	case errors.Is(err, domain.ErrConflict):
		respondError(w, h.logger, http.StatusConflict, "flag key already exists")
	case err != nil:
		h.logger.Error("failed to create flag", "error", err, "key", payload.Key)
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
	default:
		w.Header().Set("Location", "/flags/"+flag.Key)
		respondWithJSON(w, h.logger, http.StatusCreated, flag)
	}
}

// List handles GET /flags.
func (h *FlagHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondValidation(w, h.logger, map[string]string{"limit": "must be an integer"})
			return
		}
		limit = parsed
	}

	flags, err := h.useCase.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list flags", "error", err)
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, flags)
}

// Get handles GET /flags/{key}. A matching If-None-Match fingerprint is
// answered 304 without re-serializing the body.
func (h *FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	flag, fingerprint, err := h.useCase.Get(r.Context(), key)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, h.logger, http.StatusNotFound, "flag not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get flag", "error", err, "key", key)
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	etag := `"` + fingerprint + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		h.useCase.ObserveNotModified()
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, flag)
}

// Update handles PUT /flags/{key}.
func (h *FlagHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var payload struct {
		Description *string `json:"description"`
		Enabled     *bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := domain.FlagPatch{Description: payload.Description, Enabled: payload.Enabled}
	if patch.IsEmpty() {
		respondValidation(w, h.logger, map[string]string{"body": "at least one of description, enabled is required"})
		return
	}

	flag, adm, err := h.useCase.Patch(r.Context(), middleware.Caller(r), key, patch)
	writeRateLimitHeaders(w, adm)

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, h.logger, http.StatusTooManyRequests, "rate limit exceeded")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, h.logger, http.StatusNotFound, "flag not found")
	case err != nil:
		h.logger.Error("failed to patch flag", "error", err, "key", key)
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
	default:
		respondWithJSON(w, h.logger, http.StatusOK, flag)
	}
}

func validateKey(key string) map[string]string {
	if key == "" {
		return map[string]string{"key": "is required"}
	}
	if len(key) > maxKeyLength {
		return map[string]string{"key": "must be at most 128 characters"}
	}
	return nil
}

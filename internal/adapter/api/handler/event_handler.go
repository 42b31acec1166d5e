package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/flagpost/flagpost/internal/adapter/api/middleware"
	"github.com/flagpost/flagpost/internal/domain"
	"github.com/flagpost/flagpost/internal/usecase"
)

// EventIngestor is the ingestion surface the handler depends on.
type EventIngestor interface {
	Ingest(ctx context.Context, caller string, events []domain.Event) error
}

// EventHandler handles HTTP requests for audit event ingestion.
type EventHandler struct {
	useCase      EventIngestor
	logger       *slog.Logger
	maxBodyBytes int64
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(uc EventIngestor, logger *slog.Logger, maxBodyBytes int64) *EventHandler {
	return &EventHandler{useCase: uc, logger: logger, maxBodyBytes: maxBodyBytes}
}

// Ingest handles POST /events. The batch is validated here, then handed to
// the use case on a context detached from the request: once accepted, a
// caller disconnect must not abort the write.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload struct {
		Events []struct {
			FlagKey  string          `json:"flag_key"`
			Decision bool            `json:"decision"`
			UserID   string          `json:"user_id"`
			TS       time.Time       `json:"ts"`
			Metadata json.RawMessage `json:"metadata"`
		} `json:"events"`
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

	if len(payload.Events) == 0 {
		respondValidation(w, h.logger, map[string]string{"events": "must contain at least 1 item"})
		return
	}
	if len(payload.Events) > usecase.MaxEventBatchSize {
		respondValidation(w, h.logger, map[string]string{"events": fmt.Sprintf("must contain at most %d items", usecase.MaxEventBatchSize)})
		return
	}

	events := make([]domain.Event, len(payload.Events))
	for i, item := range payload.Events {
		if item.FlagKey == "" {
			respondValidation(w, h.logger, map[string]string{fmt.Sprintf("events[%d].flag_key", i): "is required"})
			return
		}
		events[i] = domain.Event{
			FlagKey:  item.FlagKey,
			Decision: item.Decision,
			UserID:   item.UserID,
			TS:       item.TS,
			Metadata: item.Metadata,
		}
	}

	caller := middleware.Caller(r)
	bg := context.WithoutCancel(r.Context())
	go func() {
		if err := h.useCase.Ingest(bg, caller, events); err != nil {
			h.logger.Error("failed to ingest event batch", "error", err, "count", len(events))
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

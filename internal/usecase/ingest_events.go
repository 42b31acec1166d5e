package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flagpost/flagpost/internal/adapter/metrics"
	"github.com/flagpost/flagpost/internal/adapter/redact"
	"github.com/flagpost/flagpost/internal/domain"
)

// MaxEventBatchSize caps the number of events accepted per ingestion call.
const MaxEventBatchSize = 100

// IngestEventsUseCase stamps, redacts and appends client-reported decision
// events. The transport detaches the call from the request context, so a
// disconnecting caller does not abort a write already underway.
type IngestEventsUseCase struct {
	events   domain.EventRepository
	redactor *redact.Redactor
	logger   *slog.Logger
	metrics  *metrics.ServiceMetrics
}

// NewIngestEventsUseCase creates a new IngestEventsUseCase.
func NewIngestEventsUseCase(events domain.EventRepository, redactor *redact.Redactor, logger *slog.Logger, m *metrics.ServiceMetrics) *IngestEventsUseCase {
	return &IngestEventsUseCase{
		events:   events,
		redactor: redactor,
		logger:   logger,
		metrics:  m,
	}
}

// Ingest enriches a batch with server-assigned IDs, timestamps and the
// authenticated caller identity, redacts metadata, and appends it.
func (uc *IngestEventsUseCase) Ingest(ctx context.Context, caller string, events []domain.Event) error {
	now := time.Now().UTC()
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].Caller = caller
		if events[i].TS.IsZero() {
			events[i].TS = now
		}
		if err := uc.redactor.Redact(&events[i]); err != nil {
			// Unparseable metadata is dropped rather than stored unredacted.
			uc.logger.Warn("dropping unredactable event metadata", "error", err, "event_id", events[i].ID)
			events[i].Metadata = nil
		}
	}

	if err := uc.events.AppendBatch(ctx, events); err != nil {
		uc.logger.Error("failed to append event batch", "error", err, "count", len(events))
		return err
	}

	if uc.metrics != nil {
		uc.metrics.EventsIngested.Add(float64(len(events)))
	}
	return nil
}

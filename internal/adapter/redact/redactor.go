// Package redact strips configured fields from event metadata before it is
// persisted. Audit records live forever, so caller-supplied metadata must
// not carry credentials or personal identifiers into the events table.
package redact

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/flagpost/flagpost/internal/domain"
)

const Placeholder = "[REDACTED]"

// Redactor replaces the values of configured metadata fields with a
// placeholder.
type Redactor struct {
	fields map[string]struct{}
	logger *slog.Logger
}

// NewRedactor creates a Redactor for the given field names. Blank entries
// are ignored so a raw comma-separated config value can be passed through.
func NewRedactor(fields []string, logger *slog.Logger) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		fieldSet[field] = struct{}{}
	}
	return &Redactor{
		fields: fieldSet,
		logger: logger,
	}
}

// Redact modifies the event in place, replacing configured metadata fields
// with the placeholder. It returns an error if the metadata is not a JSON
// object; the caller decides whether to store the event without it.
func (r *Redactor) Redact(event *domain.Event) error {
	if len(r.fields) == 0 || len(event.Metadata) == 0 {
		return nil
	}

	var metadata map[string]any
	if err := json.Unmarshal(event.Metadata, &metadata); err != nil {
		r.logger.Warn("failed to unmarshal event metadata for redaction", "error", err, "event_id", event.ID)
		return err
	}

	redacted := false
	for field := range r.fields {
		if _, ok := metadata[field]; ok {
			metadata[field] = Placeholder
			redacted = true
		}
	}

	if redacted {
		modified, err := json.Marshal(metadata)
		if err != nil {
			r.logger.Error("failed to marshal redacted event metadata", "error", err, "event_id", event.ID)
			return err
		}
		event.Metadata = modified
	}
	return nil
}

package redact

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/flagpost/flagpost/internal/domain"
)

func TestRedactor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := NewRedactor([]string{"email", "ssn"}, logger)

	tests := []struct {
		name             string
		inputMetadata    string
		expectedMetadata string
		expectErr        bool
	}{
		{
			name:             "Redact single field",
			inputMetadata:    `{"email": "test@example.com", "plan": "pro"}`,
			expectedMetadata: `{"email":"[REDACTED]","plan":"pro"}`,
		},
		{
			name:             "Redact multiple fields",
			inputMetadata:    `{"email": "test@example.com", "ssn": "000-00-0000"}`,
			expectedMetadata: `{"email":"[REDACTED]","ssn":"[REDACTED]"}`,
		},
		{
			name:             "No fields to redact",
			inputMetadata:    `{"plan": "pro", "source": "sdk"}`,
			expectedMetadata: `{"plan":"pro","source":"sdk"}`,
		},
		{
			name:             "Empty metadata object",
			inputMetadata:    `{}`,
			expectedMetadata: `{}`,
		},
		{
			name:          "Invalid JSON metadata",
			inputMetadata: `{"email": "test@example.com"`,
			expectErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &domain.Event{
				ID:       "evt-1",
				Metadata: json.RawMessage(tt.inputMetadata),
			}

			err := redactor.Redact(event)
			if (err != nil) != tt.expectErr {
				t.Fatalf("Redact() error = %v, wantErr %v", err, tt.expectErr)
			}
			if err != nil {
				return
			}

			// Compare as maps to avoid key ordering issues.
			var expectedMap, actualMap map[string]any
			if err := json.Unmarshal([]byte(tt.expectedMetadata), &expectedMap); err != nil {
				t.Fatalf("failed to unmarshal expected metadata: %v", err)
			}
			if err := json.Unmarshal(event.Metadata, &actualMap); err != nil {
				t.Fatalf("failed to unmarshal actual metadata: %v", err)
			}

			if len(expectedMap) != len(actualMap) {
				t.Errorf("metadata map length mismatch: got %d, want %d", len(actualMap), len(expectedMap))
			}
			for k, v := range expectedMap {
				if actualMap[k] != v {
					t.Errorf("metadata mismatch for key %s: got %v, want %v", k, actualMap[k], v)
				}
			}
		})
	}
}

func TestRedactorNoConfiguredFields(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := NewRedactor([]string{"", "  "}, logger)

	event := &domain.Event{Metadata: json.RawMessage(`{"email": "test@example.com"}`)}
	if err := redactor.Redact(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(event.Metadata) != `{"email": "test@example.com"}` {
		t.Error("metadata must be left untouched when no fields are configured")
	}
}

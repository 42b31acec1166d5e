package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/flagpost/flagpost/internal/adapter/redact"
	"github.com/flagpost/flagpost/internal/domain"
	"github.com/flagpost/flagpost/internal/domain/mocks"
)

func TestIngestStampsEvents(t *testing.T) {
	repo := &mocks.MockEventRepository{}
	redactor := redact.NewRedactor([]string{"email"}, testLogger())
	uc := NewIngestEventsUseCase(repo, redactor, testLogger(), nil)

	events := []domain.Event{
		{FlagKey: "welcome_banner", Decision: true, UserID: "user-123"},
		{FlagKey: "dark_mode", Decision: false},
	}
	if err := uc.Ingest(context.Background(), "token-a", events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.Events()
	if len(stored) != 2 {
		t.Fatalf("stored %d events, want 2", len(stored))
	}
	for i, event := range stored {
		if event.ID == "" {
			t.Errorf("event %d: expected server-assigned ID", i)
		}
		if event.TS.IsZero() {
			t.Errorf("event %d: expected server-assigned timestamp", i)
		}
		if event.Caller != "token-a" {
			t.Errorf("event %d: caller = %q, want %q", i, event.Caller, "token-a")
		}
	}
	if stored[0].ID == stored[1].ID {
		t.Error("events must get distinct IDs")
	}
}

func TestIngestRedactsMetadata(t *testing.T) {
	repo := &mocks.MockEventRepository{}
	redactor := redact.NewRedactor([]string{"email"}, testLogger())
	uc := NewIngestEventsUseCase(repo, redactor, testLogger(), nil)

	events := []domain.Event{{
		FlagKey:  "welcome_banner",
		Decision: true,
		Metadata: json.RawMessage(`{"email": "test@example.com", "plan": "pro"}`),
	}}
	if err := uc.Ingest(context.Background(), "token-a", events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(repo.Events()[0].Metadata, &metadata); err != nil {
		t.Fatalf("failed to unmarshal stored metadata: %v", err)
	}
	if metadata["email"] != redact.Placeholder {
		t.Errorf("email = %v, want placeholder", metadata["email"])
	}
	if metadata["plan"] != "pro" {
		t.Errorf("plan = %v, want untouched", metadata["plan"])
	}
}

func TestIngestDropsUnredactableMetadata(t *testing.T) {
	repo := &mocks.MockEventRepository{}
	redactor := redact.NewRedactor([]string{"email"}, testLogger())
	uc := NewIngestEventsUseCase(repo, redactor, testLogger(), nil)

	events := []domain.Event{{
		FlagKey:  "welcome_banner",
		Decision: true,
		Metadata: json.RawMessage(`{"email": "broken`),
	}}
	if err := uc.Ingest(context.Background(), "token-a", events); err != nil {
		t.Fatalf("ingest must not fail on bad metadata: %v", err)
	}
	if repo.Events()[0].Metadata != nil {
		t.Error("unredactable metadata must be dropped, not stored raw")
	}
}

func TestIngestRepositoryError(t *testing.T) {
	repo := &mocks.MockEventRepository{AppendErr: errors.New("disk full")}
	redactor := redact.NewRedactor(nil, testLogger())
	uc := NewIngestEventsUseCase(repo, redactor, testLogger(), nil)

	err := uc.Ingest(context.Background(), "token-a", []domain.Event{{FlagKey: "welcome_banner"}})
	if err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

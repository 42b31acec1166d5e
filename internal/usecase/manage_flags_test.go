package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/flagpost/flagpost/internal/admission"
	"github.com/flagpost/flagpost/internal/domain"
	"github.com/flagpost/flagpost/internal/domain/mocks"
)

func newFlagAdminUseCase(flags domain.FlagRepository, store domain.CounterStore, limit int) *FlagAdminUseCase {
	ctrl := admission.NewController(store, true, testLogger())
	return NewFlagAdminUseCase(flags, ctrl, testLogger(), nil, limit, 60)
}

func TestCreatePatchGetLifecycle(t *testing.T) {
	flags := mocks.NewMockFlagRepository()
	uc := newFlagAdminUseCase(flags, mocks.NewMockCounterStore(), 100)

	created, _, err := uc.Create(context.Background(), "admin", CreateFlagInput{Key: "welcome_banner", Description: "greeting"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("version after create = %d, want 1", created.Version)
	}
	if created.Enabled {
		t.Error("enabled should default to false")
	}

	enabled := true
	patched, _, err := uc.Patch(context.Background(), "admin", "welcome_banner", domain.FlagPatch{Enabled: &enabled})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if patched.Version != 2 {
		t.Errorf("version after patch = %d, want 2", patched.Version)
	}
	if !patched.Enabled {
		t.Error("patch should have enabled the flag")
	}
	if patched.Description != "greeting" {
		t.Errorf("description = %q, want unchanged %q", patched.Description, "greeting")
	}
	if patched.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("updated_at must be non-decreasing")
	}

	// A patch with no effective change still bumps the version.
	same, _, err := uc.Patch(context.Background(), "admin", "welcome_banner", domain.FlagPatch{Enabled: &enabled})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if same.Version != 3 {
		t.Errorf("version after no-op patch = %d, want 3", same.Version)
	}

	got, fingerprint, err := uc.Get(context.Background(), "welcome_banner")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Version != 3 {
		t.Errorf("get version = %d, want 3", got.Version)
	}
	if fingerprint == "" {
		t.Error("expected a fingerprint")
	}
}

func TestCreateConflictLeavesExistingRecordAlone(t *testing.T) {
	flags := mocks.NewMockFlagRepository()
	uc := newFlagAdminUseCase(flags, mocks.NewMockCounterStore(), 100)

	first, _, err := uc.Create(context.Background(), "admin", CreateFlagInput{Key: "welcome_banner"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, _, err = uc.Create(context.Background(), "admin", CreateFlagInput{Key: "welcome_banner", Enabled: true})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	got, _, err := uc.Get(context.Background(), "welcome_banner")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Version != first.Version {
		t.Errorf("conflict must not alter the existing record's version: got %d, want %d", got.Version, first.Version)
	}
	if got.Enabled {
		t.Error("conflict must not alter the existing record's state")
	}
}

func TestPatchUnknownKey(t *testing.T) {
	uc := newFlagAdminUseCase(mocks.NewMockFlagRepository(), mocks.NewMockCounterStore(), 100)

	enabled := true
	_, _, err := uc.Patch(context.Background(), "admin", "missing", domain.FlagPatch{Enabled: &enabled})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestWritesAreAdmissionGated(t *testing.T) {
	flags := mocks.NewMockFlagRepository()
	uc := newFlagAdminUseCase(flags, mocks.NewMockCounterStore(), 1)

	_, _, err := uc.Create(context.Background(), "admin", CreateFlagInput{Key: "one"})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, adm, err := uc.Create(context.Background(), "admin", CreateFlagInput{Key: "two"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if adm.RetryAfter != 60 {
		t.Errorf("retryAfter = %d, want 60", adm.RetryAfter)
	}
	if _, exists := flags.Flags["two"]; exists {
		t.Error("denied create must not reach the repository")
	}
}

func TestReadsAreNotAdmissionGated(t *testing.T) {
	flags := mocks.NewMockFlagRepository()
	store := mocks.NewMockCounterStore()
	uc := newFlagAdminUseCase(flags, store, 1)

	uc.Create(context.Background(), "admin", CreateFlagInput{Key: "one"})
	for i := 0; i < 5; i++ {
		if _, err := uc.List(context.Background(), 50); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if _, _, err := uc.Get(context.Background(), "one"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}
	if len(store.Counts) != 1 {
		t.Errorf("reads must not consume write budget, counter buckets = %d, want 1", len(store.Counts))
	}
}

package rollout

import (
	"fmt"
	"testing"

	"github.com/flagpost/flagpost/internal/domain"
)

func TestDecideIsDeterministic(t *testing.T) {
	flag := domain.Flag{Key: "welcome_banner", Enabled: true, Version: 3}

	first := Decide(flag, "user-123", 50)
	for i := 0; i < 100; i++ {
		got := Decide(flag, "user-123", 50)
		if got != first {
			t.Fatalf("decision changed on repeat call: got %+v, want %+v", got, first)
		}
	}

	// user-123 hashes to bucket 3, inside a 50% rollout.
	if !first.Enabled {
		t.Error("expected user-123 to be inside the 50% rollout")
	}
	if first.Reason != "rollout_50%" {
		t.Errorf("reason = %q, want %q", first.Reason, "rollout_50%")
	}
	if first.Version != 3 {
		t.Errorf("version = %d, want 3", first.Version)
	}
}

func TestDecideFullRolloutMatchesFlagState(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		flag := domain.Flag{Key: "dark_mode", Enabled: enabled, Version: 1}
		for i := 0; i < 50; i++ {
			userID := fmt.Sprintf("user-%d", i)
			got := Decide(flag, userID, 100)
			if got.Enabled != enabled {
				t.Fatalf("pct=100 userID=%s: enabled = %v, want %v", userID, got.Enabled, enabled)
			}
		}
	}
}

func TestDecideZeroRolloutIsAlwaysOff(t *testing.T) {
	flag := domain.Flag{Key: "dark_mode", Enabled: true, Version: 1}
	for i := 0; i < 50; i++ {
		got := Decide(flag, fmt.Sprintf("user-%d", i), 0)
		if got.Enabled {
			t.Fatalf("pct=0 userID=user-%d: expected disabled", i)
		}
	}
}

func TestDecideClampsPercentage(t *testing.T) {
	flag := domain.Flag{Key: "dark_mode", Enabled: true, Version: 1}

	low := Decide(flag, "alice", -5)
	if low.Enabled {
		t.Error("pct=-5 should behave like pct=0")
	}
	if low.Reason != "rollout_0%" {
		t.Errorf("reason = %q, want %q", low.Reason, "rollout_0%")
	}

	high := Decide(flag, "alice", 150)
	if !high.Enabled {
		t.Error("pct=150 should behave like pct=100")
	}
	if high.Reason != "rollout_100%" {
		t.Errorf("reason = %q, want %q", high.Reason, "rollout_100%")
	}
}

func TestDecideAnonymousUsersShareOneBucket(t *testing.T) {
	flag := domain.Flag{Key: "welcome_banner", Enabled: true, Version: 1}

	missing := Decide(flag, "", 50)
	explicit := Decide(flag, AnonUserID, 50)
	if missing != explicit {
		t.Errorf("empty userID decision %+v differs from explicit anon %+v", missing, explicit)
	}
}

func TestDecideDisabledFlagNeverEnables(t *testing.T) {
	flag := domain.Flag{Key: "welcome_banner", Enabled: false, Version: 2}
	got := Decide(flag, "user-123", 100)
	if got.Enabled {
		t.Error("disabled flag must never evaluate to enabled")
	}
	if got.Reason != "rollout_100%" {
		t.Errorf("reason = %q, want %q regardless of outcome", got.Reason, "rollout_100%")
	}
}

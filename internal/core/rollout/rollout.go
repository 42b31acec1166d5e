// Package rollout turns a flag's state, a user identifier and a rollout
// percentage into a deterministic decision.
package rollout

import (
	"fmt"

	"github.com/flagpost/flagpost/internal/core/hashing"
	"github.com/flagpost/flagpost/internal/domain"
)

// AnonUserID is substituted when the caller supplies no user identifier.
// All anonymous users therefore share a single bucket.
const AnonUserID = "anon"

// Decide computes the rollout decision for a flag. The same
// (flag state, userID, pct) always yields the same decision: the bucket is
// a pure function of the identifier, with no time or randomness involved.
// A percentage outside [0,100] is a caller configuration error and is
// clamped to the nearest bound rather than rejected.
func Decide(flag domain.Flag, userID string, pct int) domain.Decision {
	if userID == "" {
		userID = AnonUserID
	}
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	bucket := hashing.Bucket(userID)

	return domain.Decision{
		Key:     flag.Key,
		Enabled: flag.Enabled && bucket < pct,
		Version: flag.Version,
		Reason:  fmt.Sprintf("rollout_%d%%", pct),
	}
}

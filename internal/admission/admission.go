// Package admission implements per-caller fixed-window request counting.
package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flagpost/flagpost/internal/domain"
)

// Result carries the outcome of one admission check together with the
// metadata every response must surface, allowed or not.
type Result struct {
	Allowed    bool
	Limit      int
	Count      int
	Remaining  int
	Reset      int64 // unix seconds at which the current window ends
	RetryAfter int   // seconds, set on denial only
}

// Controller decides whether a request is admitted based on how many
// requests the caller has already made in the current window. Counting is
// delegated to a CounterStore whose increment is a single atomic remote
// operation, so no in-process locking is needed here.
//
// The controller fails open: if the store is unreachable, misconfigured or
// rate limiting is switched off, the request proceeds uncounted. A counting
// outage must never turn into a full service denial.
type Controller struct {
	store   domain.CounterStore
	enabled bool
	logger  *slog.Logger
	now     func() time.Time
}

// NewController creates a Controller on top of the given counter store.
// A nil store is valid and selects the fail-open path unconditionally.
func NewController(store domain.CounterStore, enabled bool, logger *slog.Logger) *Controller {
	return &Controller{
		store:   store,
		enabled: enabled,
		logger:  logger.With("component", "admission"),
		now:     time.Now,
	}
}

// Check counts this request against the caller's bucket for the current
// window and reports whether it is admitted. The bucket key is
// scope:caller:windowIndex so counters from different windows never collide
// and expire on their own.
func (c *Controller) Check(ctx context.Context, scope, callerKey string, limit, windowSeconds int) Result {
	if windowSeconds <= 0 {
		windowSeconds = 1
	}

	now := c.now().Unix()
	if !c.enabled || c.store == nil {
		return c.failOpen(now, limit, windowSeconds)
	}

	windowIndex := now / int64(windowSeconds)
	reset := (windowIndex + 1) * int64(windowSeconds)
	bucketKey := fmt.Sprintf("%s:%s:%d", scope, callerKey, windowIndex)

	count, err := c.store.Increment(ctx, bucketKey, time.Unix(reset, 0))
	if err != nil {
		c.logger.Warn("counter store unavailable, admitting request uncounted", "error", err, "scope", scope)
		return c.failOpen(now, limit, windowSeconds)
	}

	res := Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Count:     int(count),
		Remaining: max(0, limit-int(count)),
		Reset:     reset,
	}
	if !res.Allowed {
		res.RetryAfter = windowSeconds
	}
	return res
}

func (c *Controller) failOpen(now int64, limit, windowSeconds int) Result {
	return Result{
		Allowed:   true,
		Limit:     limit,
		Count:     0,
		Remaining: max(0, limit),
		Reset:     now + int64(windowSeconds),
	}
}

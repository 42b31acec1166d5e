package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flagpost/flagpost/internal/admission"
	"github.com/flagpost/flagpost/internal/adapter/metrics"
	"github.com/flagpost/flagpost/internal/core/hashing"
	"github.com/flagpost/flagpost/internal/core/rollout"
	"github.com/flagpost/flagpost/internal/domain"
)

// Admission scopes. Evaluation traffic and administrative writes are
// counted in separate buckets.
const (
	ScopeEvaluate = "evaluate"
	ScopeMutate   = "mutate"
)

// Outcome enumerates the terminal states of an evaluation request.
// Authentication failures terminate in the middleware before any counter
// increment or flag read, so they never reach this layer.
type Outcome int

const (
	OutcomeEvaluated Outcome = iota
	OutcomeRateLimited
	OutcomeNotFound
)

// EvaluateInput is one evaluation request after authentication.
type EvaluateInput struct {
	FlagKey string
	UserID  string
	Caller  string
}

// EvaluateResult is the orchestrator's answer: a terminal outcome, the
// decision when evaluated, the admission metadata every response surfaces,
// and the flag record's fingerprint for conditional-read headers.
type EvaluateResult struct {
	Outcome     Outcome
	Decision    domain.Decision
	Admission   admission.Result
	Fingerprint string
}

// EvaluateUseCase composes the admission gate, the flag lookup and the
// rollout decision into the service's primary operation. It is stateless
// across calls; every request is an independent unit of work.
type EvaluateUseCase struct {
	flags         domain.FlagRepository
	admission     *admission.Controller
	logger        *slog.Logger
	metrics       *metrics.ServiceMetrics
	rolloutPct    int
	limit         int
	windowSeconds int
}

// NewEvaluateUseCase creates a new EvaluateUseCase.
func NewEvaluateUseCase(
	flags domain.FlagRepository,
	ctrl *admission.Controller,
	logger *slog.Logger,
	m *metrics.ServiceMetrics,
	rolloutPct, limit, windowSeconds int,
) *EvaluateUseCase {
	return &EvaluateUseCase{
		flags:         flags,
		admission:     ctrl,
		logger:        logger,
		metrics:       m,
		rolloutPct:    rolloutPct,
		limit:         limit,
		windowSeconds: windowSeconds,
	}
}

// Evaluate runs AdmissionCheck -> FlagLookup -> Decide. Only a relational
// store failure produces an error; every other path terminates in one of
// the result outcomes.
func (uc *EvaluateUseCase) Evaluate(ctx context.Context, in EvaluateInput) (EvaluateResult, error) {
	// 1. Admission gate
	adm := uc.admission.Check(ctx, ScopeEvaluate, in.Caller, uc.limit, uc.windowSeconds)
	uc.observeAdmission(adm)
	if !adm.Allowed {
		uc.observeOutcome("rate_limited")
		return EvaluateResult{Outcome: OutcomeRateLimited, Admission: adm}, nil
	}

	// 2. Flag lookup
	flag, err := uc.flags.GetByKey(ctx, in.FlagKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.observeOutcome("not_found")
			return EvaluateResult{Outcome: OutcomeNotFound, Admission: adm}, nil
		}
		uc.observeOutcome("error")
		return EvaluateResult{}, fmt.Errorf("failed to load flag: %w", err)
	}

	// 3. Decide (pure, cannot fail)
	decision := rollout.Decide(flag, in.UserID, uc.rolloutPct)

	uc.observeOutcome("evaluated")
	uc.logger.Info("flag evaluated",
		"key", decision.Key,
		"enabled", decision.Enabled,
		"version", decision.Version,
		"reason", decision.Reason,
		"caller", in.Caller,
	)

	return EvaluateResult{
		Outcome:     OutcomeEvaluated,
		Decision:    decision,
		Admission:   adm,
		Fingerprint: flagFingerprint(flag),
	}, nil
}

func (uc *EvaluateUseCase) observeAdmission(res admission.Result) {
	if uc.metrics == nil {
		return
	}
	result := "allowed"
	switch {
	case !res.Allowed:
		result = "denied"
	case res.Count == 0:
		// A real admit always has count >= 1; zero means the check was
		// skipped or degraded.
		result = "fail_open"
	}
	uc.metrics.AdmissionTotal.WithLabelValues(result).Inc()
}

func (uc *EvaluateUseCase) observeOutcome(outcome string) {
	if uc.metrics != nil {
		uc.metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
	}
}

// flagFingerprint computes the conditional-read fingerprint over the
// serialized flag record.
func flagFingerprint(flag domain.Flag) string {
	payload, err := json.Marshal(flag)
	if err != nil {
		return ""
	}
	return hashing.Fingerprint(payload)
}

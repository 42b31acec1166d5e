package usecase

import (
	"context"
	"log/slog"

	"github.com/flagpost/flagpost/internal/admission"
	"github.com/flagpost/flagpost/internal/adapter/metrics"
	"github.com/flagpost/flagpost/internal/domain"
)

// CreateFlagInput carries the fields of a flag creation request.
type CreateFlagInput struct {
	Key         string
	Description string
	Enabled     bool
}

// FlagAdminUseCase orchestrates flag management. Writes pass the admission
// controller under the mutate scope before touching the store; reads are
// not admission-gated.
type FlagAdminUseCase struct {
	flags         domain.FlagRepository
	admission     *admission.Controller
	logger        *slog.Logger
	metrics       *metrics.ServiceMetrics
	limit         int
	windowSeconds int
}

// NewFlagAdminUseCase creates a new FlagAdminUseCase.
func NewFlagAdminUseCase(
	flags domain.FlagRepository,
	ctrl *admission.Controller,
	logger *slog.Logger,
	m *metrics.ServiceMetrics,
	limit, windowSeconds int,
) *FlagAdminUseCase {
	return &FlagAdminUseCase{
		flags:         flags,
		admission:     ctrl,
		logger:        logger,
		metrics:       m,
		limit:         limit,
		windowSeconds: windowSeconds,
	}
}

// Create registers a new flag at version 1. Returns domain.ErrRateLimited
// when the caller's write budget is exhausted and domain.ErrConflict when
// the key is taken; the admission result is valid in either case.
func (uc *FlagAdminUseCase) Create(ctx context.Context, caller string, in CreateFlagInput) (domain.Flag, admission.Result, error) {
	adm := uc.admission.Check(ctx, ScopeMutate, caller, uc.limit, uc.windowSeconds)
	if !adm.Allowed {
		return domain.Flag{}, adm, domain.ErrRateLimited
	}

	flag, err := uc.flags.Create(ctx, in.Key, in.Description, in.Enabled)
	if err != nil {
		return domain.Flag{}, adm, err
	}

	uc.observeMutation("create")
	uc.logger.Info("flag created", "key", flag.Key, "enabled", flag.Enabled, "caller", caller)
	return flag, adm, nil
}

// Patch applies a partial update, bumping the version by exactly one.
func (uc *FlagAdminUseCase) Patch(ctx context.Context, caller, key string, patch domain.FlagPatch) (domain.Flag, admission.Result, error) {
	adm := uc.admission.Check(ctx, ScopeMutate, caller, uc.limit, uc.windowSeconds)
	if !adm.Allowed {
		return domain.Flag{}, adm, domain.ErrRateLimited
	}

	flag, err := uc.flags.Patch(ctx, key, patch)
	if err != nil {
		return domain.Flag{}, adm, err
	}

	uc.observeMutation("patch")
	uc.logger.Info("flag patched", "key", flag.Key, "version", flag.Version, "caller", caller)
	return flag, adm, nil
}

// List returns flags ordered by most recently updated first.
func (uc *FlagAdminUseCase) List(ctx context.Context, limit int) ([]domain.Flag, error) {
	return uc.flags.List(ctx, limit)
}

// Get returns one flag plus its content fingerprint, so the transport can
// answer a matching conditional read without re-serializing the body.
func (uc *FlagAdminUseCase) Get(ctx context.Context, key string) (domain.Flag, string, error) {
	flag, err := uc.flags.GetByKey(ctx, key)
	if err != nil {
		return domain.Flag{}, "", err
	}
	return flag, flagFingerprint(flag), nil
}

// ObserveNotModified records a conditional read answered without a body.
func (uc *FlagAdminUseCase) ObserveNotModified() {
	if uc.metrics != nil {
		uc.metrics.NotModifiedTotal.Inc()
	}
}

func (uc *FlagAdminUseCase) observeMutation(op string) {
	if uc.metrics != nil {
		uc.metrics.FlagMutationsTotal.WithLabelValues(op).Inc()
	}
}

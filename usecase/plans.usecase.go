package usecase

import (
	"context"

	"github.com/rupeex/go-rupeex-client/domain"
	"github.com/rupeex/go-rupeex-client/logger"
)

type PlanAPI interface {
	CreatePlan(ctx context.Context, req *domain.PlanRequest) (*domain.DCAPlan, error)
	UpdatePlanStatus(ctx context.Context, planID string, status domain.PlanStatus) error
	CancelPlan(ctx context.Context, planID string) error
}

// PlansUseCase is the view-consumer contract for recurring-plan management.
// Creating or cancelling a plan also moves reserved funds, so those paths
// refetch the balance store as well.
type PlansUseCase struct {
	api     PlanAPI
	plans   refetcher
	balance refetcher
}

func NewPlansUseCase(api PlanAPI, plans, balance refetcher) *PlansUseCase {
	return &PlansUseCase{
		api:     api,
		plans:   plans,
		balance: balance,
	}
}

func (uc *PlansUseCase) CreatePlan(ctx context.Context, req *domain.PlanRequest) (*domain.DCAPlan, error) {
	plan, err := uc.api.CreatePlan(ctx, req)
	if err != nil {
		return nil, err
	}
	uc.refetch(ctx, true)
	return plan, nil
}

func (uc *PlansUseCase) PausePlan(ctx context.Context, planID string) error {
	if err := uc.api.UpdatePlanStatus(ctx, planID, domain.PlanStatusPaused); err != nil {
		return err
	}
	uc.refetch(ctx, false)
	return nil
}

func (uc *PlansUseCase) ResumePlan(ctx context.Context, planID string) error {
	if err := uc.api.UpdatePlanStatus(ctx, planID, domain.PlanStatusActive); err != nil {
		return err
	}
	uc.refetch(ctx, false)
	return nil
}

func (uc *PlansUseCase) CancelPlan(ctx context.Context, planID string) error {
	if err := uc.api.CancelPlan(ctx, planID); err != nil {
		return err
	}
	uc.refetch(ctx, true)
	return nil
}

func (uc *PlansUseCase) refetch(ctx context.Context, includeBalance bool) {
	log := logger.GetLogger().WithComponent("plans")

	if err := uc.plans.Refetch(ctx); err != nil {
		log.WithError(err).Warn("plans refetch after mutation failed")
	}
	if includeBalance {
		if err := uc.balance.Refetch(ctx); err != nil {
			log.WithError(err).Warn("balance refetch after plan mutation failed")
		}
	}
}

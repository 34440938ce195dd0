package service

import (
	"context"
	"time"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/repository"
)

type planService struct {
	plans        repository.PlanRepo
	uow          db.UnitOfWork
	creatorGroup string
	observer     UseCaseObserver
}

// NewPlanService manages release plans. Creation is gated on membership
// in creatorGroup.
func NewPlanService(
	plans repository.PlanRepo,
	uow db.UnitOfWork,
	creatorGroup string,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		plans:        plans,
		uow:          uow,
		creatorGroup: creatorGroup,
		observer:     useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Create(ctx context.Context, actor string, plan *domain.Plan) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"acronym": plan.AppAcronym, "plan": plan.Name, "actor": actor},
		})
	}()

	if err = plan.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), repository.NewSQLiteUserRepo(tx))

		if err := checker.Authorize(ctx, actor, s.creatorGroup); err != nil {
			return err
		}
		if _, err := txApps.GetByAcronym(ctx, plan.AppAcronym); err != nil {
			return err
		}

		plan.CreatedAt = time.Now().UTC()
		return txPlans.Create(ctx, plan)
	})
}

func (s *planService) List(ctx context.Context, acronym string) ([]*domain.Plan, error) {
	return s.plans.ListByApp(ctx, acronym)
}

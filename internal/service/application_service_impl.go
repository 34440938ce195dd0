package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/repository"
)

type applicationService struct {
	apps         repository.ApplicationRepo
	uow          db.UnitOfWork
	creatorGroup string
	observer     UseCaseObserver
}

// NewApplicationService manages application metadata. Creation and
// editing are gated on membership in creatorGroup.
func NewApplicationService(
	apps repository.ApplicationRepo,
	uow db.UnitOfWork,
	creatorGroup string,
	observers ...UseCaseObserver,
) ApplicationService {
	return &applicationService{
		apps:         apps,
		uow:          uow,
		creatorGroup: creatorGroup,
		observer:     useCaseObserverOrNoop(observers),
	}
}

func (s *applicationService) Create(ctx context.Context, actor string, app *domain.Application) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-application",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"acronym": app.Acronym, "actor": actor},
		})
	}()

	if err = app.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txGroups := repository.NewSQLiteGroupRepo(tx)
		checker := access.NewChecker(txGroups, repository.NewSQLiteUserRepo(tx))

		if err := checker.Authorize(ctx, actor, s.creatorGroup); err != nil {
			return err
		}

		// The permit set must validate as a whole before any write.
		ok, err := txGroups.AllExist(ctx, app.Permits.Named())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: one or more permit groups do not exist", domain.ErrNotFound)
		}

		now := time.Now().UTC()
		app.CreatedAt = now
		app.UpdatedAt = now
		return txApps.Create(ctx, app)
	})
}

func (s *applicationService) Get(ctx context.Context, acronym string) (*domain.Application, error) {
	return s.apps.GetByAcronym(ctx, acronym)
}

func (s *applicationService) List(ctx context.Context) ([]*domain.Application, error) {
	return s.apps.List(ctx)
}

func (s *applicationService) Update(ctx context.Context, actor string, app *domain.Application) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "update-application",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"acronym": app.Acronym, "actor": actor},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txGroups := repository.NewSQLiteGroupRepo(tx)
		checker := access.NewChecker(txGroups, repository.NewSQLiteUserRepo(tx))

		if err := checker.Authorize(ctx, actor, s.creatorGroup); err != nil {
			return err
		}
		if _, err := txApps.GetByAcronym(ctx, app.Acronym); err != nil {
			return err
		}
		ok, err := txGroups.AllExist(ctx, app.Permits.Named())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: one or more permit groups do not exist", domain.ErrNotFound)
		}

		app.UpdatedAt = time.Now().UTC()
		return txApps.Update(ctx, app)
	})
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/notify"
	"github.com/alexanderramin/stagehand/internal/repository"
)

const (
	msgCreated      = "Created task."
	msgReleased     = "Released task."
	msgAcknowledged = "Acknowledged task."
	msgCompleted    = "Completed task."
	msgHalted       = "Halted task."
	msgApproved     = "Approved task."
	msgRejected     = "Rejected task."
)

type taskService struct {
	tasks      repository.TaskRepo
	apps       repository.ApplicationRepo
	checker    *access.Checker
	uow        db.UnitOfWork
	dispatcher *notify.Dispatcher
	observer   UseCaseObserver
}

// NewTaskService owns the task lifecycle: creation, the role-gated
// workflow transitions, plan assignment and the note log.
func NewTaskService(
	tasks repository.TaskRepo,
	apps repository.ApplicationRepo,
	checker *access.Checker,
	uow db.UnitOfWork,
	dispatcher *notify.Dispatcher,
	observers ...UseCaseObserver,
) TaskService {
	return &taskService{
		tasks:      tasks,
		apps:       apps,
		checker:    checker,
		uow:        uow,
		dispatcher: dispatcher,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) observe(ctx context.Context, name string, startedAt time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

func (s *taskService) Create(ctx context.Context, actor string, draft TaskDraft) (task *domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "create-task", startedAt, err, map[string]any{"acronym": draft.AppAcronym, "actor": actor})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), repository.NewSQLiteUserRepo(tx))

		app, err := txApps.GetByAcronym(ctx, draft.AppAcronym)
		if err != nil {
			return err
		}
		if err := checker.AuthorizeStage(ctx, app, actor, domain.StageCreate); err != nil {
			return err
		}
		if draft.Plan != "" {
			if _, err := txPlans.Get(ctx, draft.AppAcronym, draft.Plan); err != nil {
				return err
			}
		}

		// The increment and the insert share the transaction so ids stay
		// dense and collision-free under concurrent creation.
		n, err := txApps.NextTaskNumber(ctx, draft.AppAcronym)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		t := &domain.Task{
			ID:          domain.MintTaskID(draft.AppAcronym, n),
			AppAcronym:  draft.AppAcronym,
			Name:        draft.Name,
			Description: draft.Description,
			Notes:       domain.NoteLine(now, actor, msgCreated),
			Creator:     actor,
			CreateDate:  now,
			Plan:        draft.Plan,
			State:       domain.TaskOpen,
			Owner:       actor,
			UpdatedAt:   now,
		}
		if err := t.Validate(); err != nil {
			return err
		}
		if err := txTasks.Create(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// transitionHook runs after authorization and state validation, before
// the event's own note line is prepended. It may adjust the pending
// update (plan assignment) and the working note log.
type transitionHook func(ctx context.Context, tx db.DBTX, task *domain.Task, now time.Time, upd *repository.TransitionUpdate, notes *string) error

func (s *taskService) runTransition(ctx context.Context, actor, taskID string, event domain.TaskEvent, message string, hook transitionHook) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), repository.NewSQLiteUserRepo(tx))

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		app, err := txApps.GetByAcronym(ctx, task.AppAcronym)
		if err != nil {
			return err
		}
		if err := checker.AuthorizeStage(ctx, app, actor, event.AuthStage()); err != nil {
			return err
		}
		next, err := domain.NextState(task.State, event)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		notes := task.Notes
		upd := repository.TransitionUpdate{
			ID:        task.ID,
			FromState: task.State,
			ToState:   next,
			Owner:     actor,
			UpdatedAt: now,
		}
		if hook != nil {
			if err := hook(ctx, tx, task, now, &upd, &notes); err != nil {
				return err
			}
		}
		upd.Notes = domain.PrependNote(notes, now, actor, message)

		return txTasks.ApplyTransition(ctx, upd)
	})
}

func (s *taskService) Release(ctx context.Context, actor, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "release-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()
	return s.runTransition(ctx, actor, taskID, domain.EventRelease, msgReleased, nil)
}

func (s *taskService) Acknowledge(ctx context.Context, actor, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "acknowledge-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()
	return s.runTransition(ctx, actor, taskID, domain.EventAcknowledge, msgAcknowledged, nil)
}

func (s *taskService) Complete(ctx context.Context, actor, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "complete-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()

	var event notify.TaskCompleted
	err = s.runTransition(ctx, actor, taskID, domain.EventComplete, msgCompleted,
		func(ctx context.Context, tx db.DBTX, task *domain.Task, now time.Time, upd *repository.TransitionUpdate, notes *string) error {
			txApps := repository.NewSQLiteApplicationRepo(tx)
			txUsers := repository.NewSQLiteUserRepo(tx)

			app, err := txApps.GetByAcronym(ctx, task.AppAcronym)
			if err != nil {
				return err
			}
			var recipients []string
			if app.Permits.Done != "" {
				recipients, err = txUsers.EmailsForGroup(ctx, app.Permits.Done)
				if err != nil {
					return err
				}
			}
			event = notify.TaskCompleted{
				TaskID:     task.ID,
				TaskName:   task.Name,
				AppAcronym: task.AppAcronym,
				Owner:      actor,
				Recipients: recipients,
			}
			return nil
		})
	if err != nil {
		return err
	}

	// Post-commit, best effort: a failed notification never unwinds the
	// committed transition.
	s.dispatcher.Dispatch(ctx, event)
	return nil
}

func (s *taskService) Halt(ctx context.Context, actor, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "halt-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()
	return s.runTransition(ctx, actor, taskID, domain.EventHalt, msgHalted, nil)
}

func (s *taskService) Approve(ctx context.Context, actor, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "approve-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()
	return s.runTransition(ctx, actor, taskID, domain.EventApprove, msgApproved, nil)
}

func (s *taskService) Reject(ctx context.Context, actor, taskID, plan string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "reject-task", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()

	return s.runTransition(ctx, actor, taskID, domain.EventReject, msgRejected,
		func(ctx context.Context, tx db.DBTX, task *domain.Task, now time.Time, upd *repository.TransitionUpdate, notes *string) error {
			if plan != "" {
				txPlans := repository.NewSQLitePlanRepo(tx)
				if _, err := txPlans.Get(ctx, task.AppAcronym, plan); err != nil {
					return err
				}
			}
			// The supplied plan is written unconditionally. When it differs
			// from the current assignment, the plan change is narrated
			// ahead of the rejection so the rejection line reads newest.
			upd.SetPlan = true
			upd.Plan = plan
			if plan != task.Plan {
				*notes = domain.PrependNote(*notes, now, actor, domain.PlanChangeMessage(plan))
			}
			return nil
		})
}

func (s *taskService) ChangePlan(ctx context.Context, actor, taskID, plan string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "change-plan", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txPlans := repository.NewSQLitePlanRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), repository.NewSQLiteUserRepo(tx))

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		app, err := txApps.GetByAcronym(ctx, task.AppAcronym)
		if err != nil {
			return err
		}
		if err := checker.AuthorizeStage(ctx, app, actor, domain.StageOpen); err != nil {
			return err
		}
		if task.State != domain.TaskOpen {
			return fmt.Errorf("%w: plan can only change while the task is open", domain.ErrConflict)
		}
		if plan == task.Plan {
			return fmt.Errorf("%w: plan is unchanged", domain.ErrConflict)
		}
		if plan != "" {
			if _, err := txPlans.Get(ctx, task.AppAcronym, plan); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		return txTasks.ApplyTransition(ctx, repository.TransitionUpdate{
			ID:        task.ID,
			FromState: domain.TaskOpen,
			ToState:   domain.TaskOpen,
			Owner:     actor,
			Notes:     domain.PrependNote(task.Notes, now, actor, domain.PlanChangeMessage(plan)),
			SetPlan:   true,
			Plan:      plan,
			UpdatedAt: now,
		})
	})
}

func (s *taskService) AddNote(ctx context.Context, actor, taskID, text string) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "add-note", startedAt, err, map[string]any{"task": taskID, "actor": actor}) }()

	if text == "" {
		return fmt.Errorf("%w: note text is required", domain.ErrInvalidInput)
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txApps := repository.NewSQLiteApplicationRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), repository.NewSQLiteUserRepo(tx))

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		stage, ok := domain.StageForState(task.State)
		if !ok {
			return fmt.Errorf("%w: closed tasks accept no further notes", domain.ErrConflict)
		}
		app, err := txApps.GetByAcronym(ctx, task.AppAcronym)
		if err != nil {
			return err
		}
		// Notes are gated by the permit group of the task's current state.
		if err := checker.AuthorizeStage(ctx, app, actor, stage); err != nil {
			return err
		}

		now := time.Now().UTC()
		return txTasks.ApplyTransition(ctx, repository.TransitionUpdate{
			ID:        task.ID,
			FromState: task.State,
			ToState:   task.State,
			Owner:     actor,
			Notes:     domain.PrependNote(task.Notes, now, actor, text),
			UpdatedAt: now,
		})
	})
}

func (s *taskService) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, taskID)
}

func (s *taskService) ListByApp(ctx context.Context, acronym string) ([]*domain.Task, error) {
	return s.tasks.ListByApp(ctx, acronym)
}

func (s *taskService) Roles(ctx context.Context, acronym, username string) (map[domain.Stage]bool, error) {
	app, err := s.apps.GetByAcronym(ctx, acronym)
	if err != nil {
		return nil, err
	}
	return s.checker.Roles(ctx, app, username)
}

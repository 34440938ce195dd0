package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/repository"
)

type directoryService struct {
	groups     repository.GroupRepo
	users      repository.UserRepo
	checker    *access.Checker
	uow        db.UnitOfWork
	adminGroup string
	superAdmin string
	observer   UseCaseObserver
}

// NewDirectoryService administers the group catalog and user accounts.
// Every operation requires the actor to hold adminGroup. superAdmin names
// the protected account that keeps the directory administrable: it cannot
// be disabled and it cannot lose adminGroup.
func NewDirectoryService(
	groups repository.GroupRepo,
	users repository.UserRepo,
	checker *access.Checker,
	uow db.UnitOfWork,
	adminGroup string,
	superAdmin string,
	observers ...UseCaseObserver,
) DirectoryService {
	return &directoryService{
		groups:     groups,
		users:      users,
		checker:    checker,
		uow:        uow,
		adminGroup: adminGroup,
		superAdmin: superAdmin,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *directoryService) requireAdmin(ctx context.Context, actor string) error {
	return s.checker.Authorize(ctx, actor, s.adminGroup)
}

func (s *directoryService) CreateGroup(ctx context.Context, actor, name string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name: "create-group", StartedAt: startedAt, Duration: time.Since(startedAt),
			Success: err == nil, Err: err,
			Fields: map[string]any{"group": name, "actor": actor},
		})
	}()

	if err = domain.ValidateGroupName(name); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txGroups := repository.NewSQLiteGroupRepo(tx)
		checker := access.NewChecker(txGroups, repository.NewSQLiteUserRepo(tx))
		if err := checker.Authorize(ctx, actor, s.adminGroup); err != nil {
			return err
		}
		return txGroups.Create(ctx, name, time.Now().UTC())
	})
}

func (s *directoryService) ListGroups(ctx context.Context, actor string) ([]string, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.groups.List(ctx)
}

func (s *directoryService) MembersOf(ctx context.Context, actor, group string) ([]string, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	ok, err := s.groups.Exists(ctx, group)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: group %s", domain.ErrNotFound, group)
	}
	return s.groups.MembersOf(ctx, group)
}

func (s *directoryService) CreateUser(ctx context.Context, actor string, user *domain.User, groups []string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name: "create-user", StartedAt: startedAt, Duration: time.Since(startedAt),
			Success: err == nil, Err: err,
			Fields: map[string]any{"username": user.Username, "actor": actor},
		})
	}()

	if err = user.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txGroups := repository.NewSQLiteGroupRepo(tx)
		txUsers := repository.NewSQLiteUserRepo(tx)
		checker := access.NewChecker(txGroups, txUsers)
		if err := checker.Authorize(ctx, actor, s.adminGroup); err != nil {
			return err
		}
		ok, err := txGroups.AllExist(ctx, groups)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: one or more groups do not exist", domain.ErrNotFound)
		}

		user.Enabled = true
		user.CreatedAt = time.Now().UTC()
		if err := txUsers.Create(ctx, user); err != nil {
			return err
		}
		for _, g := range groups {
			if err := txGroups.AddMember(ctx, user.Username, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *directoryService) SetUserEnabled(ctx context.Context, actor, username string, enabled bool) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name: "set-user-enabled", StartedAt: startedAt, Duration: time.Since(startedAt),
			Success: err == nil, Err: err,
			Fields: map[string]any{"username": username, "enabled": enabled, "actor": actor},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUsers := repository.NewSQLiteUserRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), txUsers)
		if err := checker.Authorize(ctx, actor, s.adminGroup); err != nil {
			return err
		}
		if !enabled && username == s.superAdmin {
			return fmt.Errorf("%w: the super admin cannot be disabled", domain.ErrConflict)
		}
		return txUsers.SetEnabled(ctx, username, enabled)
	})
}

func (s *directoryService) SetUserEmail(ctx context.Context, actor, username, email string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name: "set-user-email", StartedAt: startedAt, Duration: time.Since(startedAt),
			Success: err == nil, Err: err,
			Fields: map[string]any{"username": username, "actor": actor},
		})
	}()

	if err = domain.ValidateEmail(email); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUsers := repository.NewSQLiteUserRepo(tx)
		checker := access.NewChecker(repository.NewSQLiteGroupRepo(tx), txUsers)
		if err := checker.Authorize(ctx, actor, s.adminGroup); err != nil {
			return err
		}
		return txUsers.SetEmail(ctx, username, email)
	})
}

// SetUserGroups replaces the user's whole membership set in one
// transaction, so a concurrent reader never sees a half-applied mix.
func (s *directoryService) SetUserGroups(ctx context.Context, actor, username string, groups []string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name: "set-user-groups", StartedAt: startedAt, Duration: time.Since(startedAt),
			Success: err == nil, Err: err,
			Fields: map[string]any{"username": username, "groups": len(groups), "actor": actor},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txGroups := repository.NewSQLiteGroupRepo(tx)
		txUsers := repository.NewSQLiteUserRepo(tx)
		checker := access.NewChecker(txGroups, txUsers)
		if err := checker.Authorize(ctx, actor, s.adminGroup); err != nil {
			return err
		}
		if _, err := txUsers.GetByUsername(ctx, username); err != nil {
			return err
		}
		ok, err := txGroups.AllExist(ctx, groups)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: one or more groups do not exist", domain.ErrNotFound)
		}
		if username == s.superAdmin && !slices.Contains(groups, s.adminGroup) {
			held, err := txGroups.HasMember(ctx, username, s.adminGroup)
			if err != nil {
				return err
			}
			if held {
				return fmt.Errorf("%w: the super admin cannot lose the %s group", domain.ErrConflict, s.adminGroup)
			}
		}

		if err := txGroups.RemoveMembers(ctx, username); err != nil {
			return err
		}
		for _, g := range groups {
			if err := txGroups.AddMember(ctx, username, g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *directoryService) GetUser(ctx context.Context, actor, username string) (*domain.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.users.GetByUsername(ctx, username)
}

func (s *directoryService) ListUsers(ctx context.Context, actor string) ([]*domain.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *directoryService) GroupsOf(ctx context.Context, actor, username string) ([]string, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.groups.GroupsOf(ctx, username)
}

package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/notify"
	"github.com/alexanderramin/stagehand/internal/repository"
	"github.com/alexanderramin/stagehand/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testAdminGroup   = "admin"
	testAppCreators  = "project_lead"
	testPlanCreators = "project_manager"
	testSuperAdmin   = "root_01"
)

// captureNotifier records dispatched completion events for assertions.
type captureNotifier struct {
	events []notify.TaskCompleted
	err    error
}

func (c *captureNotifier) TaskCompleted(_ context.Context, event notify.TaskCompleted) error {
	c.events = append(c.events, event)
	return c.err
}

// fixture wires the full service stack over an in-memory database.
type fixture struct {
	db       *sql.DB
	uow      db.UnitOfWork
	apps     repository.ApplicationRepo
	plans    repository.PlanRepo
	tasks    repository.TaskRepo
	groups   repository.GroupRepo
	users    repository.UserRepo
	checker  *access.Checker
	notified *captureNotifier

	appSvc  ApplicationService
	planSvc PlanService
	taskSvc TaskService
	dirSvc  DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)

	f := &fixture{
		db:       database,
		uow:      uow,
		apps:     repository.NewSQLiteApplicationRepo(database),
		plans:    repository.NewSQLitePlanRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		groups:   repository.NewSQLiteGroupRepo(database),
		users:    repository.NewSQLiteUserRepo(database),
		notified: &captureNotifier{},
	}
	f.checker = access.NewChecker(f.groups, f.users)
	dispatcher := notify.NewDispatcher(f.notified, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f.appSvc = NewApplicationService(f.apps, uow, testAppCreators)
	f.planSvc = NewPlanService(f.plans, uow, testPlanCreators)
	f.taskSvc = NewTaskService(f.tasks, f.apps, f.checker, uow, dispatcher)
	f.dirSvc = NewDirectoryService(f.groups, f.users, f.checker, uow, testAdminGroup, testSuperAdmin)
	return f
}

func (f *fixture) seedGroup(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	if ok, err := f.groups.Exists(ctx, name); err == nil && ok {
		return
	}
	require.NoError(t, f.groups.Create(ctx, name, testutil.FixedNow))
}

func (f *fixture) seedUser(t *testing.T, username, email string, enabled bool, groups ...string) {
	t.Helper()
	ctx := context.Background()
	u := testutil.NewTestUser(username, email)
	u.Enabled = enabled
	require.NoError(t, f.users.Create(ctx, u))
	for _, g := range groups {
		f.seedGroup(t, g)
		require.NoError(t, f.groups.AddMember(ctx, username, g))
	}
}

func (f *fixture) seedApp(t *testing.T, acronym string, rnumber int, permits domain.PermitGroups) *domain.Application {
	t.Helper()
	for _, g := range permits.Named() {
		f.seedGroup(t, g)
	}
	app := testutil.NewTestApplication(acronym, testutil.WithRNumber(rnumber), testutil.WithPermits(permits))
	require.NoError(t, f.apps.Create(context.Background(), app))
	return app
}

func (f *fixture) seedPlan(t *testing.T, acronym, name string) {
	t.Helper()
	require.NoError(t, f.plans.Create(context.Background(), &domain.Plan{
		AppAcronym: acronym, Name: name, CreatedAt: testutil.FixedNow,
	}))
}

func (f *fixture) mustTask(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := f.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

// dispatcherForTests builds a quiet dispatcher over the fixture's
// capture notifier, for services constructed outside the fixture.
func dispatcherForTests(f *fixture) *notify.Dispatcher {
	return notify.NewDispatcher(f.notified, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// allStagePermits assigns every stage to the same group, convenient for
// single-actor lifecycle tests.
func allStagePermits(group string) domain.PermitGroups {
	return domain.PermitGroups{Create: group, Open: group, Todo: group, Doing: group, Done: group}
}

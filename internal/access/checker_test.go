package access

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/repository"
	"github.com/alexanderramin/stagehand/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChecker(t *testing.T) (*Checker, *sql.DB) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return NewChecker(
		repository.NewSQLiteGroupRepo(database),
		repository.NewSQLiteUserRepo(database),
	), database
}

func seedUserInGroups(t *testing.T, database *sql.DB, username string, enabled bool, groups ...string) {
	t.Helper()
	ctx := context.Background()
	userRepo := repository.NewSQLiteUserRepo(database)
	groupRepo := repository.NewSQLiteGroupRepo(database)

	u := testutil.NewTestUser(username, "")
	u.Enabled = enabled
	require.NoError(t, userRepo.Create(ctx, u))
	for _, g := range groups {
		if ok, err := groupRepo.Exists(ctx, g); err == nil && !ok {
			require.NoError(t, groupRepo.Create(ctx, g, testutil.FixedNow))
		}
		require.NoError(t, groupRepo.AddMember(ctx, username, g))
	}
}

func TestIsEnabled(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "alice01", true)
	seedUserInGroups(t, database, "bob_01", false)

	enabled, err := checker.IsEnabled(ctx, "alice01")
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = checker.IsEnabled(ctx, "bob_01")
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = checker.IsEnabled(ctx, "ghost_01")
	require.NoError(t, err)
	assert.False(t, enabled, "unknown users are treated as disabled")
}

func TestHasGroup_EmptyGroupNeverMatches(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "alice01", true, "dev_team")

	ok, err := checker.HasGroup(ctx, "alice01", "dev_team")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.HasGroup(ctx, "alice01", "")
	require.NoError(t, err)
	assert.False(t, ok, "an empty permit group locks access outright")
}

func TestAuthorize(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "alice01", true, "dev_team")
	seedUserInGroups(t, database, "bob_01", false, "dev_team")

	assert.NoError(t, checker.Authorize(ctx, "alice01", "dev_team"))
	assert.ErrorIs(t, checker.Authorize(ctx, "alice01", "grp_lead"), domain.ErrUnauthorized)
	assert.ErrorIs(t, checker.Authorize(ctx, "bob_01", "dev_team"), domain.ErrUnauthorized,
		"membership does not help a disabled account")
	assert.ErrorIs(t, checker.Authorize(ctx, "ghost_01", "dev_team"), domain.ErrUnauthorized)
}

func TestRoles(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "alice01", true, "grp_pm", "grp_dev")

	app := testutil.NewTestApplication("APP1", testutil.WithPermits(domain.PermitGroups{
		Create: "grp_pm",
		Open:   "grp_pm",
		Todo:   "grp_dev",
		Doing:  "grp_dev",
		Done:   "grp_lead",
	}))

	roles, err := checker.Roles(ctx, app, "alice01")
	require.NoError(t, err)
	assert.True(t, roles[domain.StageCreate])
	assert.True(t, roles[domain.StageOpen])
	assert.True(t, roles[domain.StageTodo])
	assert.True(t, roles[domain.StageDoing])
	assert.False(t, roles[domain.StageDone], "not a member of grp_lead")
}

func TestRoles_UnsetPermitLocksStage(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "alice01", true, "grp_pm")

	app := testutil.NewTestApplication("APP1", testutil.WithPermits(domain.PermitGroups{
		Create: "grp_pm",
	}))

	roles, err := checker.Roles(ctx, app, "alice01")
	require.NoError(t, err)
	assert.True(t, roles[domain.StageCreate])
	for _, stage := range []domain.Stage{domain.StageOpen, domain.StageTodo, domain.StageDoing, domain.StageDone} {
		assert.False(t, roles[stage], "stage %s has no permit group and must stay locked", stage)
	}
}

func TestRoles_DisabledUserIsUnauthorized(t *testing.T) {
	checker, database := newChecker(t)
	ctx := context.Background()
	seedUserInGroups(t, database, "bob_01", false, "grp_pm", "grp_dev")

	app := testutil.NewTestApplication("APP1")
	_, err := checker.Roles(ctx, app, "bob_01")
	assert.ErrorIs(t, err, domain.ErrUnauthorized,
		"membership does not help a disabled account")

	_, err = checker.Roles(ctx, app, "ghost_01")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

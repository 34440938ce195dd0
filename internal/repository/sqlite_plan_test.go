package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	apps := NewSQLiteApplicationRepo(database)
	plans := NewSQLitePlanRepo(database)

	require.NoError(t, apps.Create(ctx, testutil.NewTestApplication("APP1")))
	require.NoError(t, plans.Create(ctx, &domain.Plan{AppAcronym: "APP1", Name: "MVP1", CreatedAt: testutil.FixedNow}))

	got, err := plans.Get(ctx, "APP1", "MVP1")
	require.NoError(t, err)
	assert.Equal(t, "APP1", got.AppAcronym)
	assert.Equal(t, "MVP1", got.Name)
}

func TestPlanCreate_DuplicatePair(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	apps := NewSQLiteApplicationRepo(database)
	plans := NewSQLitePlanRepo(database)

	require.NoError(t, apps.Create(ctx, testutil.NewTestApplication("APP1")))
	require.NoError(t, apps.Create(ctx, testutil.NewTestApplication("APP2")))
	require.NoError(t, plans.Create(ctx, &domain.Plan{AppAcronym: "APP1", Name: "MVP1", CreatedAt: testutil.FixedNow}))

	err := plans.Create(ctx, &domain.Plan{AppAcronym: "APP1", Name: "MVP1", CreatedAt: testutil.FixedNow})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// The same plan name under another application is a different pair.
	require.NoError(t, plans.Create(ctx, &domain.Plan{AppAcronym: "APP2", Name: "MVP1", CreatedAt: testutil.FixedNow}))
}

func TestPlanGet_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLitePlanRepo(database)

	_, err := plans.Get(context.Background(), "APP1", "MVP9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanListByApp(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	apps := NewSQLiteApplicationRepo(database)
	plans := NewSQLitePlanRepo(database)

	require.NoError(t, apps.Create(ctx, testutil.NewTestApplication("APP1")))
	require.NoError(t, plans.Create(ctx, &domain.Plan{AppAcronym: "APP1", Name: "MVP2", CreatedAt: testutil.FixedNow}))
	require.NoError(t, plans.Create(ctx, &domain.Plan{AppAcronym: "APP1", Name: "MVP1", CreatedAt: testutil.FixedNow}))

	list, err := plans.ListByApp(ctx, "APP1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "MVP1", list[0].Name)
	assert.Equal(t, "MVP2", list[1].Name)
}

package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "pm_01", "", true, testPlanCreators)
	f.seedApp(t, "APP1", 0, domain.PermitGroups{})

	start := testutil.FixedNow
	end := start.AddDate(0, 1, 0)
	require.NoError(t, f.planSvc.Create(ctx, "pm_01", &domain.Plan{
		AppAcronym: "APP1", Name: "MVP1", StartDate: &start, EndDate: &end,
	}))

	plans, err := f.planSvc.List(ctx, "APP1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "MVP1", plans[0].Name)
}

func TestCreatePlan_RequiresCreatorGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "bob_01", "", true)
	f.seedApp(t, "APP1", 0, domain.PermitGroups{})

	err := f.planSvc.Create(ctx, "bob_01", &domain.Plan{AppAcronym: "APP1", Name: "MVP1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreatePlan_UnknownApp(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "pm_01", "", true, testPlanCreators)

	err := f.planSvc.Create(context.Background(), "pm_01", &domain.Plan{AppAcronym: "NOPE", Name: "MVP1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePlan_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "pm_01", "", true, testPlanCreators)
	f.seedApp(t, "APP1", 0, domain.PermitGroups{})
	f.seedPlan(t, "APP1", "MVP1")

	err := f.planSvc.Create(ctx, "pm_01", &domain.Plan{AppAcronym: "APP1", Name: "MVP1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/alexanderramin/stagehand/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp
// directory. Unlike :memory:, a file-backed DB shares state across all
// connections in the pool, which is required to exercise real concurrent
// access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

func seedPermitGroups(t *testing.T, database *sql.DB, names ...string) {
	t.Helper()
	groups := NewSQLiteGroupRepo(database)
	for _, name := range names {
		require.NoError(t, groups.Create(context.Background(), name, testutil.FixedNow))
	}
}

func TestApplicationCreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApplicationRepo(database)
	seedPermitGroups(t, database, "grp_pm", "grp_dev")

	app := testutil.NewTestApplication("APP1",
		testutil.WithRNumber(5),
		testutil.WithPermits(domain.PermitGroups{Create: "grp_pm", Open: "grp_pm", Todo: "grp_dev", Doing: "grp_dev", Done: "grp_pm"}),
	)
	require.NoError(t, repo.Create(ctx, app))

	got, err := repo.GetByAcronym(ctx, "APP1")
	require.NoError(t, err)
	assert.Equal(t, "APP1", got.Acronym)
	assert.Equal(t, 5, got.RNumber)
	assert.Equal(t, "grp_pm", got.Permits.Create)
	assert.Equal(t, "grp_dev", got.Permits.Doing)
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
}

func TestApplicationCreate_DuplicateAcronym(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApplicationRepo(database)

	require.NoError(t, repo.Create(ctx, testutil.NewTestApplication("APP1")))
	err := repo.Create(ctx, testutil.NewTestApplication("APP1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplicationGet_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteApplicationRepo(database)

	_, err := repo.GetByAcronym(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationUpdate_LeavesImmutableFields(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApplicationRepo(database)
	seedPermitGroups(t, database, "grp_pm")

	app := testutil.NewTestApplication("APP1", testutil.WithRNumber(7))
	require.NoError(t, repo.Create(ctx, app))

	changed := *app
	changed.Description = "attempted rewrite"
	changed.RNumber = 99
	changed.Permits = domain.PermitGroups{Create: "grp_pm"}
	require.NoError(t, repo.Update(ctx, &changed))

	got, err := repo.GetByAcronym(ctx, "APP1")
	require.NoError(t, err)
	assert.Equal(t, "test application", got.Description, "description is immutable via Update")
	assert.Equal(t, 7, got.RNumber, "rnumber is immutable via Update")
	assert.Equal(t, "grp_pm", got.Permits.Create)
}

func TestApplicationUpdate_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteApplicationRepo(database)

	err := repo.Update(context.Background(), testutil.NewTestApplication("NOPE"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNextTaskNumber_Sequential(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApplicationRepo(database)

	require.NoError(t, repo.Create(ctx, testutil.NewTestApplication("APP1", testutil.WithRNumber(5))))

	for want := 6; want <= 10; want++ {
		n, err := repo.NextTaskNumber(ctx, "APP1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	got, err := repo.GetByAcronym(ctx, "APP1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.RNumber)
}

func TestNextTaskNumber_UnknownApp(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteApplicationRepo(database)

	_, err := repo.NextTaskNumber(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Two concurrent allocations must never hand out the same number.
func TestNextTaskNumber_ConcurrentAllocationsAreDistinct(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteApplicationRepo(database)

	require.NoError(t, repo.Create(ctx, testutil.NewTestApplication("APP1", testutil.WithRNumber(5))))

	const workers = 8
	results := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, err := repo.NextTaskNumber(ctx, "APP1")
				if err != nil {
					// SQLITE_BUSY under write contention; retry.
					continue
				}
				results <- n
				return
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for n := range results {
		assert.False(t, seen[n], "number %d allocated twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)

	got, err := repo.GetByAcronym(ctx, "APP1")
	require.NoError(t, err)
	assert.Equal(t, 5+workers, got.RNumber)
}

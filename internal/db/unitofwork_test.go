package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countGroups(t *testing.T, u *SQLiteUnitOfWork) int {
	t.Helper()
	var n int
	require.NoError(t, u.db.QueryRow(`SELECT COUNT(*) FROM groups`).Scan(&n))
	return n
}

func TestWithinTx_Commits(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	uow := NewSQLiteUnitOfWork(database)

	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO groups (name, created_at) VALUES ('dev_team', '2025-01-01T00:00:00Z')`)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countGroups(t, uow))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	uow := NewSQLiteUnitOfWork(database)

	boom := errors.New("boom")
	err = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO groups (name, created_at) VALUES ('dev_team', '2025-01-01T00:00:00Z')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countGroups(t, uow), "partial writes must not be observable")
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	uow := NewSQLiteUnitOfWork(database)

	require.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx DBTX) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO groups (name, created_at) VALUES ('dev_team', '2025-01-01T00:00:00Z')`); err != nil {
				return err
			}
			panic("mid-transaction panic")
		})
	})
	assert.Equal(t, 0, countGroups(t, uow))
}

package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`CREATE TABLE IF NOT EXISTS uow_test (id TEXT PRIMARY KEY, val TEXT)`)
	require.NoError(t, err)

	return db.NewSQLiteUnitOfWork(database)
}

func readVal(uow *db.SQLiteUnitOfWork, id string) (string, bool) {
	var val string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, `SELECT val FROM uow_test WHERE id = ?`, id).Scan(&val); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return val, found
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k1", "v1")
		return err
	})
	require.NoError(t, err)

	val, found := readVal(uow, "k1")
	assert.True(t, found)
	assert.Equal(t, "v1", val)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k2", "v2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.ErrorContains(t, err, "deliberate failure")

	_, found := readVal(uow, "k2")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k3", "v3")
			panic("boom")
		})
	})

	_, found := readVal(uow, "k3")
	assert.False(t, found, "row should not exist after panic rollback")
}

func TestWithinTx_RetriesBusy(t *testing.T) {
	uow := openTestUoW(t)
	uow.BusyRetries = 2

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO uow_test (id, val) VALUES (?, ?)`, "k4", "v4")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	_, found := readVal(uow, "k4")
	assert.True(t, found)
}

func TestWithinTx_GivesUpAfterRetries(t *testing.T) {
	uow := openTestUoW(t)
	uow.BusyRetries = 1

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		return errors.New("database is locked")
	})
	require.ErrorContains(t, err, "database is locked")
	assert.Equal(t, 2, attempts)
}

func TestWithinTx_OtherErrorsAreNotRetried(t *testing.T) {
	uow := openTestUoW(t)

	attempts := 0
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		attempts++
		return errors.New("constraint failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

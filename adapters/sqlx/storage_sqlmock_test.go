package sqlx_test

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "crewkit/adapters/sqlx"
	"crewkit/core"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func TestSQLMock_Get(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("u1")

	mock.ExpectQuery(`SELECT value FROM crew_store`).
		WithArgs(user, core.KeyPoints).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("125"))

	v, ok, err := store.Get(ctx, user, core.KeyPoints)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "125", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Get_Absent(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("u1")

	mock.ExpectQuery(`SELECT value FROM crew_store`).
		WithArgs(user, core.KeyRankName).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := store.Get(ctx, user, core.KeyRankName)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Set_Upsert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	ctx := context.Background()
	user := core.UserID("u1")

	mock.ExpectExec(`INSERT INTO crew_store`).
		WithArgs(user, core.KeyQuizCompleted, "true", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Set(ctx, user, core.KeyQuizCompleted, "true"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_EnsureSchema(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS crew_store`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

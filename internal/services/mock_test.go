package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func ptr[T any](v T) *T {
	return &v
}

func expectTagUpsert(mock sqlmock.Sqlmock, name, slug string, id int64) {
	mock.ExpectQuery(`INSERT INTO tags \(name, slug\)`).
		WithArgs(name, slug).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))
}

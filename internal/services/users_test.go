package services

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"portfolio-backend-go/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "role", "created_at", "updated_at"}

func TestRegisterStoresHash(t *testing.T) {
	database, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users \(username, email, password, role\)`).
		WithArgs("alice", "alice@x.com", sqlmock.AnyArg(), models.RoleUser).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice", "alice@x.com", "user", now, now))

	user, err := Register(context.Background(), database, testTokens(), RegisterInput{
		Username: " alice ", Email: "Alice@X.com", Password: "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	database, mock := newMock(t)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`INSERT INTO users`).WillReturnError(pgErr("23505", "users_email_key"))
	}
	for i := 0; i < 2; i++ {
		_, err := Register(context.Background(), database, testTokens(), RegisterInput{
			Username: "alice", Email: "alice@x.com", Password: "pw123456",
		})
		assert.ErrorIs(t, err, ErrUserExists)
		assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidation(t *testing.T) {
	database, mock := newMock(t)
	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing username", RegisterInput{Email: "a@x.com", Password: "pw"}, "username is required"},
		{"missing email", RegisterInput{Username: "a", Password: "pw"}, "email is required"},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", Password: "pw"}, "email is invalid"},
		{"missing password", RegisterInput{Username: "a", Email: "a@x.com"}, "password is required"},
		{"bad role", RegisterInput{Username: "a", Email: "a@x.com", Password: "pw", Role: "root"}, "role must be one of user, admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Register(context.Background(), database, testTokens(), tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.msg, err.Error())
			assert.Equal(t, http.StatusBadRequest, StatusOf(err))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("pw123456")
	require.NoError(t, err)
	now := time.Now()
	columns := append(append([]string{}, userRowColumns...), "password")

	t.Run("success", func(t *testing.T) {
		database, mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
			WithArgs("alice@x.com").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", "alice@x.com", "user", now, now, hash))
		user, err := Authenticate(context.Background(), database, tokens, "alice@x.com", "pw123456")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		database, mock := newMock(t)
		mock.ExpectQuery(`FROM users WHERE email`).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "alice", "alice@x.com", "user", now, now, hash))
		_, err := Authenticate(context.Background(), database, tokens, "alice@x.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredential)
		assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		database, mock := newMock(t)
		mock.ExpectQuery(`FROM users WHERE email`).WillReturnError(sql.ErrNoRows)
		_, err := Authenticate(context.Background(), database, tokens, "ghost@x.com", "pw123456")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Equal(t, "User not found", err.(ServiceError).Message)
	})
}

func TestGetUserNotFound(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)
	_, err := GetUser(context.Background(), database, 42)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestUpdateUserRole(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectExec(`UPDATE users SET role = \$1`).
		WithArgs(models.RoleAdmin, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET role = \$1`).
		WithArgs(models.RoleUser, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, UpdateUserRole(context.Background(), database, 3, "admin"))
	assert.Equal(t, http.StatusNotFound, StatusOf(UpdateUserRole(context.Background(), database, 99, "user")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(UpdateUserRole(context.Background(), database, 3, "superuser")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserProfileConflict(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(1), "bob", nil).
		WillReturnError(pgErr("23505", "users_username_key"))
	_, err := UpdateUserProfile(context.Background(), database, 1, UserUpdate{Username: ptr("bob")})
	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.Equal(t, "users_username_key", err.(ServiceError).Details)
}

func TestDeleteUser(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, DeleteUser(context.Background(), database, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

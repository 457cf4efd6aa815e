package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrUserExists keeps the status the web client already handles for a
// duplicate registration.
var ErrUserExists = ServiceError{Status: http.StatusBadRequest, Message: "User already exists"}

const userColumns = `id, username, email, role, created_at, updated_at`

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

func (in RegisterInput) normalize() (RegisterInput, error) {
	username, err := NormalizeRequired(in.Username, "username")
	if err != nil {
		return in, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return in, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return in, ErrMissingField("password")
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return in, ErrValidation("role must be one of user, admin")
	}
	return RegisterInput{Username: username, Email: email, Password: in.Password, Role: role}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrMissingField("email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrValidation("email is invalid")
	}
	return email, nil
}

// Register stores a new user with a hashed password. Uniqueness of username
// and email is enforced by the insert itself, so concurrent registrations of
// the same identity resolve to exactly one row and ErrUserExists for the rest.
func Register(ctx context.Context, q sqlx.QueryerContext, tokens TokenService, in RegisterInput) (models.User, error) {
	in, err := in.normalize()
	if err != nil {
		return models.User{}, err
	}
	hash, err := tokens.HashPassword(in.Password)
	if err != nil {
		return models.User{}, ErrInternal("Error registering user", err)
	}
	var user models.User
	err = sqlx.GetContext(ctx, q, &user, `
INSERT INTO users (username, email, password, role)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns, in.Username, in.Email, hash, in.Role)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, ErrInternal("Error registering user", err)
	}
	return user, nil
}

// Authenticate checks an email/password pair. Neither the password nor the
// stored hash leaves this function.
func Authenticate(ctx context.Context, q sqlx.QueryerContext, tokens TokenService, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.User{}, ErrValidation("email and password are required")
	}
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, `SELECT `+userColumns+`, password FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ServiceError{Status: http.StatusBadRequest, Message: "User not found", Cause: err}
		}
		return models.User{}, ErrInternal("Error logging in", err)
	}
	if !tokens.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ServiceError{Status: http.StatusBadRequest, Message: "Invalid password", Cause: ErrInvalidCredential}
	}
	user.PasswordHash = ""
	return user, nil
}

func GetUser(ctx context.Context, q sqlx.QueryerContext, userID int64) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound("User not found")
		}
		return models.User{}, ErrInternal("Error fetching user data", err)
	}
	return user, nil
}

func ListUsers(ctx context.Context, q sqlx.QueryerContext) ([]models.User, error) {
	users := []models.User{}
	if err := sqlx.SelectContext(ctx, q, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, ErrInternal("Error fetching users", err)
	}
	return users, nil
}

type UserUpdate struct {
	Username *string
	Email    *string
}

// UpdateUserProfile changes username and/or email; absent fields are kept.
func UpdateUserProfile(ctx context.Context, q sqlx.QueryerContext, userID int64, in UserUpdate) (models.User, error) {
	var username, email *string
	if in.Username != nil {
		value, err := NormalizeRequired(*in.Username, "username")
		if err != nil {
			return models.User{}, err
		}
		username = &value
	}
	if in.Email != nil {
		value, err := normalizeEmail(*in.Email)
		if err != nil {
			return models.User{}, err
		}
		email = &value
	}
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, `
UPDATE users
SET username = COALESCE($2, username), email = COALESCE($3, email), updated_at = now()
WHERE id = $1
RETURNING `+userColumns, userID, username, email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.User{}, ErrNotFound("User not found")
		case db.IsUniqueViolation(err):
			return models.User{}, ErrConflict("Username or email already in use").WithDetails(db.ConstraintName(err))
		}
		return models.User{}, ErrInternal("Error updating user", err)
	}
	return user, nil
}

func UpdateUserRole(ctx context.Context, q sqlx.ExecerContext, userID int64, raw string) error {
	role, ok := models.ParseRole(strings.TrimSpace(raw))
	if !ok {
		return ErrValidation("role must be one of user, admin")
	}
	res, err := q.ExecContext(ctx, `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, role, userID)
	if err != nil {
		return ErrInternal("Error updating user role", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound("User not found")
	}
	return nil
}

// DeleteUser removes the user; settings cascade, authored content is kept
// with a NULL owner.
func DeleteUser(ctx context.Context, q sqlx.ExecerContext, userID int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return ErrInternal("Error deleting user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound("User not found")
	}
	return nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

const settingsColumns = `user_id, theme, language, email_notifications, created_at, updated_at`

// GetSettings returns the user's settings, creating the defaults on first
// access. Concurrent first reads never produce two rows.
func GetSettings(ctx context.Context, q sqlx.QueryerContext, userID int64) (models.UserSettings, error) {
	var settings models.UserSettings
	err := sqlx.GetContext(ctx, q, &settings, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.UserSettings{}, ErrInternal("Error fetching user settings", err)
	}
	err = sqlx.GetContext(ctx, q, &settings, `
INSERT INTO user_settings (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING `+settingsColumns, userID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return models.UserSettings{}, ErrNotFound("User not found")
		}
		return models.UserSettings{}, ErrInternal("Error fetching user settings", err)
	}
	return settings, nil
}

// SettingsUpdate carries optional changes; nil fields keep their value.
type SettingsUpdate struct {
	Theme              *string
	Language           *string
	EmailNotifications *bool
	Username           *string
	Email              *string
}

func (in SettingsUpdate) normalize() (SettingsUpdate, error) {
	out := in
	if in.Theme != nil {
		theme := models.Theme(strings.TrimSpace(*in.Theme))
		if !theme.Valid() {
			return in, ErrValidation("theme must be one of light, dark")
		}
		value := string(theme)
		out.Theme = &value
	}
	if in.Language != nil {
		lang := strings.TrimSpace(*in.Language)
		if lang == "" || len(lang) > 10 {
			return in, ErrValidation("language must be 1 to 10 characters")
		}
		out.Language = &lang
	}
	out.Username = optionalString(in.Username)
	out.Email = optionalString(in.Email)
	return out, nil
}

// UpdateSettings upserts the settings row and, when given, the user's
// username and email in one transaction. It returns the resulting profile.
func UpdateSettings(ctx context.Context, database *sqlx.DB, userID int64, in SettingsUpdate) (models.User, error) {
	in, err := in.normalize()
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO user_settings (user_id, theme, language, email_notifications)
VALUES ($1, COALESCE($2, 'light'), COALESCE($3, 'en'), COALESCE($4, true))
ON CONFLICT (user_id) DO UPDATE SET
  theme = COALESCE($2, user_settings.theme),
  language = COALESCE($3, user_settings.language),
  email_notifications = COALESCE($4, user_settings.email_notifications),
  updated_at = now()
`, userID, in.Theme, in.Language, in.EmailNotifications); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrNotFound("User not found")
			}
			return err
		}
		var err error
		user, err = UpdateUserProfile(ctx, tx, userID, UserUpdate{Username: in.Username, Email: in.Email})
		return err
	})
	if err != nil {
		return models.User{}, writeError(err, "Error updating user settings")
	}
	return user, nil
}

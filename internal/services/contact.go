package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

const maxContactMessageLength = 5000

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func SubmitContactMessage(ctx context.Context, q sqlx.QueryerContext, in ContactInput) (models.ContactMessage, error) {
	name, err := NormalizeRequired(in.Name, "name")
	if err != nil {
		return models.ContactMessage{}, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return models.ContactMessage{}, err
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return models.ContactMessage{}, ErrMissingField("message")
	}
	if utf8.RuneCountInString(message) > maxContactMessageLength {
		return models.ContactMessage{}, ErrValidation("message is too long")
	}
	var msg models.ContactMessage
	err = sqlx.GetContext(ctx, q, &msg, `
INSERT INTO contact_messages (name, email, message)
VALUES ($1, $2, $3)
RETURNING id, name, email, message, status, created_at
`, name, email, message)
	if err != nil {
		return models.ContactMessage{}, ErrInternal("Error sending message", err)
	}
	return msg, nil
}

func ListContactMessages(ctx context.Context, q sqlx.QueryerContext) ([]models.ContactMessage, error) {
	items := []models.ContactMessage{}
	err := sqlx.SelectContext(ctx, q, &items, `
SELECT id, name, email, message, status, created_at
FROM contact_messages
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		if db.IsUndefinedTable(err) {
			return []models.ContactMessage{}, nil
		}
		return nil, ErrInternal("Error fetching messages", err)
	}
	return items, nil
}

func MarkContactMessageRead(ctx context.Context, q sqlx.ExecerContext, id int64) error {
	res, err := q.ExecContext(ctx, `UPDATE contact_messages SET status = $1 WHERE id = $2`, models.MessageRead, id)
	if err != nil {
		return ErrInternal("Error updating message", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound("Message not found")
	}
	return nil
}

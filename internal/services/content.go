package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"portfolio-backend-go/internal/db"

	"github.com/jmoiron/sqlx"
)

// ensureCategory rejects a category id that does not resolve to a row. A nil
// id means "no category" and always passes.
func ensureCategory(ctx context.Context, q sqlx.QueryerContext, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, *categoryID); err != nil {
		return ErrInternal("Error checking category", err)
	}
	if !exists {
		return ErrValidation(fmt.Sprintf("category %d does not exist", *categoryID))
	}
	return nil
}

// lockRow takes a row lock on table.id for the rest of tx, or reports
// notFound when the row is gone.
func lockRow(ctx context.Context, tx *sqlx.Tx, table string, id int64, notFound string) error {
	var locked int64
	err := tx.GetContext(ctx, &locked, fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, table), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound(notFound)
	}
	return err
}

// writeError turns a failure inside a content transaction into the error the
// caller sees. Errors already classified pass through unchanged.
func writeError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr
	}
	switch {
	case db.IsUniqueViolation(err), db.IsForeignKeyViolation(err):
		return ErrConflict(msg).WithDetails(conflictDetails(err))
	case db.IsCheckViolation(err):
		return ErrValidation(msg).WithDetails(conflictDetails(err))
	}
	return ErrInternal(msg, err)
}

func conflictDetails(err error) string {
	if name := db.ConstraintName(err); name != "" {
		return "constraint " + name + " violated"
	}
	return err.Error()
}

func deleteByID(ctx context.Context, q sqlx.ExecerContext, table string, id int64, notFound string) error {
	res, err := q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return writeError(err, "Error deleting record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound(notFound)
	}
	return nil
}

func decodeStringList(raw []byte) []string {
	items := []string{}
	if len(raw) == 0 {
		return items
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	return items
}

package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

const maxTagNameLength = 100

// TagLink names the join table between a content table and tags.
type TagLink struct {
	Table  string
	Column string
}

var (
	ProjectTagLinks = TagLink{Table: "project_tags", Column: "project_id"}
	BlogTagLinks    = TagLink{Table: "blog_tags", Column: "blog_id"}
)

func validateTagNames(names []string) ([]string, error) {
	cleaned := CleanTags(names)
	for _, name := range cleaned {
		if utf8.RuneCountInString(name) > maxTagNameLength {
			return nil, ErrValidation(fmt.Sprintf("tag %q is longer than %d characters", name, maxTagNameLength))
		}
	}
	return cleaned, nil
}

// ReconcileTags makes sure every named tag exists and is linked to contentID.
// It only adds links; callers wanting exact set semantics use ReplaceTags.
// It must run inside the caller's transaction so a failure rolls back
// everything written so far.
func ReconcileTags(ctx context.Context, tx sqlx.ExtContext, link TagLink, contentID int64, names []string) error {
	cleaned, err := validateTagNames(names)
	if err != nil {
		return err
	}
	linkSQL := fmt.Sprintf(`INSERT INTO %s (%s, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, link.Table, link.Column)
	for _, name := range cleaned {
		tagID, err := upsertTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, linkSQL, contentID, tagID); err != nil {
			return WrapError(err, "link tag "+name)
		}
	}
	return nil
}

// ReplaceTags clears every existing link of contentID before reconciling, so
// afterwards the linked set equals names exactly.
func ReplaceTags(ctx context.Context, tx sqlx.ExtContext, link TagLink, contentID int64, names []string) error {
	if err := ClearTags(ctx, tx, link, contentID); err != nil {
		return err
	}
	return ReconcileTags(ctx, tx, link, contentID, names)
}

func ClearTags(ctx context.Context, tx sqlx.ExtContext, link TagLink, contentID int64) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, link.Table, link.Column), contentID)
	return WrapError(err, "clear tags")
}

// upsertTag returns the id of the tag called name, creating it on first use.
// The no-op update makes RETURNING yield the existing row on conflict.
func upsertTag(ctx context.Context, tx sqlx.ExtContext, name string) (int64, error) {
	var tagID int64
	err := sqlx.GetContext(ctx, tx, &tagID, `
INSERT INTO tags (name, slug)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`, name, TagSlug(name))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrConflict("Tag slug already in use").
				WithDetails(fmt.Sprintf("tag %q maps to slug %q which belongs to another tag", name, TagSlug(name)))
		}
		return 0, WrapError(err, "upsert tag "+name)
	}
	return tagID, nil
}

func ListTags(ctx context.Context, q sqlx.QueryerContext) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := sqlx.SelectContext(ctx, q, &tags, `SELECT id, name, slug FROM tags ORDER BY name`); err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Tag{}, nil
		}
		return nil, err
	}
	return tags, nil
}

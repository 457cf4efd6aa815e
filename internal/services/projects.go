package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"portfolio-backend-go/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type ProjectInput struct {
	Title       string
	Description string
	CategoryID  *int64
	ImageURL    *string
	Tags        []string
}

func (in ProjectInput) normalize() (ProjectInput, error) {
	title, err := NormalizeRequired(in.Title, "title")
	if err != nil {
		return in, err
	}
	description, err := NormalizeRequired(in.Description, "description")
	if err != nil {
		return in, err
	}
	tags, err := validateTagNames(in.Tags)
	if err != nil {
		return in, err
	}
	return ProjectInput{
		Title:       title,
		Description: description,
		CategoryID:  in.CategoryID,
		ImageURL:    optionalString(in.ImageURL),
		Tags:        tags,
	}, nil
}

// CreateProject inserts the project and its tag links in one transaction.
func CreateProject(ctx context.Context, database *sqlx.DB, createdBy int64, in ProjectInput) (int64, error) {
	in, err := in.normalize()
	if err != nil {
		return 0, err
	}
	if err := ensureCategory(ctx, database, in.CategoryID); err != nil {
		return 0, err
	}
	var projectID int64
	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &projectID, `
INSERT INTO projects (title, description, category_id, image_url, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, in.Title, in.Description, in.CategoryID, in.ImageURL, createdBy); err != nil {
			return err
		}
		return ReconcileTags(ctx, tx, ProjectTagLinks, projectID, in.Tags)
	})
	if err != nil {
		return 0, writeError(err, "Error creating project")
	}
	return projectID, nil
}

// UpdateProject overwrites the project row and replaces its tag set. The row
// lock serializes concurrent updates of the same project.
func UpdateProject(ctx context.Context, database *sqlx.DB, projectID int64, in ProjectInput) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	if err := ensureCategory(ctx, database, in.CategoryID); err != nil {
		return err
	}
	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "projects", projectID, "Project not found"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE projects
SET title = $1, description = $2, category_id = $3, image_url = $4, updated_at = now()
WHERE id = $5
`, in.Title, in.Description, in.CategoryID, in.ImageURL, projectID); err != nil {
			return err
		}
		return ReplaceTags(ctx, tx, ProjectTagLinks, projectID, in.Tags)
	})
	return writeError(err, "Error updating project")
}

// DeleteProject removes the project; tag links and related-content rows go
// with it, tags themselves stay.
func DeleteProject(ctx context.Context, q sqlx.ExecerContext, projectID int64) error {
	return deleteByID(ctx, q, "projects", projectID, "Project not found")
}

type ProjectView struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description"`
	CategoryID   *int64    `db:"category_id" json:"category_id"`
	CategoryName *string   `db:"category_name" json:"category_name"`
	ImageURL     *string   `db:"image_url" json:"image_url"`
	CreatedBy    *int64    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	TagsJSON     []byte    `db:"tags" json:"-"`
	Tags         []string  `db:"-" json:"tags"`
}

const projectViewQuery = `
SELECT p.id, p.title, p.description, p.category_id, p.image_url, p.created_by, p.created_at, p.updated_at,
       c.name AS category_name,
       COALESCE(json_agg(DISTINCT t.name) FILTER (WHERE t.name IS NOT NULL), '[]') AS tags
FROM projects p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN project_tags pt ON pt.project_id = p.id
LEFT JOIN tags t ON t.id = pt.tag_id
`

// ListProjects returns every project newest first with its category name and
// tag names. A missing schema yields an empty list.
func ListProjects(ctx context.Context, q sqlx.QueryerContext) ([]ProjectView, error) {
	rows := []ProjectView{}
	err := sqlx.SelectContext(ctx, q, &rows, projectViewQuery+`
GROUP BY p.id, c.name
ORDER BY p.created_at DESC, p.id DESC
`)
	if err != nil {
		if db.IsUndefinedTable(err) {
			log.Warn().Err(err).Msg("projects schema missing, returning empty list")
			return []ProjectView{}, nil
		}
		return nil, ErrInternal("Error fetching projects", err)
	}
	for i := range rows {
		rows[i].Tags = decodeStringList(rows[i].TagsJSON)
	}
	return rows, nil
}

func GetProject(ctx context.Context, q sqlx.QueryerContext, projectID int64) (ProjectView, error) {
	var view ProjectView
	err := sqlx.GetContext(ctx, q, &view, projectViewQuery+`
WHERE p.id = $1
GROUP BY p.id, c.name
`, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || db.IsUndefinedTable(err) {
			return ProjectView{}, ErrNotFound("Project not found")
		}
		return ProjectView{}, ErrInternal("Error fetching project", err)
	}
	view.Tags = decodeStringList(view.TagsJSON)
	return view, nil
}

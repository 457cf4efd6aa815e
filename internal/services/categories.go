package services

import (
	"context"
	"database/sql"
	"errors"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
)

type CategoryInput struct {
	Name        string
	Description *string
}

func (in CategoryInput) normalize() (CategoryInput, string, error) {
	name, err := NormalizeRequired(in.Name, "name")
	if err != nil {
		return in, "", err
	}
	slug := CategorySlug(name)
	if slug == "" {
		return in, "", ErrValidation("name must contain at least one letter or digit")
	}
	return CategoryInput{Name: name, Description: optionalString(in.Description)}, slug, nil
}

func categoryConflict(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrConflict("A category with this name already exists").WithDetails(conflictDetails(err))
	}
	return nil
}

func ListCategories(ctx context.Context, q sqlx.QueryerContext) ([]models.Category, error) {
	items := []models.Category{}
	err := sqlx.SelectContext(ctx, q, &items, `
SELECT id, name, slug, description, created_at, updated_at
FROM categories
ORDER BY name
`)
	if err != nil {
		if db.IsUndefinedTable(err) {
			return []models.Category{}, nil
		}
		return nil, ErrInternal("Error fetching categories", err)
	}
	return items, nil
}

func CreateCategory(ctx context.Context, q sqlx.QueryerContext, in CategoryInput) (models.Category, error) {
	in, slug, err := in.normalize()
	if err != nil {
		return models.Category{}, err
	}
	var item models.Category
	err = sqlx.GetContext(ctx, q, &item, `
INSERT INTO categories (name, slug, description)
VALUES ($1, $2, $3)
RETURNING id, name, slug, description, created_at, updated_at
`, in.Name, slug, in.Description)
	if err != nil {
		if cerr := categoryConflict(err); cerr != nil {
			return models.Category{}, cerr
		}
		return models.Category{}, ErrInternal("Error creating category", err)
	}
	return item, nil
}

func UpdateCategory(ctx context.Context, q sqlx.QueryerContext, categoryID int64, in CategoryInput) (models.Category, error) {
	in, slug, err := in.normalize()
	if err != nil {
		return models.Category{}, err
	}
	var item models.Category
	err = sqlx.GetContext(ctx, q, &item, `
UPDATE categories
SET name = $1, slug = $2, description = $3, updated_at = now()
WHERE id = $4
RETURNING id, name, slug, description, created_at, updated_at
`, in.Name, slug, in.Description, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrNotFound("Category not found")
		}
		if cerr := categoryConflict(err); cerr != nil {
			return models.Category{}, cerr
		}
		return models.Category{}, ErrInternal("Error updating category", err)
	}
	return item, nil
}

// DeleteCategory removes the category; projects and posts in it become
// uncategorized.
func DeleteCategory(ctx context.Context, q sqlx.ExecerContext, categoryID int64) error {
	return deleteByID(ctx, q, "categories", categoryID, "Category not found")
}

package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const defaultRelevance = 1.0

type BlogPostInput struct {
	Title           string
	Content         string
	Excerpt         *string
	ImageURL        *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        []string
	CategoryID      *int64
	Status          models.PostStatus
	Tags            []string
	// nil leaves the stored relations untouched on update.
	RelatedProjectIDs []int64
	RelatedPostIDs    []int64
}

func (in BlogPostInput) normalize() (BlogPostInput, error) {
	title, err := NormalizeRequired(in.Title, "title")
	if err != nil {
		return in, err
	}
	content, err := NormalizeRequired(in.Content, "content")
	if err != nil {
		return in, err
	}
	status := in.Status
	if status == "" {
		status = models.PostDraft
	}
	if !status.Valid() {
		return in, ErrValidation("status must be one of draft, published")
	}
	tags, err := validateTagNames(in.Tags)
	if err != nil {
		return in, err
	}
	out := in
	out.Title = title
	out.Content = content
	out.Status = status
	out.Tags = tags
	out.Keywords = CleanTags(in.Keywords)
	out.Excerpt = optionalString(in.Excerpt)
	out.ImageURL = optionalString(in.ImageURL)
	out.MetaTitle = optionalString(in.MetaTitle)
	out.MetaDescription = optionalString(in.MetaDescription)
	return out, nil
}

func titleSlug(title string) (string, error) {
	slug := PostSlug(title)
	if slug == "" {
		return "", ErrValidation("title must contain at least one letter or digit")
	}
	return slug, nil
}

func duplicateSlug(slug string) ServiceError {
	return ErrConflict("A blog post with this title already exists").
		WithDetails(fmt.Sprintf("slug %q is already used by another post", slug))
}

// ensureSlugFree fails with a conflict when a post other than exceptID owns
// slug. The unique index still backs this up at insert time.
func ensureSlugFree(ctx context.Context, q sqlx.QueryerContext, slug string, exceptID int64) error {
	var taken bool
	err := sqlx.GetContext(ctx, q, &taken,
		`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`, slug, exceptID)
	if err != nil {
		return ErrInternal("Error checking slug", err)
	}
	if taken {
		return duplicateSlug(slug)
	}
	return nil
}

func CreateBlogPost(ctx context.Context, database *sqlx.DB, authorID int64, in BlogPostInput) (int64, string, error) {
	in, err := in.normalize()
	if err != nil {
		return 0, "", err
	}
	slug, err := titleSlug(in.Title)
	if err != nil {
		return 0, "", err
	}
	if err := ensureSlugFree(ctx, database, slug, 0); err != nil {
		return 0, "", err
	}
	if err := ensureCategory(ctx, database, in.CategoryID); err != nil {
		return 0, "", err
	}
	keywords, err := json.Marshal(in.Keywords)
	if err != nil {
		return 0, "", ErrInternal("Error creating blog post", err)
	}
	var postID int64
	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &postID, `
INSERT INTO blog_posts (
  title, slug, excerpt, content, image_url, meta_title, meta_description,
  keywords, author_id, category_id, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id
`, in.Title, slug, in.Excerpt, in.Content, in.ImageURL, in.MetaTitle, in.MetaDescription,
			keywords, authorID, in.CategoryID, in.Status); err != nil {
			if db.IsUniqueViolation(err) {
				return duplicateSlug(slug)
			}
			return err
		}
		if err := ReconcileTags(ctx, tx, BlogTagLinks, postID, in.Tags); err != nil {
			return err
		}
		return replaceRelated(ctx, tx, postID, in.RelatedProjectIDs, in.RelatedPostIDs)
	})
	if err != nil {
		return 0, "", writeError(err, "Error creating blog post")
	}
	return postID, slug, nil
}

// UpdateBlogPost rewrites the post and replaces its tags. The slug follows
// the title while the post is a draft and is frozen once published, so
// shared links keep working.
func UpdateBlogPost(ctx context.Context, database *sqlx.DB, postID int64, in BlogPostInput) (string, error) {
	in, err := in.normalize()
	if err != nil {
		return "", err
	}
	var current struct {
		Slug   string            `db:"slug"`
		Status models.PostStatus `db:"status"`
	}
	if err := database.GetContext(ctx, &current, `SELECT slug, status FROM blog_posts WHERE id = $1`, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound("Blog post not found")
		}
		return "", ErrInternal("Error updating blog post", err)
	}
	slug := current.Slug
	if current.Status != models.PostPublished {
		if slug, err = titleSlug(in.Title); err != nil {
			return "", err
		}
	}
	if err := ensureSlugFree(ctx, database, slug, postID); err != nil {
		return "", err
	}
	if err := ensureCategory(ctx, database, in.CategoryID); err != nil {
		return "", err
	}
	keywords, err := json.Marshal(in.Keywords)
	if err != nil {
		return "", ErrInternal("Error updating blog post", err)
	}
	err = db.WithTx(ctx, database, func(tx *sqlx.Tx) error {
		if err := lockRow(ctx, tx, "blog_posts", postID, "Blog post not found"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE blog_posts
SET title = $1, slug = $2, excerpt = $3, content = $4, image_url = $5, meta_title = $6,
    meta_description = $7, keywords = $8, category_id = $9, status = $10, updated_at = now()
WHERE id = $11
`, in.Title, slug, in.Excerpt, in.Content, in.ImageURL, in.MetaTitle, in.MetaDescription,
			keywords, in.CategoryID, in.Status, postID); err != nil {
			if db.IsUniqueViolation(err) {
				return duplicateSlug(slug)
			}
			return err
		}
		if err := ReplaceTags(ctx, tx, BlogTagLinks, postID, in.Tags); err != nil {
			return err
		}
		if in.RelatedProjectIDs == nil && in.RelatedPostIDs == nil {
			return nil
		}
		return replaceRelated(ctx, tx, postID, in.RelatedProjectIDs, in.RelatedPostIDs)
	})
	if err != nil {
		return "", writeError(err, "Error updating blog post")
	}
	return slug, nil
}

// replaceRelated swaps the post's related content for the given ids. A post
// never relates to itself and duplicates are dropped.
func replaceRelated(ctx context.Context, tx *sqlx.Tx, postID int64, projectIDs, postIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM related_content WHERE blog_id = $1`, postID); err != nil {
		return err
	}
	for _, projectID := range uniqueIDs(projectIDs, 0) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO related_content (blog_id, project_id, relevance_score) VALUES ($1, $2, $3)`,
			postID, projectID, defaultRelevance); err != nil {
			return relatedError(err, "project", projectID)
		}
	}
	for _, relatedID := range uniqueIDs(postIDs, postID) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO related_content (blog_id, related_blog_id, relevance_score) VALUES ($1, $2, $3)`,
			postID, relatedID, defaultRelevance); err != nil {
			return relatedError(err, "blog post", relatedID)
		}
	}
	return nil
}

func relatedError(err error, kind string, id int64) error {
	if db.IsForeignKeyViolation(err) {
		return ErrConflict("Related content not found").WithDetails(fmt.Sprintf("%s %d does not exist", kind, id))
	}
	return err
}

func uniqueIDs(ids []int64, skip int64) []int64 {
	seen := map[int64]bool{}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || id == skip || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func DeleteBlogPost(ctx context.Context, q sqlx.ExecerContext, postID int64) error {
	return deleteByID(ctx, q, "blog_posts", postID, "Blog post not found")
}

type RelatedProject struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	ImageURL *string `json:"image_url"`
}

type RelatedPost struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type BlogPostView struct {
	ID                  int64             `db:"id" json:"id"`
	Title               string            `db:"title" json:"title"`
	Slug                string            `db:"slug" json:"slug"`
	Excerpt             *string           `db:"excerpt" json:"excerpt"`
	Content             string            `db:"content" json:"content"`
	ImageURL            *string           `db:"image_url" json:"image_url"`
	MetaTitle           *string           `db:"meta_title" json:"meta_title"`
	MetaDescription     *string           `db:"meta_description" json:"meta_description"`
	KeywordsJSON        []byte            `db:"keywords" json:"-"`
	Keywords            []string          `db:"-" json:"keywords"`
	AuthorID            *int64            `db:"author_id" json:"author_id"`
	Author              *string           `db:"author" json:"author"`
	CategoryID          *int64            `db:"category_id" json:"category_id"`
	Category            *string           `db:"category" json:"category"`
	Status              models.PostStatus `db:"status" json:"status"`
	Views               int64             `db:"views" json:"views"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
	TagsJSON            []byte            `db:"tags" json:"-"`
	Tags                []string          `db:"-" json:"tags"`
	RelatedProjectsJSON []byte            `db:"related_projects" json:"-"`
	RelatedProjects     []RelatedProject  `db:"-" json:"related_projects"`
	RelatedPostsJSON    []byte            `db:"related_posts" json:"-"`
	RelatedPosts        []RelatedPost     `db:"-" json:"related_posts"`
}

func (v *BlogPostView) decode() {
	v.Keywords = decodeStringList(v.KeywordsJSON)
	v.Tags = decodeStringList(v.TagsJSON)
	v.RelatedProjects = []RelatedProject{}
	if len(v.RelatedProjectsJSON) > 0 {
		_ = json.Unmarshal(v.RelatedProjectsJSON, &v.RelatedProjects)
	}
	v.RelatedPosts = []RelatedPost{}
	if len(v.RelatedPostsJSON) > 0 {
		_ = json.Unmarshal(v.RelatedPostsJSON, &v.RelatedPosts)
	}
}

const blogPostViewQuery = `
SELECT b.id, b.title, b.slug, b.excerpt, b.content, b.image_url, b.meta_title, b.meta_description,
       b.keywords, b.author_id, u.username AS author, b.category_id, c.name AS category,
       b.status, b.views, b.created_at, b.updated_at,
       COALESCE((
         SELECT json_agg(DISTINCT t.name)
         FROM blog_tags bt JOIN tags t ON t.id = bt.tag_id
         WHERE bt.blog_id = b.id
       ), '[]') AS tags,
       COALESCE((
         SELECT json_agg(DISTINCT jsonb_build_object('id', p.id, 'title', p.title, 'image_url', p.image_url))
         FROM related_content rc JOIN projects p ON p.id = rc.project_id
         WHERE rc.blog_id = b.id
       ), '[]') AS related_projects,
       COALESCE((
         SELECT json_agg(DISTINCT jsonb_build_object('id', r.id, 'title', r.title, 'slug', r.slug))
         FROM related_content rc JOIN blog_posts r ON r.id = rc.related_blog_id
         WHERE rc.blog_id = b.id AND r.status = 'published'
       ), '[]') AS related_posts
FROM blog_posts b
LEFT JOIN users u ON u.id = b.author_id
LEFT JOIN categories c ON c.id = b.category_id
`

// ListBlogPosts returns posts newest first. Drafts are only included when
// includeDrafts is set.
func ListBlogPosts(ctx context.Context, q sqlx.QueryerContext, includeDrafts bool) ([]BlogPostView, error) {
	query := blogPostViewQuery
	if !includeDrafts {
		query += `WHERE b.status = 'published'
`
	}
	query += `ORDER BY b.created_at DESC, b.id DESC`
	rows := []BlogPostView{}
	if err := sqlx.SelectContext(ctx, q, &rows, query); err != nil {
		if db.IsUndefinedTable(err) {
			log.Warn().Err(err).Msg("blog schema missing, returning empty list")
			return []BlogPostView{}, nil
		}
		return nil, ErrInternal("Error fetching blog posts", err)
	}
	for i := range rows {
		rows[i].decode()
	}
	return rows, nil
}

// ReadBlogPost fetches a published post by slug and counts the read. Each
// successful call increments views by one.
func ReadBlogPost(ctx context.Context, q sqlx.ExtContext, slug string) (BlogPostView, error) {
	var view BlogPostView
	err := sqlx.GetContext(ctx, q, &view, blogPostViewQuery+`WHERE b.slug = $1 AND b.status = 'published'`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || db.IsUndefinedTable(err) {
			return BlogPostView{}, ErrNotFound("Blog post not found")
		}
		return BlogPostView{}, ErrInternal("Error fetching blog post", err)
	}
	views, err := IncrementViews(ctx, q, view.ID)
	if err != nil {
		return BlogPostView{}, err
	}
	view.Views = views
	view.decode()
	return view, nil
}

// IncrementViews bumps the counter in a single statement outside any upsert
// transaction and returns the new value.
func IncrementViews(ctx context.Context, q sqlx.QueryerContext, postID int64) (int64, error) {
	var views int64
	err := sqlx.GetContext(ctx, q, &views, `UPDATE blog_posts SET views = views + 1 WHERE id = $1 RETURNING views`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound("Blog post not found")
		}
		return 0, ErrInternal("Error counting view", err)
	}
	return views, nil
}

// GetBlogPostByID is the admin read; it does not count a view.
func GetBlogPostByID(ctx context.Context, q sqlx.QueryerContext, postID int64) (BlogPostView, error) {
	var view BlogPostView
	err := sqlx.GetContext(ctx, q, &view, blogPostViewQuery+`WHERE b.id = $1`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || db.IsUndefinedTable(err) {
			return BlogPostView{}, ErrNotFound("Blog post not found")
		}
		return BlogPostView{}, ErrInternal("Error fetching blog post", err)
	}
	view.decode()
	return view, nil
}

package services

import (
	"context"

	"portfolio-backend-go/internal/db"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type UserStatistics struct {
	TotalUsers int64 `db:"total_users" json:"total_users"`
	AdminCount int64 `db:"admin_count" json:"admin_count"`
	UserCount  int64 `db:"user_count" json:"user_count"`
}

type ContentStatistics struct {
	TotalProjects  int64 `db:"total_projects" json:"total_projects"`
	TotalPosts     int64 `db:"total_posts" json:"total_posts"`
	PublishedPosts int64 `db:"published_posts" json:"published_posts"`
	TotalViews     int64 `db:"total_views" json:"total_views"`
	UnreadMessages int64 `db:"unread_messages" json:"unread_messages"`
}

type Dashboard struct {
	Statistics UserStatistics    `json:"statistics"`
	Content    ContentStatistics `json:"content"`
}

// LoadDashboard gathers user and content counters concurrently. Content
// counters read as zero while the content schema is missing.
func LoadDashboard(ctx context.Context, q sqlx.QueryerContext) (Dashboard, error) {
	var out Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sqlx.GetContext(gctx, q, &out.Statistics, `
SELECT COUNT(*) AS total_users,
       COUNT(*) FILTER (WHERE role = 'admin') AS admin_count,
       COUNT(*) FILTER (WHERE role = 'user') AS user_count
FROM users
`)
	})
	g.Go(func() error {
		err := sqlx.GetContext(gctx, q, &out.Content, `
SELECT (SELECT COUNT(*) FROM projects) AS total_projects,
       (SELECT COUNT(*) FROM blog_posts) AS total_posts,
       (SELECT COUNT(*) FROM blog_posts WHERE status = 'published') AS published_posts,
       (SELECT COALESCE(SUM(views), 0) FROM blog_posts) AS total_views,
       (SELECT COUNT(*) FROM contact_messages WHERE status = 'unread') AS unread_messages
`)
		if db.IsUndefinedTable(err) {
			out.Content = ContentStatistics{}
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, ErrInternal("Error fetching dashboard data", err)
	}
	return out, nil
}

//go:build integration

package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"portfolio-backend-go/internal/db"
	"portfolio-backend-go/internal/migrations"
	"portfolio-backend-go/internal/models"
	"portfolio-backend-go/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

var tokens = services.TokenService{
	Secret:     []byte("integration-secret-0123456789abcdef"),
	TTL:        time.Hour,
	BcryptCost: bcrypt.MinCost,
}

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("portfolio"),
		postgres.WithUsername("site"),
		postgres.WithPassword("site"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	database, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Apply(ctx, database))
	return database
}

func register(t *testing.T, database *sqlx.DB, name string) models.User {
	t.Helper()
	user, err := services.Register(context.Background(), database, tokens, services.RegisterInput{
		Username: name, Email: name + "@x.com", Password: "pw123456",
	})
	require.NoError(t, err)
	return user
}

func linkedTags(t *testing.T, database *sqlx.DB, projectID int64) []string {
	t.Helper()
	names := []string{}
	require.NoError(t, database.Select(&names, `
SELECT t.name FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
WHERE pt.project_id = $1 ORDER BY t.name`, projectID))
	return names
}

func TestIntegration(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	admin := register(t, database, "root")
	require.NoError(t, services.UpdateUserRole(ctx, database, admin.ID, "admin"))

	t.Run("demo project creates slugged tags", func(t *testing.T) {
		id, err := services.CreateProject(ctx, database, admin.ID, services.ProjectInput{
			Title: "Demo", Description: "d", Tags: []string{"AI", "Web Dev"},
		})
		require.NoError(t, err)
		var tags []models.Tag
		require.NoError(t, database.Select(&tags, `SELECT id, name, slug FROM tags WHERE name IN ('AI', 'Web Dev') ORDER BY name`))
		require.Len(t, tags, 2)
		assert.Equal(t, "ai", tags[0].Slug)
		assert.Equal(t, "web-dev", tags[1].Slug)
		assert.Equal(t, []string{"AI", "Web Dev"}, linkedTags(t, database, id))
	})

	t.Run("update replaces the tag set", func(t *testing.T) {
		id, err := services.CreateProject(ctx, database, admin.ID, services.ProjectInput{
			Title: "P", Description: "d", Tags: []string{"T1"},
		})
		require.NoError(t, err)
		require.NoError(t, services.UpdateProject(ctx, database, id, services.ProjectInput{
			Title: "P", Description: "d", Tags: []string{"T2"},
		}))
		assert.Equal(t, []string{"T2"}, linkedTags(t, database, id))

		view, err := services.GetProject(ctx, database, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"T2"}, view.Tags)
	})

	t.Run("tag failure rolls back the whole upsert", func(t *testing.T) {
		var before int
		require.NoError(t, database.Get(&before, `SELECT COUNT(*) FROM projects`))
		_, err := services.CreateProject(ctx, database, admin.ID, services.ProjectInput{
			Title: "Broken", Description: "d", Tags: []string{"Fresh Tag", "web dev"},
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, services.StatusOf(err))

		var after, fresh int
		require.NoError(t, database.Get(&after, `SELECT COUNT(*) FROM projects`))
		require.NoError(t, database.Get(&fresh, `SELECT COUNT(*) FROM tags WHERE name = 'Fresh Tag'`))
		assert.Equal(t, before, after)
		assert.Zero(t, fresh)
	})

	t.Run("failed update leaves the project and its tags as they were", func(t *testing.T) {
		id, err := services.CreateProject(ctx, database, admin.ID, services.ProjectInput{
			Title: "Kept Title", Description: "d", Tags: []string{"T1"},
		})
		require.NoError(t, err)

		err = services.UpdateProject(ctx, database, id, services.ProjectInput{
			Title: "New Title", Description: "d2", Tags: []string{"T3", "web dev"},
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, services.StatusOf(err))

		view, err := services.GetProject(ctx, database, id)
		require.NoError(t, err)
		assert.Equal(t, "Kept Title", view.Title)
		require.NotNil(t, view.Description)
		assert.Equal(t, "d", *view.Description)
		assert.Equal(t, []string{"T1"}, view.Tags)
		assert.Equal(t, []string{"T1"}, linkedTags(t, database, id))

		var orphan int
		require.NoError(t, database.Get(&orphan, `SELECT COUNT(*) FROM tags WHERE name = 'T3'`))
		assert.Zero(t, orphan)
	})

	t.Run("duplicate registration never creates a second row", func(t *testing.T) {
		in := services.RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw123456"}
		_, err := services.Register(ctx, database, tokens, in)
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			_, err = services.Register(ctx, database, tokens, in)
			assert.ErrorIs(t, err, services.ErrUserExists)
		}
		var count int
		require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM users WHERE email = 'alice@x.com'`))
		assert.Equal(t, 1, count)
	})

	t.Run("concurrent registrations resolve to one user", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		created, conflicts := 0, 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := services.Register(ctx, database, tokens, services.RegisterInput{
					Username: "racer", Email: "racer@x.com", Password: "pw123456",
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, services.ErrUserExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created)
		assert.Equal(t, 7, conflicts)
	})

	t.Run("login round trip", func(t *testing.T) {
		user, err := services.Authenticate(ctx, database, tokens, "alice@x.com", "pw123456")
		require.NoError(t, err)
		token, _, err := tokens.Issue(user.ID, user.Username, user.Role)
		require.NoError(t, err)
		claims, err := tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, claims.Role)

		_, err = services.Authenticate(ctx, database, tokens, "alice@x.com", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredential)
	})

	t.Run("blog slug conflict and view counting", func(t *testing.T) {
		projectID, err := services.CreateProject(ctx, database, admin.ID, services.ProjectInput{Title: "Linked", Description: "d"})
		require.NoError(t, err)
		_, slug, err := services.CreateBlogPost(ctx, database, admin.ID, services.BlogPostInput{
			Title: "Hello World", Content: "body", Status: models.PostPublished,
			Tags: []string{"Go"}, Keywords: []string{"go"}, RelatedProjectIDs: []int64{projectID},
		})
		require.NoError(t, err)
		assert.Equal(t, "hello-world", slug)

		_, _, err = services.CreateBlogPost(ctx, database, admin.ID, services.BlogPostInput{Title: "Hello, World!", Content: "x"})
		assert.Equal(t, http.StatusConflict, services.StatusOf(err))

		first, err := services.ReadBlogPost(ctx, database, slug)
		require.NoError(t, err)
		second, err := services.ReadBlogPost(ctx, database, slug)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.Views)
		assert.Equal(t, int64(2), second.Views)
		assert.Equal(t, "root", *second.Author)
		assert.Equal(t, []string{"Go"}, second.Tags)
		require.Len(t, second.RelatedProjects, 1)
		assert.Equal(t, projectID, second.RelatedProjects[0].ID)

		_, err = services.UpdateBlogPost(ctx, database, first.ID, services.BlogPostInput{
			Title: "Renamed", Content: "body", Status: models.PostPublished,
		})
		require.NoError(t, err)
		third, err := services.ReadBlogPost(ctx, database, slug)
		require.NoError(t, err)
		assert.Equal(t, int64(3), third.Views)
		assert.Equal(t, "Renamed", third.Title)
		assert.Empty(t, third.Tags)
	})

	t.Run("settings are created once", func(t *testing.T) {
		user := register(t, database, "carol")
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := services.GetSettings(ctx, database, user.ID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		var count int
		require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM user_settings WHERE user_id = $1`, user.ID))
		assert.Equal(t, 1, count)
	})
}

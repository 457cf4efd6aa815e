package services

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileTagsUpsertsAndLinks(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := database.Beginx()
	require.NoError(t, err)

	expectTagUpsert(mock, "AI", "ai", 1)
	mock.ExpectExec(`INSERT INTO project_tags \(project_id, tag_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectTagUpsert(mock, "Web Dev", "web-dev", 2)
	mock.ExpectExec(`INSERT INTO project_tags`).
		WithArgs(int64(9), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ReconcileTags(context.Background(), tx, ProjectTagLinks, 9, []string{" AI ", "Web Dev", "", "AI"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTagsClearsFirst(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := database.Beginx()
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM blog_tags WHERE blog_id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	expectTagUpsert(mock, "Go", "go", 5)
	mock.ExpectExec(`INSERT INTO blog_tags \(blog_id, tag_id\)`).
		WithArgs(int64(4), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ReplaceTags(context.Background(), tx, BlogTagLinks, 4, []string{"Go"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTagsWithEmptySetOnlyClears(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := database.Beginx()
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM project_tags WHERE project_id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, ReplaceTags(context.Background(), tx, ProjectTagLinks, 2, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileTagsSlugCollisionIsConflict(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := database.Beginx()
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO tags`).
		WithArgs("web dev", "web-dev").
		WillReturnError(pgErr("23505", "tags_slug_key"))

	err = ReconcileTags(context.Background(), tx, ProjectTagLinks, 1, []string{"web dev"})
	require.Error(t, err)
	assert.Equal(t, 409, StatusOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileTagsRejectsLongNames(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	tx, err := database.Beginx()
	require.NoError(t, err)

	err = ReconcileTags(context.Background(), tx, ProjectTagLinks, 1, []string{strings.Repeat("x", 101)})
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTagsMissingTable(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectQuery(`SELECT id, name, slug FROM tags`).WillReturnError(pgErr("42P01", ""))

	tags, err := ListTags(context.Background(), database)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

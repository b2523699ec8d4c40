package notes

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "title", "content", "summary", "tags", "created_at", "updated_at", "deleted_at", "deleted_by"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	content := "body"
	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+notes\s*\(id,\s*user_id,\s*title,\s*content,\s*tags\).*RETURNING\s+created_at,\s*updated_at\s*$`).
		WithArgs("n1", "u1", "title", "body", []byte(`["go"]`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), &models.Note{ID: "n1", UserID: "u1", Title: "title", Content: &content, Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NilTagsStoredAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+notes`).
		WithArgs("n1", "u1", "t", nil, []byte(`[]`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), &models.Note{ID: "n1", UserID: "u1", Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Tags)
}

func TestGetActive_FoundAndNullColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+deleted_at\s+IS\s+NULL`).
		WithArgs("n1", "u1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow("n1", "u1", "t", nil, nil, []byte(`["a","b"]`), now, now, nil, nil))

	n, err := repo.GetActive(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.Nil(t, n.Content)
	assert.Nil(t, n.DeletedAt)
	assert.Equal(t, []string{"a", "b"}, n.Tags)
	assert.False(t, n.InTrash())
}

func TestGetActive_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+notes`).WithArgs("n1", "u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActive(context.Background(), "n1", "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListActive_OrderAndPaging(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL\s+ORDER\s+BY\s+updated_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3`).
		WithArgs("u1", 10, 20).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("n1", "u1", "a", "x", nil, []byte(`[]`), now, now, nil, nil).
			AddRow("n2", "u1", "b", "y", "sum", []byte(`[]`), now, now, nil, nil))

	got, err := repo.ListActive(context.Background(), "u1", 10, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[1].Summary)
	assert.Equal(t, "sum", *got[1].Summary)
}

func TestCountActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+notes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountActive(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestUpdate_NotFoundWhenTrashed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(`(?s)UPDATE\s+notes\s+SET\s+title\s*=\s*\$3,\s*content\s*=\s*\$4,\s*updated_at\s*=\s*\$5\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+deleted_at\s+IS\s+NULL\s+RETURNING`).
		WithArgs("n1", "u1", "t", nil, at).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.Note{ID: "n1", UserID: "u1", Title: "t"}, at)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSoftDelete(t *testing.T) {
	q := `(?s)UPDATE\s+notes\s+SET\s+deleted_at\s*=\s*\$3,\s*deleted_by\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+deleted_at\s+IS\s+NULL`
	at := time.Now()

	t.Run("active note", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1", at).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.SoftDelete(context.Background(), "n1", "u1", at))
	})

	t.Run("already trashed or foreign", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1", at).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.SoftDelete(context.Background(), "n1", "u1", at), common.ErrorNotFound)
	})
}

func TestUpdateSummaryAndTags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectExec(`UPDATE\s+notes\s+SET\s+summary\s*=\s*\$3`).
		WithArgs("n1", "u1", "short", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+notes\s+SET\s+tags\s*=\s*\$3`).
		WithArgs("n1", "u1", []byte(`["go","db"]`), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateSummary(context.Background(), "n1", "u1", "short", at))
	assert.ErrorIs(t, repo.UpdateTags(context.Background(), "n1", "u1", []string{"go", "db"}, at), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTrashed_OrderedByDeletedAt(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	deleted := now.Add(-time.Hour)
	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL\s+ORDER\s+BY\s+deleted_at\s+DESC\s+LIMIT\s+\$2\s+OFFSET\s+\$3`).
		WithArgs("u1", 10, 10).
		WillReturnRows(sqlmock.NewRows(columns).AddRow("n1", "u1", "a", "x", nil, []byte(`[]`), now, now, deleted, "u1"))

	got, err := repo.ListTrashed(context.Background(), "u1", 10, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].DeletedAt)
	assert.True(t, got[0].DeletedAt.Equal(deleted))
	require.NotNil(t, got[0].DeletedBy)
	assert.Equal(t, "u1", *got[0].DeletedBy)
	assert.True(t, got[0].InTrash())
}

func TestListTrashed_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+notes`).WillReturnError(errors.New("db down"))

	_, err := repo.ListTrashed(context.Background(), "u1", 10, 0)
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestCountTrashed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+notes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	n, err := repo.CountTrashed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestRestore(t *testing.T) {
	q := `(?s)UPDATE\s+notes\s+SET\s+deleted_at\s*=\s*NULL,\s*deleted_by\s*=\s*NULL,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL`
	at := time.Now()

	t.Run("trashed note of caller", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1", at).WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Restore(context.Background(), "n1", "u1", at))
	})

	t.Run("active or foreign note", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u2", at).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Restore(context.Background(), "n1", "u2", at), common.ErrNotFoundInTrash)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1", at).WillReturnError(errors.New("boom"))
		err := repo.Restore(context.Background(), "n1", "u1", at)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrNotFoundInTrash)
	})
}

func TestPurge(t *testing.T) {
	q := `(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL$`

	t.Run("trashed note of caller", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Purge(context.Background(), "n1", "u1"))
	})

	t.Run("nothing matched", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WithArgs("n1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Purge(context.Background(), "n1", "u1"), common.ErrNotFoundInTrash)
	})
}

func TestPurgeAllTrashed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NOT\s+NULL$`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeAllTrashed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectQuery(`(?s)DELETE\s+FROM\s+notes\s+WHERE\s+deleted_at\s+IS\s+NOT\s+NULL\s+AND\s+deleted_at\s*<\s*\$1\s+RETURNING\s+id,\s*user_id`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow("n1", "u1").AddRow("n2", "u2"))

	got, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []models.PurgedNote{{ID: "n1", UserID: "u1"}, {ID: "n2", UserID: "u2"}}, got)
}

func TestDeleteExpired_NothingQualifies(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE\s+FROM\s+notes`).WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	got, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

package messages

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T, dialect dbx.Dialect) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db, dialect), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)

	q := `(?s)^INSERT\s+INTO\s+messages\s*\(source,\s*destination,\s*type,\s*content\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`

	msg := &models.Message{Source: uuid.New(), Destination: uuid.New(), Type: 3, Content: []byte("hi")}
	mock.ExpectQuery(q).
		WithArgs(msg.Source.String(), msg.Destination.String(), int64(3), []byte("hi")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.Equal(t, int64(17), msg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_EmptyContentStoredAsEmptyBlob(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t, dbx.DialectSQLite)

	msg := &models.Message{Source: uuid.New(), Destination: uuid.New(), Type: 4}
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+messages.*VALUES\s*\(\?,\s*\?,\s*\?,\s*\?\)`).
		WithArgs(msg.Source.String(), msg.Destination.String(), int64(4), []byte{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.Equal(t, int64(1), msg.ID)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)

	mock.ExpectQuery(`INSERT\s+INTO\s+messages`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Message{})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.ErrorContains(t, err, "db down")
}

func TestDeleteByDestination_SortsByID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)

	q := `(?s)^DELETE\s+FROM\s+messages\s+WHERE\s+destination\s*=\s*\$1\s+RETURNING\s+id,\s*source,\s*type,\s*content\s*$`

	dest := uuid.New()
	a, b := uuid.New(), uuid.New()
	rows := sqlmock.NewRows([]string{"id", "source", "type", "content"}).
		AddRow(int64(9), b.String(), int64(4), []byte("second")).
		AddRow(int64(3), a.String(), int64(3), []byte("first")).
		AddRow(int64(12), a.String(), int64(1), []byte{})
	mock.ExpectQuery(q).WithArgs(dest.String()).WillReturnRows(rows)

	got, err := repo.DeleteByDestination(context.Background(), dest)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, a, got[0].Source)
	assert.Equal(t, dest, got[0].Destination)
	assert.Equal(t, uint8(3), got[0].Type)
	assert.Equal(t, []byte("first"), got[0].Content)

	assert.Equal(t, int64(9), got[1].ID)
	assert.Equal(t, int64(12), got[2].ID)
	assert.Nil(t, got[2].Content)
}

func TestDeleteByDestination_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t, dbx.DialectSQLite)

	mock.ExpectQuery(`DELETE\s+FROM\s+messages\s+WHERE\s+destination\s*=\s*\?`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "source", "type", "content"}))

	got, err := repo.DeleteByDestination(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteByDestination_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)
		mock.ExpectQuery(`DELETE`).WillReturnError(errors.New("db down"))

		_, err := repo.DeleteByDestination(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)
		rows := sqlmock.NewRows([]string{"id", "source", "type", "content"}).
			AddRow("x", "not-a-uuid", int64(1), nil)
		mock.ExpectQuery(`DELETE`).WillReturnRows(rows)

		_, err := repo.DeleteByDestination(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock, _ := newRepoWithMock(t, dbx.DialectPostgres)
		rows := sqlmock.NewRows([]string{"id", "source", "type", "content"}).
			AddRow(int64(1), uuid.NewString(), int64(1), nil).
			RowError(0, errors.New("broken"))
		mock.ExpectQuery(`DELETE`).WillReturnRows(rows)

		_, err := repo.DeleteByDestination(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})
}

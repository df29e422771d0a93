package profile

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SQLiteRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta(`SELECT id, name, public_key, private_key, salt, nonce, created_at`)
	id := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		r, mock := newMock(t)
		mock.ExpectQuery(query).WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "public_key", "private_key", "salt", "nonce", "created_at"}).
				AddRow(id.String(), "alice", []byte("pub"), []byte("priv"), nil, nil, created))

		p, err := r.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.Profile{ID: id, Name: "alice", PublicKey: []byte("pub"), PrivateKey: []byte("priv"), CreatedAt: created}, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		r, mock := newMock(t)
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := r.Get(ctx)
		assert.ErrorIs(t, err, ErrNoProfile)
	})

	t.Run("db error", func(t *testing.T) {
		r, mock := newMock(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("disk I/O error"))

		_, err := r.Get(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoProfile)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO profile (slot, id, name, public_key, private_key, salt, nonce, created_at)`)
	p := &models.Profile{
		ID: uuid.New(), Name: "alice",
		PublicKey: []byte("pub"), PrivateKey: []byte("sealed"),
		Salt: []byte("salt"), Nonce: []byte("nonce"),
		CreatedAt: time.Now(),
	}

	t.Run("ok", func(t *testing.T) {
		r, mock := newMock(t)
		mock.ExpectExec(insert).
			WithArgs(p.ID.String(), "alice", p.PublicKey, p.PrivateKey, p.Salt, p.Nonce, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, r.Create(ctx, p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		r, mock := newMock(t)
		mock.ExpectExec(insert).WillReturnError(errors.New("readonly database"))

		err := r.Create(ctx, p)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrProfileExists)
	})
}

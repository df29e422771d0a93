package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/messages"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newSQLiteStore opens a migrated in-memory database private to the test.
func newSQLiteStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dbx.Open(ctx, dbx.DialectSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(ctx, db))
	return db, m
}

func testKey(seed byte) []byte {
	k := make([]byte, 160)
	for i := range k {
		k[i] = seed
	}
	return k
}

// --- fakes ---

type fakeUsersRepo struct {
	createErrs []error
	created    []*models.User

	getOut    *models.User
	getErr    error
	existsOut bool
	existsErr error
	listOut   []*models.User
	listErr   error
	touchErr  error
	touched   []uuid.UUID
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.existsOut, f.existsErr
}

func (f *fakeUsersRepo) ListExcept(ctx context.Context, id uuid.UUID) ([]*models.User, error) {
	return f.listOut, f.listErr
}

func (f *fakeUsersRepo) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.touched = append(f.touched, id)
	return f.touchErr
}

type fakeMessagesRepo struct {
	createErr error
	nextID    int64
	created   []*models.Message

	drainOut []*models.Message
	drainErr error
}

func (f *fakeMessagesRepo) Create(ctx context.Context, m *models.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	m.ID = f.nextID
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMessagesRepo) DeleteByDestination(ctx context.Context, destination uuid.UUID) ([]*models.Message, error) {
	return f.drainOut, f.drainErr
}

type fakeRM struct {
	users    *fakeUsersRepo
	messages *fakeMessagesRepo
}

func (f *fakeRM) Dialect() dbx.Dialect                         { return dbx.DialectSQLite }
func (f *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRM) Users(db dbx.DBTX) users.Repository           { return f.users }
func (f *fakeRM) Messages(db dbx.DBTX) messages.Repository     { return f.messages }

// Package repomanager provides a concrete RepositoryManager for the
// supported SQL dialects, wiring together repository constructors and
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/migrations"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/messages"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends repositories for one dialect and exposes a
// schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// Messages returns a messages.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// migration directory and goose dialect per driver
var migrationSets = map[dbx.Dialect]struct {
	dir   string
	goose string
}{
	dbx.DialectPostgres: {dir: "postgres", goose: "postgres"},
	dbx.DialectSQLite:   {dir: "sqlite", goose: "sqlite3"},
}

// RunMigrations sets up goose with the embedded migrations of the
// manager's dialect and runs them against the provided database.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	set := migrationSets[m.dialect]

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(set.goose); err != nil {
		return err
	}
	goose.SetLogger(goose.NopLogger())
	if err := gooseUpContext(ctx, db, set.dir); err != nil {
		return err
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect) (RepositoryManager, error) {
	if _, ok := migrationSets[dialect]; !ok {
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}

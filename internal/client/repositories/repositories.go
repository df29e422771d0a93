// Package repositories opens the local profile database and bundles the
// client repositories over it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/msgrelay/internal/client/migrations"
	"github.com/dmitrijs2005/msgrelay/internal/client/repositories/peers"
	"github.com/dmitrijs2005/msgrelay/internal/client/repositories/profile"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/pressly/goose/v3"
)

type Repositories struct {
	DB      *sql.DB
	Profile profile.Repository
	Peers   peers.Repository
}

var gooseMu sync.Mutex

func RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetLogger(goose.NopLogger())
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite profile at dsn and brings its schema up to
// date.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := dbx.Open(ctx, dbx.DialectSQLite, dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("profile migrations: %w", err)
	}

	return &Repositories{
		DB:      db,
		Profile: profile.NewSQLiteRepository(db),
		Peers:   peers.NewSQLiteRepository(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

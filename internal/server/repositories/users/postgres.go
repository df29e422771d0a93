// Package users provides the SQL-backed user directory repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("duplicate user id")

// SQLRepository implements Repository over dbx.DBTX for PostgreSQL and
// SQLite. Queries are written with '?' placeholders and rebound per dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create inserts user as is. It never overwrites: an id collision yields
// ErrDuplicateID.
func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	query := r.dialect.Rebind(
		`INSERT INTO users (id, name, public_key, last_seen, created_at)
		 VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID.String(), user.Name, user.PublicKey, user.LastSeen, user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, user.ID)
		}
		return dbx.Unavailable(err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, name, public_key, last_seen, created_at FROM users
		 WHERE id = ?`)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id.String()).
		Scan(&user.ID, &user.Name, &user.PublicKey, &user.LastSeen, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, dbx.Unavailable(err)
	}
	return user, nil
}

func (r *SQLRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := r.dialect.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&exists); err != nil {
		return false, dbx.Unavailable(err)
	}
	return exists, nil
}

// ListExcept returns every user but id, oldest first.
func (r *SQLRepository) ListExcept(ctx context.Context, id uuid.UUID) ([]*models.User, error) {
	query := r.dialect.Rebind(
		`SELECT id, name, public_key, last_seen, created_at FROM users
		 WHERE id <> ?
		 ORDER BY created_at, id`)

	rows, err := r.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, dbx.Unavailable(err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.PublicKey, &u.LastSeen, &u.CreatedAt); err != nil {
			return nil, dbx.Unavailable(err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Unavailable(err)
	}
	return result, nil
}

// TouchLastSeen records at as the user's last activity. Updating an
// unknown id is not an error.
func (r *SQLRepository) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := r.dialect.Rebind(`UPDATE users SET last_seen = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, at, id.String()); err != nil {
		return dbx.Unavailable(err)
	}
	return nil
}

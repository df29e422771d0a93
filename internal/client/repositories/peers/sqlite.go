package peers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/google/uuid"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, peers []models.Peer) error {
	for _, p := range peers {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO peers (id, name, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
		`, p.ID.String(), p.Name, r.now().UTC())
		if err != nil {
			return fmt.Errorf("failed to upsert peer %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) SetPublicKey(ctx context.Context, id uuid.UUID, key []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE peers SET public_key = ?, updated_at = ? WHERE id = ?`,
		key, r.now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("failed to set key of peer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set key of peer %s: %w", id, err)
	}
	if n == 0 {
		return ErrPeerNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Peer, error) {
	var p models.Peer
	err := r.db.QueryRowContext(ctx, `SELECT id, name, public_key, updated_at FROM peers WHERE id = ?`, id.String()).
		Scan(&p.ID, &p.Name, &p.PublicKey, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get peer %s: %w", id, err)
	}
	return &p, nil
}

func (r *SQLiteRepository) FindByName(ctx context.Context, name string) ([]models.Peer, error) {
	return r.query(ctx, `SELECT id, name, public_key, updated_at FROM peers WHERE name = ? ORDER BY id`, name)
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Peer, error) {
	return r.query(ctx, `SELECT id, name, public_key, updated_at FROM peers ORDER BY name, id`)
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]models.Peer, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list peers: %w", err)
	}
	defer rows.Close()

	var result []models.Peer
	for rows.Next() {
		var p models.Peer
		if err := rows.Scan(&p.ID, &p.Name, &p.PublicKey, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan peer row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate peer rows: %w", err)
	}
	return result, nil
}

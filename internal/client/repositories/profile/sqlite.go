package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, public_key, private_key, salt, nonce, created_at
		FROM profile WHERE slot = 1
	`).Scan(&p.ID, &p.Name, &p.PublicKey, &p.PrivateKey, &p.Salt, &p.Nonce, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile (slot, id, name, public_key, private_key, salt, nonce, created_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID.String(), p.Name, p.PublicKey, p.PrivateKey, p.Salt, p.Nonce, p.CreatedAt.UTC())
	if dbx.IsUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Package messages provides the SQL-backed message queue repository.
package messages

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

// SQLRepository implements Repository over dbx.DBTX for PostgreSQL and
// SQLite.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create appends msg to its destination's queue and sets msg.ID.
func (r *SQLRepository) Create(ctx context.Context, msg *models.Message) error {
	query := r.dialect.Rebind(
		`INSERT INTO messages (source, destination, type, content)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	content := msg.Content
	if content == nil {
		content = []byte{}
	}

	err := r.db.QueryRowContext(ctx, query,
		msg.Source.String(), msg.Destination.String(), int64(msg.Type), content).Scan(&msg.ID)
	if err != nil {
		return dbx.Unavailable(err)
	}
	return nil
}

// DeleteByDestination removes every message queued for destination and
// returns them ordered by id. The select and the delete are one statement,
// so a message can only ever be returned once.
func (r *SQLRepository) DeleteByDestination(ctx context.Context, destination uuid.UUID) ([]*models.Message, error) {
	query := r.dialect.Rebind(
		`DELETE FROM messages
		 WHERE destination = ?
		 RETURNING id, source, type, content`)

	rows, err := r.db.QueryContext(ctx, query, destination.String())
	if err != nil {
		return nil, dbx.Unavailable(err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m := &models.Message{Destination: destination}
		if err := rows.Scan(&m.ID, &m.Source, &m.Type, &m.Content); err != nil {
			return nil, dbx.Unavailable(err)
		}
		if len(m.Content) == 0 {
			m.Content = nil
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Unavailable(err)
	}

	slices.SortFunc(result, func(a, b *models.Message) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

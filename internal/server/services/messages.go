package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/dmitrijs2005/msgrelay/internal/dbx"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService is the per-destination message queue.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, repomanager: m}
}

// EnqueueMessage stores a message for destination. The destination check
// and the insert share one transaction.
func (s *MessageService) EnqueueMessage(ctx context.Context, source, destination uuid.UUID, msgType uint8, content []byte) (*models.Message, error) {
	msg := &models.Message{
		Source:      source,
		Destination: destination,
		Type:        msgType,
		Content:     content,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		exists, err := s.repomanager.Users(tx).Exists(ctx, destination)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", common.ErrTargetNotFound, destination)
		}
		return s.repomanager.Messages(tx).Create(ctx, msg)
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// DrainMessages removes and returns every message queued for destination,
// ordered by id. A message is returned by at most one call.
func (s *MessageService) DrainMessages(ctx context.Context, destination uuid.UUID) ([]*models.Message, error) {
	var result []*models.Message

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.repomanager.Messages(tx).DeleteByDestination(ctx, destination)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

package messages

import (
	"context"

	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) error
	DeleteByDestination(ctx context.Context, destination uuid.UUID) ([]*models.Message, error)
}

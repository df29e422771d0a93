package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListExcept(ctx context.Context, id uuid.UUID) ([]*models.User, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

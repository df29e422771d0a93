package peers

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/google/uuid"
)

var ErrPeerNotFound = errors.New("peer not found")

// Repository caches the server's user list and fetched public keys.
type Repository interface {
	// Upsert inserts or renames peers. Known public keys are kept.
	Upsert(ctx context.Context, peers []models.Peer) error

	// SetPublicKey records the key of a cached peer.
	SetPublicKey(ctx context.Context, id uuid.UUID, key []byte) error

	// GetByID returns a cached peer or ErrPeerNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Peer, error)

	// FindByName returns every cached peer called name.
	FindByName(ctx context.Context, name string) ([]models.Peer, error)

	// List returns all cached peers ordered by name.
	List(ctx context.Context) ([]models.Peer, error)
}

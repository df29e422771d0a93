package profile

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/msgrelay/internal/client/models"
)

var (
	ErrNoProfile     = errors.New("no local profile, sign up first")
	ErrProfileExists = errors.New("a local profile already exists")
)

// Repository stores the single local identity.
type Repository interface {
	// Get returns the profile or ErrNoProfile.
	Get(ctx context.Context) (*models.Profile, error)

	// Create stores p, failing with ErrProfileExists if one is stored.
	Create(ctx context.Context, p *models.Profile) error
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/dmitrijs2005/msgrelay/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/msgrelay/internal/server/repositories/users"
	"github.com/google/uuid"
)

// createUserAttempts bounds the id collision retry loop of CreateUser.
const createUserAttempts = 5

// ErrIDSpaceExhausted is returned when CreateUser keeps colliding with
// existing ids.
var ErrIDSpaceExhausted = errors.New("could not allocate a unique user id")

// UserService is the user directory.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	newID func() (uuid.UUID, error)
	now   func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		newID:       uuid.NewRandom,
		now:         time.Now,
	}
}

// CreateUser registers a user under a fresh random id. An id that is
// already taken is never overwritten; a new one is drawn instead.
func (s *UserService) CreateUser(ctx context.Context, name string, publicKey []byte) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	for range createUserAttempts {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("error generating user id: %w", err)
		}

		now := s.now().UTC()
		user := &models.User{
			ID:        id,
			Name:      name,
			PublicKey: publicKey,
			LastSeen:  now,
			CreatedAt: now,
		}

		err = repo.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, usersrepo.ErrDuplicateID) {
			return nil, fmt.Errorf("error creating user: %w", err)
		}
	}

	return nil, ErrIDSpaceExhausted
}

// LookupUser returns common.ErrorNotFound when id is not registered.
func (s *UserService) LookupUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repomanager.Users(s.db).Exists(ctx, id)
}

// ListUsers returns every user except the one named by excluding.
func (s *UserService) ListUsers(ctx context.Context, excluding uuid.UUID) ([]*models.User, error) {
	return s.repomanager.Users(s.db).ListExcept(ctx, excluding)
}

func (s *UserService) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.repomanager.Users(s.db).TouchLastSeen(ctx, id, at.UTC())
}

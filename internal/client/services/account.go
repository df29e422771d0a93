// Package services contains application services for the relay client.
// This file defines the account service: signing up with the relay and
// unlocking the local identity.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/client/client"
	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/dmitrijs2005/msgrelay/internal/client/repositories/profile"
	"github.com/dmitrijs2005/msgrelay/internal/cryptox"
	"github.com/google/uuid"
)

const saltSize = 16

var ErrWrongPassphrase = errors.New("wrong passphrase")

// Identity is an unlocked profile: ids plus usable key material.
type Identity struct {
	ID         uuid.UUID
	Name       string
	PublicKey  *[cryptox.KeySize]byte
	PrivateKey *[cryptox.KeySize]byte
}

// AccountService manages the local identity.
//
// Contract:
//   - Signup: generate a key pair, register it with the server and store the
//     profile, with the private key sealed under passphrase when one is given.
//   - Profile: return the stored profile without touching key material.
//   - Unlock: decrypt the private key of the stored profile.
type AccountService interface {
	Signup(ctx context.Context, name string, passphrase []byte) (*models.Profile, error)
	Profile(ctx context.Context) (*models.Profile, error)
	Unlock(ctx context.Context, passphrase []byte) (*Identity, error)
}

type accountService struct {
	client  client.Client
	profile profile.Repository
	now     func() time.Time
}

// NewAccountService constructs an AccountService over the relay client and
// the local profile repository.
func NewAccountService(c client.Client, p profile.Repository) AccountService {
	return &accountService{client: c, profile: p, now: time.Now}
}

// Signup refuses to register a second identity from the same profile, so a
// server account is never created that the profile cannot hold.
func (s *accountService) Signup(ctx context.Context, name string, passphrase []byte) (*models.Profile, error) {
	if _, err := s.profile.Get(ctx); err == nil {
		return nil, profile.ErrProfileExists
	} else if !errors.Is(err, profile.ErrNoProfile) {
		return nil, err
	}

	pub, priv, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}

	p := &models.Profile{
		Name:       name,
		PublicKey:  pub[:],
		PrivateKey: priv[:],
		CreatedAt:  s.now(),
	}
	if len(passphrase) > 0 {
		if err := protect(p, passphrase); err != nil {
			return nil, err
		}
	}

	id, err := s.client.Signup(ctx, name, cryptox.PackPublicKey(pub))
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	p.ID = id

	if err := s.profile.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("profile saving error: %w", err)
	}
	return p, nil
}

func (s *accountService) Profile(ctx context.Context) (*models.Profile, error) {
	return s.profile.Get(ctx)
}

func (s *accountService) Unlock(ctx context.Context, passphrase []byte) (*Identity, error) {
	p, err := s.profile.Get(ctx)
	if err != nil {
		return nil, err
	}

	priv := p.PrivateKey
	if p.Protected() {
		key := cryptox.DeriveMasterKey(passphrase, p.Salt)
		priv, err = cryptox.DecryptBytes(p.PrivateKey, p.Nonce, key)
		cryptox.Wipe(key)
		if err != nil {
			return nil, ErrWrongPassphrase
		}
	}
	defer cryptox.Wipe(priv)
	if len(priv) != cryptox.KeySize || len(p.PublicKey) != cryptox.KeySize {
		return nil, fmt.Errorf("profile holds a malformed key pair")
	}

	id := &Identity{
		ID:         p.ID,
		Name:       p.Name,
		PublicKey:  new([cryptox.KeySize]byte),
		PrivateKey: new([cryptox.KeySize]byte),
	}
	copy(id.PublicKey[:], p.PublicKey)
	copy(id.PrivateKey[:], priv)
	return id, nil
}

// protect replaces the private key of p with its ciphertext under a key
// derived from passphrase.
func protect(p *models.Profile, passphrase []byte) error {
	salt, err := cryptox.RandomBytes(saltSize)
	if err != nil {
		return err
	}
	key := cryptox.DeriveMasterKey(passphrase, salt)
	defer cryptox.Wipe(key)

	sealed, nonce, err := cryptox.EncryptBytes(p.PrivateKey, key)
	if err != nil {
		return fmt.Errorf("protect private key: %w", err)
	}
	cryptox.Wipe(p.PrivateKey)
	p.PrivateKey, p.Salt, p.Nonce = sealed, salt, nonce
	return nil
}

// Package models defines the client-side data kept in the local profile.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the local identity registered with the relay.
type Profile struct {
	// ID is the client id assigned by the server at signup.
	ID   uuid.UUID
	Name string

	// PublicKey is the raw X25519 public key.
	PublicKey []byte

	// PrivateKey holds the raw X25519 private key, or its AES-GCM
	// ciphertext when Salt is set.
	PrivateKey []byte
	// Salt is the argon2 salt of the passphrase; empty for an
	// unprotected profile.
	Salt []byte
	// Nonce is the AEAD nonce for PrivateKey.
	Nonce []byte

	CreatedAt time.Time
}

// Protected reports whether the private key is sealed with a passphrase.
func (p *Profile) Protected() bool {
	return len(p.Salt) > 0
}

// Peer is a cached entry of the server's user list.
type Peer struct {
	ID   uuid.UUID
	Name string
	// PublicKey is nil until fetched from the server.
	PublicKey []byte
	UpdatedAt time.Time
}

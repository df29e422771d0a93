// Package models defines server-side records persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered identity. ID, Name and PublicKey are fixed at
// creation; LastSeen moves forward on every authenticated request.
type User struct {
	ID        uuid.UUID
	Name      string
	PublicKey []byte
	LastSeen  time.Time
	CreatedAt time.Time
}

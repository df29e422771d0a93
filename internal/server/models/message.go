package models

import "github.com/google/uuid"

// Message is one queued store-and-forward payload. It exists only until
// its destination drains the queue.
type Message struct {
	ID          int64
	Source      uuid.UUID
	Destination uuid.UUID
	Type        uint8
	Content     []byte
}

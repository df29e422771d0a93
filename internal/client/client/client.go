package client

import (
	"context"

	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/google/uuid"
)

// Client speaks the relay protocol on behalf of the user self. Signup is
// the only call that does not need a registered identity.
type Client interface {
	Signup(ctx context.Context, name string, publicKey protocol.PublicKey) (uuid.UUID, error)
	Users(ctx context.Context, self uuid.UUID) ([]protocol.UserRecord, error)
	PublicKey(ctx context.Context, self, target uuid.UUID) (protocol.PublicKey, error)
	Send(ctx context.Context, self, target uuid.UUID, msgType protocol.MessageType, content []byte) (uint32, error)
	Read(ctx context.Context, self uuid.UUID) ([]protocol.MessageRecord, error)
}

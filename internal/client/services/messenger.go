package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/client/client"
	"github.com/dmitrijs2005/msgrelay/internal/client/models"
	"github.com/dmitrijs2005/msgrelay/internal/client/repositories/peers"
	"github.com/dmitrijs2005/msgrelay/internal/cryptox"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/google/uuid"
)

// Message types used by this client. The relay passes the tag through
// untouched.
const (
	MessageTypeSealedText protocol.MessageType = 3
	MessageTypePlainText  protocol.MessageType = 4
)

var (
	ErrUnknownPeer   = errors.New("no such user")
	ErrAmbiguousPeer = errors.New("several users share this name, use the id")
)

// Received is one message drained from the relay.
type Received struct {
	From      uuid.UUID
	FromName  string
	MessageID uint32
	Type      protocol.MessageType
	// Text is the readable body for text types and the raw content for
	// anything else.
	Text []byte
	// Err is set when a sealed message could not be opened.
	Err error
}

// MessengerService talks to other users through the relay.
//
// Contract:
//   - Users: fetch the user list and refresh the local peer cache.
//   - Peer: resolve a peer reference (id or name) and make sure its public
//     key is known.
//   - Send: deliver text to a peer, sealed to its key unless plain is set.
//   - Receive: drain the caller's queue and open sealed messages.
type MessengerService interface {
	Users(ctx context.Context, self uuid.UUID) ([]models.Peer, error)
	Peer(ctx context.Context, self uuid.UUID, ref string) (*models.Peer, error)
	Send(ctx context.Context, self uuid.UUID, ref string, text []byte, plain bool) (uint32, error)
	Receive(ctx context.Context, id *Identity) ([]Received, error)
}

type messengerService struct {
	client client.Client
	peers  peers.Repository
}

// NewMessengerService constructs a MessengerService over the relay client
// and the local peer cache.
func NewMessengerService(c client.Client, p peers.Repository) MessengerService {
	return &messengerService{client: c, peers: p}
}

func (s *messengerService) Users(ctx context.Context, self uuid.UUID) ([]models.Peer, error) {
	users, err := s.client.Users(ctx, self)
	if err != nil {
		return nil, fmt.Errorf("user list error: %w", err)
	}
	list := make([]models.Peer, 0, len(users))
	for _, u := range users {
		list = append(list, models.Peer{ID: u.ClientID, Name: u.Name})
	}
	if err := s.peers.Upsert(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *messengerService) Peer(ctx context.Context, self uuid.UUID, ref string) (*models.Peer, error) {
	p, err := s.resolve(ctx, self, ref)
	if err != nil {
		return nil, err
	}
	if p.PublicKey != nil {
		return p, nil
	}

	field, err := s.client.PublicKey(ctx, self, p.ID)
	if err != nil {
		return nil, fmt.Errorf("public key error: %w", err)
	}
	key, err := cryptox.UnpackPublicKey(field)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", p.ID, err)
	}
	p.PublicKey = key[:]

	if err := s.peers.SetPublicKey(ctx, p.ID, p.PublicKey); err != nil && !errors.Is(err, peers.ErrPeerNotFound) {
		return nil, err
	}
	return p, nil
}

func (s *messengerService) Send(ctx context.Context, self uuid.UUID, ref string, text []byte, plain bool) (uint32, error) {
	if plain {
		p, err := s.resolve(ctx, self, ref)
		if err != nil {
			return 0, err
		}
		return s.client.Send(ctx, self, p.ID, MessageTypePlainText, text)
	}

	p, err := s.Peer(ctx, self, ref)
	if err != nil {
		return 0, err
	}
	var key [cryptox.KeySize]byte
	copy(key[:], p.PublicKey)
	sealed, err := cryptox.SealMessage(text, &key)
	if err != nil {
		return 0, fmt.Errorf("seal message: %w", err)
	}
	return s.client.Send(ctx, self, p.ID, MessageTypeSealedText, sealed)
}

func (s *messengerService) Receive(ctx context.Context, id *Identity) ([]Received, error) {
	msgs, err := s.client.Read(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("read messages error: %w", err)
	}

	out := make([]Received, 0, len(msgs))
	for _, m := range msgs {
		r := Received{From: m.SourceID, MessageID: m.MessageID, Type: m.Type, Text: m.Content}
		if p, err := s.peers.GetByID(ctx, m.SourceID); err == nil {
			r.FromName = p.Name
		}
		if m.Type == MessageTypeSealedText {
			r.Text, r.Err = cryptox.OpenMessage(m.Content, id.PublicKey, id.PrivateKey)
		}
		out = append(out, r)
	}
	return out, nil
}

// resolve maps ref to a peer. An id is taken as is; a name is looked up in
// the cache, refreshing it from the server once on a miss.
func (s *messengerService) resolve(ctx context.Context, self uuid.UUID, ref string) (*models.Peer, error) {
	if id, err := uuid.Parse(ref); err == nil {
		p, err := s.peers.GetByID(ctx, id)
		if errors.Is(err, peers.ErrPeerNotFound) {
			return &models.Peer{ID: id}, nil
		}
		return p, err
	}

	found, err := s.peers.FindByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		if _, err := s.Users(ctx, self); err != nil {
			return nil, err
		}
		if found, err = s.peers.FindByName(ctx, ref); err != nil {
			return nil, err
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeer, ref)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousPeer, ref)
	}
}

package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

func (d *Dispatcher) signup(ctx context.Context, _ uuid.UUID, req *protocol.SignupRequest) (protocol.Response, error) {
	user, err := d.users.CreateUser(ctx, req.Name, req.PublicKey[:])
	if err != nil {
		return nil, err
	}
	d.logger.Info(ctx, "user registered", "client_id", user.ID, "name", user.Name)
	return &protocol.SignupSuccess{ClientID: user.ID}, nil
}

func (d *Dispatcher) userList(ctx context.Context, caller uuid.UUID, _ *protocol.UserListRequest) (protocol.Response, error) {
	users, err := d.users.ListUsers(ctx, caller)
	if err != nil {
		return nil, err
	}

	resp := &protocol.UserListResponse{Users: make([]protocol.UserRecord, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, protocol.UserRecord{ClientID: u.ID, Name: u.Name})
	}
	return resp, nil
}

func (d *Dispatcher) userPublicKey(ctx context.Context, _ uuid.UUID, req *protocol.UserPublicKeyRequest) (protocol.Response, error) {
	user, err := d.users.LookupUser(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrTargetNotFound, req.TargetID)
		}
		return nil, err
	}

	if len(user.PublicKey) > protocol.PublicKeySize {
		return nil, fmt.Errorf("%w: stored key of user %s is %d bytes", common.ErrEncodingOverflow, user.ID, len(user.PublicKey))
	}
	resp := &protocol.UserPublicKeyResponse{ClientID: user.ID}
	copy(resp.PublicKey[:], user.PublicKey)
	return resp, nil
}

func (d *Dispatcher) sendMessage(ctx context.Context, caller uuid.UUID, req *protocol.SendMessageRequest) (protocol.Response, error) {
	msg, err := d.messages.EnqueueMessage(ctx, caller, req.TargetID, uint8(req.Type), req.Content)
	if err != nil {
		return nil, err
	}

	id, err := wireMessageID(msg)
	if err != nil {
		return nil, err
	}
	return &protocol.MessageSent{ClientID: req.TargetID, MessageID: id}, nil
}

func (d *Dispatcher) readMessages(ctx context.Context, caller uuid.UUID, _ *protocol.ReadMessagesRequest) (protocol.Response, error) {
	msgs, err := d.messages.DrainMessages(ctx, caller)
	if err != nil {
		return nil, err
	}

	resp := &protocol.MessageList{Messages: make([]protocol.MessageRecord, 0, len(msgs))}
	for _, m := range msgs {
		id, err := wireMessageID(m)
		if err != nil {
			return nil, err
		}
		resp.Messages = append(resp.Messages, protocol.MessageRecord{
			SourceID:  m.Source,
			MessageID: id,
			Type:      protocol.MessageType(m.Type),
			Content:   m.Content,
		})
	}
	if len(resp.Messages) > 0 {
		d.logger.Info(ctx, "messages drained", "client_id", caller, "count", len(resp.Messages))
	}
	return resp, nil
}

// wireMessageID narrows a store message id to the 4-byte wire field.
func wireMessageID(m *models.Message) (uint32, error) {
	if m.ID < 0 || m.ID > math.MaxUint32 {
		return 0, fmt.Errorf("%w: message id %d", common.ErrEncodingOverflow, m.ID)
	}
	return uint32(m.ID), nil
}

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/netx"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/google/uuid"
)

// TCPClient implements Client over the binary protocol, one connection per
// request.
type TCPClient struct {
	address string
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCPClient returns a client for the server at address. timeout bounds
// each request unless the context carries an earlier deadline; zero means
// no bound.
func NewTCPClient(address string, timeout time.Duration) *TCPClient {
	return &TCPClient{address: address, timeout: timeout}
}

func (c *TCPClient) Signup(ctx context.Context, name string, publicKey protocol.PublicKey) (uuid.UUID, error) {
	resp, err := c.roundTrip(ctx, uuid.Nil, &protocol.SignupRequest{Name: name, PublicKey: publicKey})
	if err != nil {
		return uuid.Nil, err
	}
	ok, err := expect[*protocol.SignupSuccess](resp)
	if err != nil {
		return uuid.Nil, err
	}
	return ok.ClientID, nil
}

func (c *TCPClient) Users(ctx context.Context, self uuid.UUID) ([]protocol.UserRecord, error) {
	resp, err := c.roundTrip(ctx, self, &protocol.UserListRequest{})
	if err != nil {
		return nil, err
	}
	list, err := expect[*protocol.UserListResponse](resp)
	if err != nil {
		return nil, err
	}
	return list.Users, nil
}

func (c *TCPClient) PublicKey(ctx context.Context, self, target uuid.UUID) (protocol.PublicKey, error) {
	resp, err := c.roundTrip(ctx, self, &protocol.UserPublicKeyRequest{TargetID: target})
	if err != nil {
		return protocol.PublicKey{}, err
	}
	pk, err := expect[*protocol.UserPublicKeyResponse](resp)
	if err != nil {
		return protocol.PublicKey{}, err
	}
	if pk.ClientID != target {
		return protocol.PublicKey{}, fmt.Errorf("%w: key for %s, asked for %s", ErrUnexpectedResponse, pk.ClientID, target)
	}
	return pk.PublicKey, nil
}

func (c *TCPClient) Send(ctx context.Context, self, target uuid.UUID, msgType protocol.MessageType, content []byte) (uint32, error) {
	resp, err := c.roundTrip(ctx, self, &protocol.SendMessageRequest{TargetID: target, Type: msgType, Content: content})
	if err != nil {
		return 0, err
	}
	sent, err := expect[*protocol.MessageSent](resp)
	if err != nil {
		return 0, err
	}
	if sent.ClientID != target {
		return 0, fmt.Errorf("%w: acknowledged for %s, sent to %s", ErrUnexpectedResponse, sent.ClientID, target)
	}
	return sent.MessageID, nil
}

func (c *TCPClient) Read(ctx context.Context, self uuid.UUID) ([]protocol.MessageRecord, error) {
	resp, err := c.roundTrip(ctx, self, &protocol.ReadMessagesRequest{})
	if err != nil {
		return nil, err
	}
	list, err := expect[*protocol.MessageList](resp)
	if err != nil {
		return nil, err
	}
	return list.Messages, nil
}

// roundTrip performs one request/response exchange on a fresh connection.
func (c *TCPClient) roundTrip(ctx context.Context, self uuid.UUID, req protocol.Request) (protocol.Response, error) {
	frame, err := protocol.PackRequest(self, req)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write: %w", ErrUnavailable, err)
	}

	raw, err := netx.ReadFrame(conn, protocol.ResponseHeaderSize, responsePayloadSize, protocol.MaxPayloadSize)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read: %w", ErrUnavailable, err)
	}

	h, err := protocol.ParseResponseHeader(raw)
	if err != nil {
		return nil, err
	}
	resp, err := protocol.DecodeResponse(h.Code, raw[protocol.ResponseHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	if _, failed := resp.(*protocol.ErrorResponse); failed {
		return nil, fmt.Errorf("%w: %s", ErrServerError, req.Code())
	}
	return resp, nil
}

func responsePayloadSize(header []byte) (int, error) {
	h, err := protocol.ParseResponseHeader(header)
	if err != nil {
		return 0, err
	}
	return int(h.PayloadSize), nil
}

// expect narrows resp to T or reports an unexpected response code.
func expect[T protocol.Response](resp protocol.Response) (T, error) {
	typed, ok := resp.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: got %s", ErrUnexpectedResponse, resp.Code())
	}
	return typed, nil
}

// IsUnavailable reports whether err means the server could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

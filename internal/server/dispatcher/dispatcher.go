// Package dispatcher turns one request frame into one response frame: it
// decodes the header and payload, applies the authorization gate, runs the
// handler for the request code and encodes the result.
//
// Every failure, whatever its kind, is answered with the empty
// ErrorResponse; the kind is only written to the log.
package dispatcher

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/dmitrijs2005/msgrelay/internal/logging"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
	"github.com/dmitrijs2005/msgrelay/internal/server/models"
	"github.com/google/uuid"
)

// UserDirectory is the part of the user service the dispatcher needs.
type UserDirectory interface {
	CreateUser(ctx context.Context, name string, publicKey []byte) (*models.User, error)
	LookupUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	ListUsers(ctx context.Context, excluding uuid.UUID) ([]*models.User, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MessageStore is the part of the message service the dispatcher needs.
type MessageStore interface {
	EnqueueMessage(ctx context.Context, source, destination uuid.UUID, msgType uint8, content []byte) (*models.Message, error)
	DrainMessages(ctx context.Context, destination uuid.UUID) ([]*models.Message, error)
}

type handlerFunc func(ctx context.Context, caller uuid.UUID, req protocol.Request) (protocol.Response, error)

type route struct {
	auth   bool
	handle handlerFunc
}

type Dispatcher struct {
	users    UserDirectory
	messages MessageStore
	logger   logging.Logger
	now      func() time.Time
	routes   map[protocol.RequestCode]route
}

func New(users UserDirectory, messages MessageStore, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		users:    users,
		messages: messages,
		logger:   logger.With("module", "dispatcher"),
		now:      time.Now,
	}
	d.routes = map[protocol.RequestCode]route{
		protocol.CodeSignup:        {auth: false, handle: handle(d.signup)},
		protocol.CodeUserList:      {auth: true, handle: handle(d.userList)},
		protocol.CodeUserPublicKey: {auth: true, handle: handle(d.userPublicKey)},
		protocol.CodeSendMessage:   {auth: true, handle: handle(d.sendMessage)},
		protocol.CodeReadMessages:  {auth: true, handle: handle(d.readMessages)},
	}
	return d
}

// handle adapts a handler taking its concrete request type to handlerFunc.
func handle[T protocol.Request](fn func(ctx context.Context, caller uuid.UUID, req T) (protocol.Response, error)) handlerFunc {
	return func(ctx context.Context, caller uuid.UUID, req protocol.Request) (protocol.Response, error) {
		typed, ok := req.(T)
		if !ok {
			return nil, fmt.Errorf("%w: handler expects %T, got %T", common.ErrorInternal, *new(T), req)
		}
		return fn(ctx, caller, typed)
	}
}

// Handle processes one complete request frame: the 23 header bytes followed
// by at least payload_size bytes. Bytes past the declared payload are
// ignored. The returned frame is always complete.
func (d *Dispatcher) Handle(ctx context.Context, frame []byte) []byte {
	h, err := protocol.ParseRequestHeader(frame)
	if err != nil {
		d.logFailure(ctx, err, "client_id", "", "code", 0)
		return protocol.PackError()
	}

	rest := frame[protocol.RequestHeaderSize:]
	if int64(len(rest)) < int64(h.PayloadSize) {
		err := fmt.Errorf("%w: header declares %d payload bytes, %d supplied", common.ErrMalformedPayload, h.PayloadSize, len(rest))
		d.logFailure(ctx, err, "client_id", h.ClientID, "code", uint16(h.Code))
		return protocol.PackError()
	}

	return d.Dispatch(ctx, h, rest[:h.PayloadSize])
}

// Dispatch processes a request whose header has already been decoded.
func (d *Dispatcher) Dispatch(ctx context.Context, h protocol.RequestHeader, payload []byte) []byte {
	start := d.now()

	frame, err := d.safeCall(ctx, h, payload)
	if err != nil {
		d.logFailure(ctx, err, "client_id", h.ClientID, "code", h.Code.String())
		return protocol.PackError()
	}

	d.logger.Debug(ctx, "request handled",
		"client_id", h.ClientID,
		"code", h.Code.String(),
		"duration", d.now().Sub(start),
	)
	return frame
}

// safeCall is the single boundary that turns handler panics into errors.
func (d *Dispatcher) safeCall(ctx context.Context, h protocol.RequestHeader, payload []byte) (frame []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.Error(ctx, "handler panic", "panic", p, "stack", string(debug.Stack()))
			frame = nil
			err = fmt.Errorf("%w: panic: %v", common.ErrorInternal, p)
		}
	}()

	resp, err := d.process(ctx, h, payload)
	if err != nil {
		return nil, err
	}
	return protocol.PackResponse(resp)
}

func (d *Dispatcher) process(ctx context.Context, h protocol.RequestHeader, payload []byte) (protocol.Response, error) {
	r, ok := d.routes[h.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownRequestCode, uint16(h.Code))
	}

	req, err := protocol.DecodeRequest(h.Code, payload)
	if err != nil {
		return nil, err
	}

	if r.auth {
		if err := d.authorize(ctx, h.ClientID); err != nil {
			return nil, err
		}
	}

	return r.handle(ctx, h.ClientID, req)
}

// authorize lets the request through when id names a registered user and
// records the user as active.
func (d *Dispatcher) authorize(ctx context.Context, id uuid.UUID) error {
	ok, err := d.users.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown client %s", common.ErrorUnauthorized, id)
	}

	if err := d.users.TouchLastSeen(ctx, id, d.now()); err != nil {
		d.logger.Warn(ctx, "last seen update failed", "client_id", id, "error", err)
	}
	return nil
}

func (d *Dispatcher) logFailure(ctx context.Context, err error, args ...any) {
	args = append(args, "kind", common.ErrorKind(err), "error", err)
	d.logger.Warn(ctx, "request failed", args...)
}

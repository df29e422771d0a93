package protocol

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/google/uuid"
)

// Request is a typed request payload.
type Request interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Code() RequestCode
}

// requestTypes maps each known request code to a constructor for its
// payload type.
var requestTypes = map[RequestCode]func() Request{
	CodeSignup:        func() Request { return &SignupRequest{} },
	CodeUserList:      func() Request { return &UserListRequest{} },
	CodeUserPublicKey: func() Request { return &UserPublicKeyRequest{} },
	CodeSendMessage:   func() Request { return &SendMessageRequest{} },
	CodeReadMessages:  func() Request { return &ReadMessagesRequest{} },
}

// KnownRequestCode reports whether code names a request this package can
// decode.
func KnownRequestCode(code RequestCode) bool {
	_, ok := requestTypes[code]
	return ok
}

// DecodeRequest decodes payload as the request type registered for code.
func DecodeRequest(code RequestCode, payload []byte) (Request, error) {
	newRequest, ok := requestTypes[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownRequestCode, uint16(code))
	}
	req := newRequest()
	if err := req.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", code, err)
	}
	return req, nil
}

// PackRequest frames req behind a request header carrying clientID.
func PackRequest(clientID uuid.UUID, req Request) ([]byte, error) {
	payload, err := req.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Code(), err)
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload of %d bytes", common.ErrEncodingOverflow, len(payload))
	}
	h := RequestHeader{
		ClientID:    clientID,
		Version:     ClientVersion,
		Code:        req.Code(),
		PayloadSize: int32(len(payload)),
	}
	frame, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(frame, payload...), nil
}

// SignupRequest registers a new user.
type SignupRequest struct {
	Name      string
	PublicKey PublicKey
}

func (r *SignupRequest) Code() RequestCode { return CodeSignup }

func (r *SignupRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, signupPayloadSize)
	if err := putFixedString(b[:NameSize], r.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	copy(b[NameSize:], r.PublicKey[:])
	return b, nil
}

func (r *SignupRequest) UnmarshalBinary(data []byte) error {
	if len(data) < signupPayloadSize {
		return malformed("signup", signupPayloadSize, len(data))
	}
	r.Name = fixedString(data[:NameSize])
	copy(r.PublicKey[:], data[NameSize:signupPayloadSize])
	return nil
}

// UserListRequest asks for every registered user except the caller.
type UserListRequest struct{}

func (r *UserListRequest) Code() RequestCode                { return CodeUserList }
func (r *UserListRequest) MarshalBinary() ([]byte, error)   { return nil, nil }
func (r *UserListRequest) UnmarshalBinary(data []byte) error { return nil }

// UserPublicKeyRequest asks for the public key of TargetID.
type UserPublicKeyRequest struct {
	TargetID uuid.UUID
}

func (r *UserPublicKeyRequest) Code() RequestCode { return CodeUserPublicKey }

func (r *UserPublicKeyRequest) MarshalBinary() ([]byte, error) {
	return bytes.Clone(r.TargetID[:]), nil
}

func (r *UserPublicKeyRequest) UnmarshalBinary(data []byte) error {
	if len(data) < ClientIDSize {
		return malformed("user public key", ClientIDSize, len(data))
	}
	copy(r.TargetID[:], data[:ClientIDSize])
	return nil
}

// SendMessageRequest deposits Content in the queue of TargetID.
//
// The inner content length is independent of the header's payload size:
// exactly that many bytes after the fixed prefix are taken as content and
// any surplus is ignored.
type SendMessageRequest struct {
	TargetID uuid.UUID
	Type     MessageType
	Content  []byte
}

func (r *SendMessageRequest) Code() RequestCode { return CodeSendMessage }

func (r *SendMessageRequest) MarshalBinary() ([]byte, error) {
	if len(r.Content) > MaxPayloadSize-sendMessagePrefixSize {
		return nil, fmt.Errorf("%w: content of %d bytes", common.ErrEncodingOverflow, len(r.Content))
	}
	b := make([]byte, 0, sendMessagePrefixSize+len(r.Content))
	b = append(b, r.TargetID[:]...)
	b = append(b, byte(r.Type))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(r.Content)))
	return append(b, r.Content...), nil
}

func (r *SendMessageRequest) UnmarshalBinary(data []byte) error {
	if len(data) < sendMessagePrefixSize {
		return malformed("send message", sendMessagePrefixSize, len(data))
	}
	copy(r.TargetID[:], data[:ClientIDSize])
	r.Type = MessageType(data[ClientIDSize])
	size := binary.LittleEndian.Uint32(data[ClientIDSize+1:])

	rest := data[sendMessagePrefixSize:]
	if uint64(len(rest)) < uint64(size) {
		return fmt.Errorf("%w: content length %d exceeds the %d bytes available", common.ErrMalformedPayload, size, len(rest))
	}
	r.Content = nil
	if size > 0 {
		r.Content = bytes.Clone(rest[:size])
	}
	return nil
}

// ReadMessagesRequest drains the caller's queue.
type ReadMessagesRequest struct{}

func (r *ReadMessagesRequest) Code() RequestCode                { return CodeReadMessages }
func (r *ReadMessagesRequest) MarshalBinary() ([]byte, error)   { return nil, nil }
func (r *ReadMessagesRequest) UnmarshalBinary(data []byte) error { return nil }

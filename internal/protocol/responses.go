package protocol

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/google/uuid"
)

// Response is a typed response payload.
type Response interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Code() ResponseCode
}

var responseTypes = map[ResponseCode]func() Response{
	CodeSignupSuccess:         func() Response { return &SignupSuccess{} },
	CodeUserListResponse:      func() Response { return &UserListResponse{} },
	CodeUserPublicKeyResponse: func() Response { return &UserPublicKeyResponse{} },
	CodeMessageSent:           func() Response { return &MessageSent{} },
	CodeMessageList:           func() Response { return &MessageList{} },
	CodeError:                 func() Response { return &ErrorResponse{} },
}

// DecodeResponse decodes payload as the response type registered for code.
func DecodeResponse(code ResponseCode, payload []byte) (Response, error) {
	newResponse, ok := responseTypes[code]
	if !ok {
		return nil, fmt.Errorf("%w: response code %d", common.ErrMalformedHeader, uint16(code))
	}
	resp := newResponse()
	if err := resp.UnmarshalBinary(payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", code, err)
	}
	return resp, nil
}

// PackResponse frames resp behind a response header. Either the complete
// frame or an error is returned, never a partial frame.
func PackResponse(resp Response) ([]byte, error) {
	payload, err := resp.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", resp.Code(), err)
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: payload of %d bytes", common.ErrEncodingOverflow, len(payload))
	}
	h := ResponseHeader{
		Version:     ServerVersion,
		Code:        resp.Code(),
		PayloadSize: int32(len(payload)),
	}
	frame, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(frame, payload...), nil
}

// PackError returns a framed ErrorResponse.
func PackError() []byte {
	b := make([]byte, 0, ResponseHeaderSize)
	b = append(b, ServerVersion)
	b = binary.LittleEndian.AppendUint16(b, uint16(CodeError))
	return binary.LittleEndian.AppendUint32(b, 0)
}

// SignupSuccess carries the id assigned to a new user.
type SignupSuccess struct {
	ClientID uuid.UUID
}

func (r *SignupSuccess) Code() ResponseCode { return CodeSignupSuccess }

func (r *SignupSuccess) MarshalBinary() ([]byte, error) {
	return bytes.Clone(r.ClientID[:]), nil
}

func (r *SignupSuccess) UnmarshalBinary(data []byte) error {
	if len(data) < ClientIDSize {
		return malformed("signup success", ClientIDSize, len(data))
	}
	copy(r.ClientID[:], data[:ClientIDSize])
	return nil
}

// UserRecord is one entry of a UserListResponse.
type UserRecord struct {
	ClientID uuid.UUID
	Name     string
}

// UserListResponse lists registered users.
type UserListResponse struct {
	Users []UserRecord
}

func (r *UserListResponse) Code() ResponseCode { return CodeUserListResponse }

func (r *UserListResponse) MarshalBinary() ([]byte, error) {
	b := make([]byte, len(r.Users)*userRecordSize)
	for i, u := range r.Users {
		rec := b[i*userRecordSize : (i+1)*userRecordSize]
		copy(rec, u.ClientID[:])
		if err := putFixedString(rec[ClientIDSize:], u.Name); err != nil {
			return nil, fmt.Errorf("user %s name: %w", u.ClientID, err)
		}
	}
	return b, nil
}

func (r *UserListResponse) UnmarshalBinary(data []byte) error {
	if len(data)%userRecordSize != 0 {
		return fmt.Errorf("%w: user list of %d bytes is not a multiple of %d", common.ErrMalformedPayload, len(data), userRecordSize)
	}
	r.Users = nil
	for off := 0; off < len(data); off += userRecordSize {
		var u UserRecord
		copy(u.ClientID[:], data[off:off+ClientIDSize])
		u.Name = fixedString(data[off+ClientIDSize : off+userRecordSize])
		r.Users = append(r.Users, u)
	}
	return nil
}

// UserPublicKeyResponse carries the public key registered by ClientID.
type UserPublicKeyResponse struct {
	ClientID  uuid.UUID
	PublicKey PublicKey
}

func (r *UserPublicKeyResponse) Code() ResponseCode { return CodeUserPublicKeyResponse }

func (r *UserPublicKeyResponse) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, userPublicKeySize)
	b = append(b, r.ClientID[:]...)
	return append(b, r.PublicKey[:]...), nil
}

func (r *UserPublicKeyResponse) UnmarshalBinary(data []byte) error {
	if len(data) < userPublicKeySize {
		return malformed("user public key", userPublicKeySize, len(data))
	}
	copy(r.ClientID[:], data[:ClientIDSize])
	copy(r.PublicKey[:], data[ClientIDSize:userPublicKeySize])
	return nil
}

// MessageSent acknowledges a queued message.
type MessageSent struct {
	ClientID  uuid.UUID
	MessageID uint32
}

func (r *MessageSent) Code() ResponseCode { return CodeMessageSent }

func (r *MessageSent) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, messageSentSize)
	b = append(b, r.ClientID[:]...)
	return binary.LittleEndian.AppendUint32(b, r.MessageID), nil
}

func (r *MessageSent) UnmarshalBinary(data []byte) error {
	if len(data) < messageSentSize {
		return malformed("message sent", messageSentSize, len(data))
	}
	copy(r.ClientID[:], data[:ClientIDSize])
	r.MessageID = binary.LittleEndian.Uint32(data[ClientIDSize:])
	return nil
}

// MessageRecord is one drained message.
type MessageRecord struct {
	SourceID  uuid.UUID
	MessageID uint32
	Type      MessageType
	Content   []byte
}

// MessageList carries the messages drained from the caller's queue.
type MessageList struct {
	Messages []MessageRecord
}

func (r *MessageList) Code() ResponseCode { return CodeMessageList }

func (r *MessageList) MarshalBinary() ([]byte, error) {
	total := 0
	for _, m := range r.Messages {
		total += messageRecordPrefixSize + len(m.Content)
		if total > MaxPayloadSize {
			return nil, fmt.Errorf("%w: message list exceeds %d bytes", common.ErrEncodingOverflow, MaxPayloadSize)
		}
	}

	b := make([]byte, 0, total)
	for _, m := range r.Messages {
		b = append(b, m.SourceID[:]...)
		b = binary.LittleEndian.AppendUint32(b, m.MessageID)
		b = append(b, byte(m.Type))
		b = binary.LittleEndian.AppendUint32(b, uint32(len(m.Content)))
		b = append(b, m.Content...)
	}
	return b, nil
}

func (r *MessageList) UnmarshalBinary(data []byte) error {
	r.Messages = nil
	for len(data) > 0 {
		if len(data) < messageRecordPrefixSize {
			return malformed("message record", messageRecordPrefixSize, len(data))
		}
		var m MessageRecord
		copy(m.SourceID[:], data[:ClientIDSize])
		m.MessageID = binary.LittleEndian.Uint32(data[ClientIDSize:])
		m.Type = MessageType(data[ClientIDSize+4])
		size := binary.LittleEndian.Uint32(data[ClientIDSize+5:])
		data = data[messageRecordPrefixSize:]

		if uint64(len(data)) < uint64(size) {
			return fmt.Errorf("%w: message %d declares %d bytes, %d left", common.ErrMalformedPayload, m.MessageID, size, len(data))
		}
		if size > 0 {
			m.Content = bytes.Clone(data[:size])
		}
		data = data[size:]
		r.Messages = append(r.Messages, m)
	}
	return nil
}

// ErrorResponse is the single wire-visible failure. It has no payload.
type ErrorResponse struct{}

func (r *ErrorResponse) Code() ResponseCode                { return CodeError }
func (r *ErrorResponse) MarshalBinary() ([]byte, error)   { return nil, nil }
func (r *ErrorResponse) UnmarshalBinary(data []byte) error { return nil }

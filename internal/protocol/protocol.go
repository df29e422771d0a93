// Package protocol implements the msgrelay binary wire format.
//
// Every frame is fixed-layout and little-endian. A request is a 23-byte
// header (client id, version, code, payload size) followed by exactly
// payload-size bytes; a response is a 7-byte header (version, code, payload
// size) followed by the payload. The package is pure: it never performs I/O
// and holds no state, so its functions are safe for concurrent use.
//
// Fixed-width text fields are NUL-padded when encoded and have trailing NUL
// bytes trimmed when decoded. Public keys are opaque and carried verbatim.
package protocol

import (
	"bytes"
	"fmt"
	"math"

	"github.com/dmitrijs2005/msgrelay/internal/common"
)

// Protocol versions written into outgoing frames. Incoming versions are
// carried through but not enforced.
const (
	ServerVersion uint8 = 2
	ClientVersion uint8 = 1
)

// Field widths, in bytes.
const (
	ClientIDSize       = 16
	NameSize           = 255
	PublicKeySize      = 160
	RequestHeaderSize  = ClientIDSize + 1 + 2 + 4
	ResponseHeaderSize = 1 + 2 + 4

	// MaxPayloadSize is the largest payload the signed 4-byte size field
	// of a header can describe.
	MaxPayloadSize = math.MaxInt32
)

const (
	signupPayloadSize       = NameSize + PublicKeySize
	sendMessagePrefixSize   = ClientIDSize + 1 + 4
	userRecordSize          = ClientIDSize + NameSize
	userPublicKeySize       = ClientIDSize + PublicKeySize
	messageSentSize         = ClientIDSize + 4
	messageRecordPrefixSize = ClientIDSize + 4 + 1 + 4
)

// RequestCode identifies the request carried by a request frame.
type RequestCode uint16

const (
	CodeSignup        RequestCode = 1000
	CodeUserList      RequestCode = 1001
	CodeUserPublicKey RequestCode = 1002
	CodeSendMessage   RequestCode = 1003
	CodeReadMessages  RequestCode = 1004
)

func (c RequestCode) String() string {
	switch c {
	case CodeSignup:
		return "signup"
	case CodeUserList:
		return "user_list"
	case CodeUserPublicKey:
		return "user_public_key"
	case CodeSendMessage:
		return "send_message"
	case CodeReadMessages:
		return "read_messages"
	default:
		return fmt.Sprintf("request(%d)", uint16(c))
	}
}

// ResponseCode identifies the response carried by a response frame.
type ResponseCode uint16

const (
	CodeSignupSuccess         ResponseCode = 2000
	CodeUserListResponse      ResponseCode = 2001
	CodeUserPublicKeyResponse ResponseCode = 2002
	CodeMessageSent           ResponseCode = 2003
	CodeMessageList           ResponseCode = 2004
	CodeError                 ResponseCode = 9000
)

func (c ResponseCode) String() string {
	switch c {
	case CodeSignupSuccess:
		return "signup_success"
	case CodeUserListResponse:
		return "user_list"
	case CodeUserPublicKeyResponse:
		return "user_public_key"
	case CodeMessageSent:
		return "message_sent"
	case CodeMessageList:
		return "message_list"
	case CodeError:
		return "error"
	default:
		return fmt.Sprintf("response(%d)", uint16(c))
	}
}

// PublicKey is the opaque 160-byte key blob a user registers with.
type PublicKey [PublicKeySize]byte

// MessageType is the one-byte message tag. The server never interprets it.
type MessageType uint8

// putFixedString writes s into dst and NUL-pads the remainder.
func putFixedString(dst []byte, s string) error {
	if len(s) > len(dst) {
		return fmt.Errorf("%w: %d bytes do not fit a %d-byte field", common.ErrEncodingOverflow, len(s), len(dst))
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

func fixedString(src []byte) string {
	return string(bytes.TrimRight(src, "\x00"))
}

func malformed(what string, want, got int) error {
	return fmt.Errorf("%w: %s needs %d bytes, got %d", common.ErrMalformedPayload, what, want, got)
}

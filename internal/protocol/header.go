package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/google/uuid"
)

// RequestHeader is the fixed 23-byte prefix of every request frame.
type RequestHeader struct {
	ClientID    uuid.UUID
	Version     uint8
	Code        RequestCode
	PayloadSize int32
}

// MarshalBinary encodes the header into its 23-byte wire form.
func (h *RequestHeader) MarshalBinary() ([]byte, error) {
	if h.PayloadSize < 0 {
		return nil, fmt.Errorf("%w: negative payload size %d", common.ErrEncodingOverflow, h.PayloadSize)
	}
	b := make([]byte, 0, RequestHeaderSize)
	b = append(b, h.ClientID[:]...)
	b = append(b, h.Version)
	b = binary.LittleEndian.AppendUint16(b, uint16(h.Code))
	b = binary.LittleEndian.AppendUint32(b, uint32(h.PayloadSize))
	return b, nil
}

// UnmarshalBinary decodes the first 23 bytes of data. The payload size is
// taken verbatim; only negative values are rejected.
func (h *RequestHeader) UnmarshalBinary(data []byte) error {
	if len(data) < RequestHeaderSize {
		return fmt.Errorf("%w: need %d bytes, got %d", common.ErrMalformedHeader, RequestHeaderSize, len(data))
	}
	copy(h.ClientID[:], data[:ClientIDSize])
	h.Version = data[ClientIDSize]
	h.Code = RequestCode(binary.LittleEndian.Uint16(data[ClientIDSize+1:]))
	h.PayloadSize = int32(binary.LittleEndian.Uint32(data[ClientIDSize+3:]))
	if h.PayloadSize < 0 {
		return fmt.Errorf("%w: negative payload size %d", common.ErrMalformedHeader, h.PayloadSize)
	}
	return nil
}

// ParseRequestHeader decodes a request header from data.
func ParseRequestHeader(data []byte) (RequestHeader, error) {
	var h RequestHeader
	if err := h.UnmarshalBinary(data); err != nil {
		return RequestHeader{}, err
	}
	return h, nil
}

// ResponseHeader is the fixed 7-byte prefix of every response frame.
type ResponseHeader struct {
	Version     uint8
	Code        ResponseCode
	PayloadSize int32
}

func (h *ResponseHeader) MarshalBinary() ([]byte, error) {
	if h.PayloadSize < 0 {
		return nil, fmt.Errorf("%w: negative payload size %d", common.ErrEncodingOverflow, h.PayloadSize)
	}
	b := make([]byte, 0, ResponseHeaderSize)
	b = append(b, h.Version)
	b = binary.LittleEndian.AppendUint16(b, uint16(h.Code))
	b = binary.LittleEndian.AppendUint32(b, uint32(h.PayloadSize))
	return b, nil
}

func (h *ResponseHeader) UnmarshalBinary(data []byte) error {
	if len(data) < ResponseHeaderSize {
		return fmt.Errorf("%w: need %d bytes, got %d", common.ErrMalformedHeader, ResponseHeaderSize, len(data))
	}
	h.Version = data[0]
	h.Code = ResponseCode(binary.LittleEndian.Uint16(data[1:]))
	h.PayloadSize = int32(binary.LittleEndian.Uint32(data[3:]))
	if h.PayloadSize < 0 {
		return fmt.Errorf("%w: negative payload size %d", common.ErrMalformedHeader, h.PayloadSize)
	}
	return nil
}

// ParseResponseHeader decodes a response header from data.
func ParseResponseHeader(data []byte) (ResponseHeader, error) {
	var h ResponseHeader
	if err := h.UnmarshalBinary(data); err != nil {
		return ResponseHeader{}, err
	}
	return h, nil
}

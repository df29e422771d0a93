package protocol

import (
	"testing"

	"github.com/dmitrijs2005/msgrelay/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeader_Layout(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	h := RequestHeader{ClientID: id, Version: 1, Code: CodeSendMessage, PayloadSize: 0x01020304}

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, RequestHeaderSize)

	assert.Equal(t, id[:], b[:16])
	assert.Equal(t, byte(1), b[16])
	// 1003 = 0x03EB, little-endian
	assert.Equal(t, []byte{0xEB, 0x03}, b[17:19])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b[19:23])
}

func TestRequestHeader_RoundTrip(t *testing.T) {
	h := RequestHeader{ClientID: uuid.New(), Version: 7, Code: RequestCode(4242), PayloadSize: 1 << 20}

	b, err := h.MarshalBinary()
	require.NoError(t, err)

	got, err := ParseRequestHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestParseRequestHeader_Errors(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		_, err := ParseRequestHeader(make([]byte, RequestHeaderSize-1))
		assert.ErrorIs(t, err, common.ErrMalformedHeader)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseRequestHeader(nil)
		assert.ErrorIs(t, err, common.ErrMalformedHeader)
	})

	t.Run("negative payload size", func(t *testing.T) {
		b := make([]byte, RequestHeaderSize)
		b[19], b[20], b[21], b[22] = 0xff, 0xff, 0xff, 0xff
		_, err := ParseRequestHeader(b)
		assert.ErrorIs(t, err, common.ErrMalformedHeader)
	})

	t.Run("trailing bytes ignored", func(t *testing.T) {
		h := RequestHeader{ClientID: uuid.New(), Version: 1, Code: CodeUserList}
		b, err := h.MarshalBinary()
		require.NoError(t, err)
		got, err := ParseRequestHeader(append(b, 1, 2, 3))
		require.NoError(t, err)
		assert.Equal(t, h, got)
	})
}

func TestRequestHeader_MarshalNegativeSize(t *testing.T) {
	h := RequestHeader{PayloadSize: -1}
	_, err := h.MarshalBinary()
	assert.ErrorIs(t, err, common.ErrEncodingOverflow)
}

func TestResponseHeader_LayoutAndRoundTrip(t *testing.T) {
	h := ResponseHeader{Version: ServerVersion, Code: CodeError, PayloadSize: 5}

	b, err := h.MarshalBinary()
	require.NoError(t, err)
	// 9000 = 0x2328
	assert.Equal(t, []byte{2, 0x28, 0x23, 5, 0, 0, 0}, b)

	got, err := ParseResponseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = ParseResponseHeader(b[:6])
	assert.ErrorIs(t, err, common.ErrMalformedHeader)
}

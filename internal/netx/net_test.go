package netx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a 4-byte little-endian length prefix
func lengthPrefix(h []byte) (int, error) {
	n := int32(binary.LittleEndian.Uint32(h))
	if n < 0 {
		return 0, errors.New("negative")
	}
	return int(n), nil
}

func framed(payload string) []byte {
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	return append(b, payload...)
}

// oneByteReader hands out its data one byte per Read call.
type oneByteReader struct{ data []byte }

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestReadFrame(t *testing.T) {
	t.Run("complete frame", func(t *testing.T) {
		got, err := ReadFrame(bytes.NewReader(framed("hello")), 4, lengthPrefix, 0)
		require.NoError(t, err)
		assert.Equal(t, framed("hello"), got)
	})

	t.Run("fragmented stream", func(t *testing.T) {
		got, err := ReadFrame(&oneByteReader{data: framed("fragments")}, 4, lengthPrefix, 100)
		require.NoError(t, err)
		assert.Equal(t, framed("fragments"), got)
	})

	t.Run("trailing bytes are left unread", func(t *testing.T) {
		r := bytes.NewReader(append(framed("ab"), 'z'))
		got, err := ReadFrame(r, 4, lengthPrefix, 0)
		require.NoError(t, err)
		assert.Equal(t, framed("ab"), got)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("empty payload", func(t *testing.T) {
		got, err := ReadFrame(bytes.NewReader(framed("")), 4, lengthPrefix, 0)
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("nothing to read", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(nil), 4, lengthPrefix, 0)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{1, 0}), 4, lengthPrefix, 0)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("short payload", func(t *testing.T) {
		b := framed("hello")
		_, err := ReadFrame(bytes.NewReader(b[:6]), 4, lengthPrefix, 0)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("missing payload", func(t *testing.T) {
		b := framed("hello")
		_, err := ReadFrame(bytes.NewReader(b[:4]), 4, lengthPrefix, 0)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("over limit", func(t *testing.T) {
		header, err := ReadFrame(bytes.NewReader(framed("too long")), 4, lengthPrefix, 3)
		assert.ErrorIs(t, err, ErrFrameTooLarge)
		assert.Len(t, header, 4)
	})

	t.Run("size error", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}), 4, lengthPrefix, 0)
		assert.EqualError(t, err, "negative")
	})
}

func TestSetDeadline(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	require.NoError(t, SetDeadline(a, 0))
	require.NoError(t, SetDeadline(a, 20*time.Millisecond))

	_, err := a.Read(make([]byte, 1))
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

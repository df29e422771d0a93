// Package netx holds the stream framing helpers shared by the relay server
// and its client: both sides exchange one length-prefixed frame per
// connection.
package netx

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrFrameTooLarge is returned by ReadFrame when the header announces more
// payload than the caller accepts.
var ErrFrameTooLarge = errors.New("frame too large")

// PayloadSizeFunc extracts the payload length from a complete header.
type PayloadSizeFunc func(header []byte) (int, error)

// ReadFrame reads exactly headerSize bytes, asks size how many payload bytes
// follow and reads exactly that many. The returned slice holds header and
// payload back to back. A limit of zero or less disables the size check.
//
// io.EOF is returned only when r ends before the first header byte.
func ReadFrame(r io.Reader, headerSize int, size PayloadSizeFunc, limit int) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	n, err := size(header)
	if err != nil {
		return header, err
	}
	if limit > 0 && n > limit {
		return header, fmt.Errorf("%w: %d bytes announced, limit is %d", ErrFrameTooLarge, n, limit)
	}

	frame := make([]byte, headerSize+n)
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[headerSize:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return header, fmt.Errorf("read payload: %w", err)
	}
	return frame, nil
}

// SetDeadline applies a deadline of now+timeout to conn. A zero timeout
// leaves conn without a deadline.
func SetDeadline(conn net.Conn, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return conn.SetDeadline(time.Now().Add(timeout))
}

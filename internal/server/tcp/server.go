// Package tcp is the connection adapter of the relay: it accepts stream
// connections and exchanges exactly one request frame and one response
// frame on each.
package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/logging"
	"github.com/dmitrijs2005/msgrelay/internal/netx"
	"github.com/dmitrijs2005/msgrelay/internal/protocol"
)

// Handler turns a complete request frame into a complete response frame.
type Handler interface {
	Handle(ctx context.Context, frame []byte) []byte
}

type Server struct {
	address     string
	handler     Handler
	logger      logging.Logger
	maxPayload  int
	connTimeout time.Duration
}

func NewServer(address string, h Handler, l logging.Logger, maxPayload int, connTimeout time.Duration) *Server {
	return &Server{
		address:     address,
		handler:     h,
		logger:      l.With("module", "tcp_server"),
		maxPayload:  maxPayload,
		connTimeout: connTimeout,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "Starting TCP server", "address", listen.Addr().String())
	return s.Serve(ctx, listen)
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// waits for the connections in flight.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	stop := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping TCP server...")
		case <-stop:
		}
		_ = ln.Close()
	}()

	defer func() {
		close(stop)
		wg.Wait()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(context.WithoutCancel(ctx), conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	if err := netx.SetDeadline(conn, s.connTimeout); err != nil {
		s.logger.Warn(ctx, "set deadline failed", "remote", remote, "error", err)
	}

	frame, err := netx.ReadFrame(conn, protocol.RequestHeaderSize, requestPayloadSize, s.maxPayload)
	var resp []byte
	switch {
	case errors.Is(err, io.EOF):
		s.logger.Debug(ctx, "connection closed before request", "remote", remote)
		return
	case err != nil:
		s.logger.Warn(ctx, "request rejected", "remote", remote, "error", err)
		resp = protocol.PackError()
	default:
		resp = s.handler.Handle(ctx, frame)
	}

	// the write gets its own budget, the read may have used up the first one
	if err := netx.SetDeadline(conn, s.connTimeout); err != nil {
		s.logger.Warn(ctx, "set deadline failed", "remote", remote, "error", err)
	}
	if _, err := conn.Write(resp); err != nil {
		s.logger.Warn(ctx, "response write failed", "remote", remote, "error", err)
	}
}

func requestPayloadSize(header []byte) (int, error) {
	h, err := protocol.ParseRequestHeader(header)
	if err != nil {
		return 0, err
	}
	return int(h.PayloadSize), nil
}

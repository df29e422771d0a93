package grpc

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/dmitrijs2005/msgrelay/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newBufferedServer(buf *bytes.Buffer) *GRPCServer {
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return NewGRPCServer("127.0.0.1:0", l, okPinger{}, 0)
}

func TestInterceptor_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	s := newBufferedServer(&buf)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if !strings.Contains(buf.String(), "method=/grpc.health.v1.Health/Check") || !strings.Contains(buf.String(), "code=OK") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestInterceptor_LogsErrorCode(t *testing.T) {
	var buf bytes.Buffer
	s := newBufferedServer(&buf)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	_, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(buf.String(), "code=NotFound") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

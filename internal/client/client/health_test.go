package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/logging"
	servergrpc "github.com/dmitrijs2005/msgrelay/internal/server/grpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type upStore struct{}

func (upStore) PingContext(context.Context) error { return nil }

func TestCheckHealth(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	s := servergrpc.NewGRPCServer("bufnet", logging.Nop{}, upStore{}, 20*time.Millisecond)
	go func() { done <- s.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) })

	require.Eventually(t, func() bool {
		st, err := CheckHealth(context.Background(), "passthrough:///bufnet", dialer)
		return err == nil && st == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCheckHealth_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = CheckHealth(ctx, addr)
	assert.ErrorIs(t, err, ErrUnavailable)
}

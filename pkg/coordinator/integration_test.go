package coordinator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/catalog/store/memory"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/wire"
)

// TestServeRoundTrip exercises the real net.Listen accept loop end to
// end: a TCP client dials in, registers a node and a user, creates a
// file, and reads back a redirect payload — then the connection is
// closed and the coordinator is shut down cleanly.
func TestServeRoundTrip(t *testing.T) {
	limits := config.Default().Limits
	srv := New(&config.ServerConfig{ListenAddress: "127.0.0.1:0", ShutdownTimeout: time.Second}, limits, memory.New(), prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	addr := srv.Addr()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, wire.Write(conn, wire.NewRequest(wire.TypeRegisterSS, "", "127.0.0.1:9001", nil)))
	regResp, err := wire.Read(conn)
	require.NoError(t, err)
	assert.False(t, regResp.IsError())

	require.NoError(t, wire.Write(conn, wire.NewRequest(wire.TypeRegisterClient, "alice", "", nil)))
	ucResp, err := wire.Read(conn)
	require.NoError(t, err)
	assert.False(t, ucResp.IsError())

	require.NoError(t, wire.Write(conn, wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))
	createResp, err := wire.Read(conn)
	require.NoError(t, err)
	require.False(t, createResp.IsError())

	rp, err := wire.ParseRedirectPayload(createResp.Payload)
	require.NoError(t, err)
	assert.Equal(t, 9001, rp.Primary.Port)

	conn.Close()
	cancel()

	select {
	case err := <-serveErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

// TestConnectionCloseReleasesLocks verifies a disconnecting session
// releases its locks (spec.md §4.3's only automatic release path) by
// closing the socket mid-lock and confirming a second connection can
// then acquire the same sentence.
func TestConnectionCloseReleasesLocks(t *testing.T) {
	limits := config.Default().Limits
	srv := New(&config.ServerConfig{ListenAddress: "127.0.0.1:0", ShutdownTimeout: time.Second}, limits, memory.New(), prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)
	addr := srv.Addr()

	setup, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	require.NoError(t, wire.Write(setup, wire.NewRequest(wire.TypeRegisterSS, "", "127.0.0.1:9001", nil)))
	_, err = wire.Read(setup)
	require.NoError(t, err)
	require.NoError(t, wire.Write(setup, wire.NewRequest(wire.TypeRegisterClient, "alice", "", nil)))
	_, err = wire.Read(setup)
	require.NoError(t, err)
	require.NoError(t, wire.Write(setup, wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))
	_, err = wire.Read(setup)
	require.NoError(t, err)
	setup.Close()

	connA, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	require.NoError(t, wire.Write(connA, wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))
	lockResp, err := wire.Read(connA)
	require.NoError(t, err)
	require.False(t, lockResp.IsError())
	connA.Close() // kill the session while it holds the lock

	require.Eventually(t, func() bool {
		connB, err := net.Dial("tcp", addr.String())
		if err != nil {
			return false
		}
		defer connB.Close()
		if err := wire.Write(connB, wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))); err != nil {
			return false
		}
		resp, err := wire.Read(connB)
		return err == nil && !resp.IsError()
	}, 2*time.Second, 10*time.Millisecond, "second session never acquired the lock released by the first's disconnect")
}

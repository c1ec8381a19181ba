package storagenode

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore/badger"
	"github.com/netdoc/netdoc/pkg/wire"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := badger.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(&config.ServerConfig{ListenAddress: "127.0.0.1:0"}, config.Default().Limits, store, prometheus.NewRegistry())
}

func send(s *Server, req *wire.Message) *wire.Message {
	return s.dispatch(context.Background(), req)
}

func mustOk(t *testing.T, m *wire.Message) *wire.Message {
	t.Helper()
	require.False(t, m.IsError(), "expected ok, got error %d: %s", m.ErrorCode, m.ErrorMessage)
	return m
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	s := newTestServer(t)

	resp := mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("Hello world. Second sentence."))))
	assert.Equal(t, "4,29,2", string(resp.Payload))

	resp = mustOk(t, send(s, wire.NewRequest(wire.TypeRead, "alice", "doc.txt", nil)))
	assert.Equal(t, "Hello world. Second sentence.", string(resp.Payload))
}

func TestReadMissingFileFails(t *testing.T) {
	s := newTestServer(t)
	resp := send(s, wire.NewRequest(wire.TypeRead, "alice", "nope.txt", nil))
	assert.True(t, resp.IsError())
}

func TestUndoRestoresPriorContent(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v1"))))
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v2"))))

	resp := mustOk(t, send(s, wire.NewRequest(wire.TypeUndo, "alice", "doc.txt", nil)))
	assert.Equal(t, "v1", string(resp.Payload))
}

func TestCheckpointAndRevert(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v1"))))
	mustOk(t, send(s, wire.NewRequest(wire.TypeCheckpoint, "alice", "doc.txt", []byte("before"))))
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v2"))))

	listResp := mustOk(t, send(s, wire.NewRequest(wire.TypeListCheckpoints, "alice", "doc.txt", nil)))
	assert.Equal(t, "before", string(listResp.Payload))

	revertResp := mustOk(t, send(s, wire.NewRequest(wire.TypeRevert, "alice", "doc.txt", []byte("before"))))
	assert.Equal(t, "v1", string(revertResp.Payload))
}

func TestRevertMissingTagFails(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v1"))))
	resp := send(s, wire.NewRequest(wire.TypeRevert, "alice", "doc.txt", []byte("nope")))
	assert.True(t, resp.IsError())
}

func TestDeleteRemovesContent(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("v1"))))
	mustOk(t, send(s, wire.NewRequest(wire.TypeDelete, "alice", "doc.txt", nil)))

	resp := send(s, wire.NewRequest(wire.TypeRead, "alice", "doc.txt", nil))
	assert.True(t, resp.IsError())
}

func TestInfoReportsCounters(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("One. Two."))))

	resp := mustOk(t, send(s, wire.NewRequest(wire.TypeInfo, "alice", "doc.txt", nil)))
	assert.Equal(t, "2,9,2", string(resp.Payload))
}

func TestListEnumeratesFiles(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "a.txt", []byte("a"))))
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "b.txt", []byte("b"))))

	resp := mustOk(t, send(s, wire.NewRequest(wire.TypeList, "alice", "", nil)))
	assert.Contains(t, string(resp.Payload), "a.txt")
	assert.Contains(t, string(resp.Payload), "b.txt")
}

func TestStreamIsEquivalentToRead(t *testing.T) {
	s := newTestServer(t)
	mustOk(t, send(s, wire.NewRequest(wire.TypeWrite, "alice", "doc.txt", []byte("streamed content"))))

	resp := mustOk(t, send(s, wire.NewRequest(wire.TypeStream, "alice", "doc.txt", nil)))
	assert.Equal(t, "streamed content", string(resp.Payload))
}

func TestUnknownTypeFails(t *testing.T) {
	s := newTestServer(t)
	resp := send(s, wire.NewRequest(wire.Type("BOGUS"), "alice", "doc.txt", nil))
	assert.True(t, resp.IsError())
}

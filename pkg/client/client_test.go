package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/catalog/store/memory"
	"github.com/netdoc/netdoc/pkg/client"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/coordinator"
	"github.com/netdoc/netdoc/pkg/storagenode"
	"github.com/netdoc/netdoc/pkg/storagenode/blobstore/badger"
	"github.com/netdoc/netdoc/pkg/wire"
)

// newTestCluster starts one coordinator and one storage node, each on an
// ephemeral loopback port, and registers the storage node against the
// coordinator exactly the way netdoc-storaged would at startup.
func newTestCluster(t *testing.T) (coordAddr string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	limits := config.Default().Limits
	coord := coordinator.New(&config.ServerConfig{ListenAddress: "127.0.0.1:0", ShutdownTimeout: time.Second}, limits, memory.New(), prometheus.NewRegistry())
	go coord.Serve(ctx)
	coordAddr = coord.Addr().String()

	store, err := badger.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	node := storagenode.New(&config.ServerConfig{ListenAddress: "127.0.0.1:0", ShutdownTimeout: time.Second}, limits, store, prometheus.NewRegistry())
	go node.Serve(ctx)
	nodeAddr := node.Addr().String()

	reg, err := client.Dial(coordAddr, "")
	require.NoError(t, err)
	defer reg.Close()
	_, err = reg.RegisterStorageNode(context.Background(), nodeAddr)
	require.NoError(t, err)

	return coordAddr
}

func TestCreateLookupEditCommitRoundTrip(t *testing.T) {
	coordAddr := newTestCluster(t)

	alice, err := client.Dial(coordAddr, "alice")
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Register(context.Background()))

	_, err = alice.Create(context.Background(), "doc.txt")
	require.NoError(t, err)

	ep, err := alice.Lookup(context.Background(), "doc.txt", "write")
	require.NoError(t, err)

	require.NoError(t, alice.EditSentence(context.Background(), "doc.txt", 0, "First sentence replaced."))

	content, err := alice.Read(context.Background(), "doc.txt", *ep)
	require.NoError(t, err)
	assert.Equal(t, "First sentence replaced.", string(content))
}

func TestAccessGrantFlow(t *testing.T) {
	coordAddr := newTestCluster(t)

	alice, err := client.Dial(coordAddr, "alice")
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Register(context.Background()))
	_, err = alice.Create(context.Background(), "shared.txt")
	require.NoError(t, err)

	bob, err := client.Dial(coordAddr, "bob")
	require.NoError(t, err)
	defer bob.Close()
	require.NoError(t, bob.Register(context.Background()))

	_, err = bob.Lookup(context.Background(), "shared.txt", "read")
	require.Error(t, err, "bob should be denied before any grant")

	require.NoError(t, alice.AddAccess(context.Background(), "shared.txt", "bob", wire.PermRead))

	_, err = bob.Lookup(context.Background(), "shared.txt", "read")
	require.NoError(t, err)
}

func TestCheckpointRevertRoundTrip(t *testing.T) {
	coordAddr := newTestCluster(t)

	alice, err := client.Dial(coordAddr, "alice")
	require.NoError(t, err)
	defer alice.Close()
	require.NoError(t, alice.Register(context.Background()))
	_, err = alice.Create(context.Background(), "doc.txt")
	require.NoError(t, err)

	ep, err := alice.Lookup(context.Background(), "doc.txt", "write")
	require.NoError(t, err)
	require.NoError(t, alice.EditSentence(context.Background(), "doc.txt", 0, "Version one."))

	require.NoError(t, alice.Checkpoint(context.Background(), "doc.txt", "v1"))

	require.NoError(t, alice.EditSentence(context.Background(), "doc.txt", 0, "Version two."))
	content, err := alice.Read(context.Background(), "doc.txt", *ep)
	require.NoError(t, err)
	assert.Equal(t, "Version two.", string(content))

	require.NoError(t, alice.Revert(context.Background(), "doc.txt", "v1"))
	content, err = alice.Read(context.Background(), "doc.txt", *ep)
	require.NoError(t, err)
	assert.Equal(t, "Version one.", string(content))
}

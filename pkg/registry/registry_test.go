package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/registry"
)

func TestRegisterAssignsMonotonicIDs(t *testing.T) {
	r := registry.New(0)

	id1, err := r.Register("10.0.0.1:9000")
	require.NoError(t, err)
	id2, err := r.Register("10.0.0.2:9000")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)

	n, ok := r.Get(id1)
	require.True(t, ok)
	assert.True(t, n.Alive)
	assert.Equal(t, 0, n.FileCount)
}

func TestRegisterRefusedAtCapacity(t *testing.T) {
	r := registry.New(1)
	_, err := r.Register("10.0.0.1:9000")
	require.NoError(t, err)

	_, err = r.Register("10.0.0.2:9000")
	require.Error(t, err)
	assert.Equal(t, protoerr.StorageUnavailable, protoerr.CodeOf(err))
}

func TestPlacePrimaryPicksLeastLoadedThenSmallestID(t *testing.T) {
	r := registry.New(0)
	id1, _ := r.Register("n1:9000")
	id2, _ := r.Register("n2:9000")

	// Both start at file_count=0; smallest id wins the tie.
	primary, err := r.PlacePrimary()
	require.NoError(t, err)
	assert.Equal(t, id1, primary.ID)

	require.NoError(t, r.IncrementFileCount(id1))
	require.NoError(t, r.IncrementFileCount(id1))
	require.NoError(t, r.IncrementFileCount(id2))

	primary, err = r.PlacePrimary()
	require.NoError(t, err)
	assert.Equal(t, id2, primary.ID)
}

func TestPlacePrimaryNoLiveNode(t *testing.T) {
	r := registry.New(0)
	_, err := r.PlacePrimary()
	require.Error(t, err)
	assert.Equal(t, protoerr.StorageUnavailable, protoerr.CodeOf(err))
}

func TestPlacePrimarySkipsDeadNodes(t *testing.T) {
	r := registry.New(0)
	id1, _ := r.Register("n1:9000")
	id2, _ := r.Register("n2:9000")
	require.NoError(t, r.SetAlive(id1, false))

	primary, err := r.PlacePrimary()
	require.NoError(t, err)
	assert.Equal(t, id2, primary.ID)
}

func TestPlaceReplicaRequiresSecondAliveNode(t *testing.T) {
	r := registry.New(0)
	id1, _ := r.Register("n1:9000")

	_, ok := r.PlaceReplica(id1)
	assert.False(t, ok)

	id2, _ := r.Register("n2:9000")
	replica, ok := r.PlaceReplica(id1)
	require.True(t, ok)
	assert.Equal(t, id2, replica.ID)
}

func TestDecrementFileCountNeverGoesNegative(t *testing.T) {
	r := registry.New(0)
	id, _ := r.Register("n1:9000")

	require.NoError(t, r.DecrementFileCount(id))

	n, _ := r.Get(id)
	assert.Equal(t, 0, n.FileCount)
}

func TestHeartbeatRevivesNode(t *testing.T) {
	r := registry.New(0)
	id, _ := r.Register("n1:9000")
	require.NoError(t, r.SetAlive(id, false))

	n, _ := r.Get(id)
	assert.False(t, n.Alive)

	require.NoError(t, r.Heartbeat(id))
	n, _ = r.Get(id)
	assert.True(t, n.Alive)
}

func TestAliveCount(t *testing.T) {
	r := registry.New(0)
	id1, _ := r.Register("n1:9000")
	_, _ = r.Register("n2:9000")
	require.NoError(t, r.SetAlive(id1, false))

	assert.Equal(t, 1, r.AliveCount())
}

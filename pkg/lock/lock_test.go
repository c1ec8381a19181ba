package lock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/lock"
	"github.com/netdoc/netdoc/pkg/protoerr"
)

func TestAcquireFreshLock(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("doc.txt", 0, "alice", "sess-1"))

	holder, ok := tbl.HolderOf("doc.txt", 0)
	require.True(t, ok)
	assert.Equal(t, "alice", holder.HolderUser)
	assert.Equal(t, "sess-1", holder.HolderSession)
}

func TestAcquireIsIdempotentForSameSession(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("doc.txt", 0, "alice", "sess-1"))
	require.NoError(t, tbl.Acquire("doc.txt", 0, "alice", "sess-1"))
	assert.Equal(t, 1, tbl.Count())
}

func TestAcquireConflictsAcrossSessions(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("doc.txt", 0, "alice", "sess-1"))

	err := tbl.Acquire("doc.txt", 0, "alice", "sess-2")
	require.Error(t, err)
	assert.Equal(t, protoerr.Locked, protoerr.CodeOf(err))
	assert.Contains(t, err.Error(), "alice")
}

func TestAcquireRefusedWhenFull(t *testing.T) {
	tbl := lock.New(1)
	require.NoError(t, tbl.Acquire("a.txt", 0, "alice", "sess-1"))

	err := tbl.Acquire("b.txt", 0, "bob", "sess-2")
	require.Error(t, err)
	assert.Equal(t, protoerr.ServerError, protoerr.CodeOf(err))
}

func TestReleaseRequiresExactMatch(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("doc.txt", 0, "alice", "sess-1"))

	// Wrong user/session: silent no-op, lock remains.
	tbl.Release("doc.txt", 0, "bob", "sess-2")
	_, ok := tbl.HolderOf("doc.txt", 0)
	assert.True(t, ok)

	tbl.Release("doc.txt", 0, "alice", "sess-1")
	_, ok = tbl.HolderOf("doc.txt", 0)
	assert.False(t, ok)
}

func TestReleaseAbsentLockIsNoop(t *testing.T) {
	tbl := lock.New(0)
	tbl.Release("ghost.txt", 3, "alice", "sess-1")
}

func TestReleaseSessionClearsAllLocksForThatSession(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("a.txt", 0, "alice", "sess-1"))
	require.NoError(t, tbl.Acquire("a.txt", 1, "alice", "sess-1"))
	require.NoError(t, tbl.Acquire("b.txt", 0, "bob", "sess-2"))

	n := tbl.ReleaseSession("sess-1")
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, tbl.Count())

	_, ok := tbl.HolderOf("b.txt", 0)
	assert.True(t, ok)
}

func TestReleaseSessionOfUnknownSessionIsNoop(t *testing.T) {
	tbl := lock.New(0)
	assert.Equal(t, 0, tbl.ReleaseSession("ghost-session"))
}

func TestSentenceIndexIsOpaqueAcrossFiles(t *testing.T) {
	tbl := lock.New(0)
	require.NoError(t, tbl.Acquire("a.txt", 5, "alice", "sess-1"))
	require.NoError(t, tbl.Acquire("b.txt", 5, "bob", "sess-2"))
	assert.Equal(t, 2, tbl.Count())
}

package coordinator

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netdoc/netdoc/pkg/catalog/store/memory"
	"github.com/netdoc/netdoc/pkg/config"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/netdoc/netdoc/pkg/wire"
)

// newTestServer builds a Server backed by the in-memory catalog store
// and an isolated metrics registry, bypassing net.Listen entirely —
// these tests exercise dispatch() directly, the same code path
// handleConnection drives per frame.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	limits := config.Default().Limits
	s := New(&config.ServerConfig{ListenAddress: "127.0.0.1:0"}, limits, memory.New(), prometheus.NewRegistry())
	return s
}

func send(s *Server, session string, req *wire.Message) *wire.Message {
	return s.dispatch(context.Background(), session, req)
}

func mustOk(t *testing.T, m *wire.Message) *wire.Message {
	t.Helper()
	require.False(t, m.IsError(), "expected success, got %s: %s", m.ErrorCode, m.ErrorMessage)
	return m
}

func registerNode(t *testing.T, s *Server, address string) {
	t.Helper()
	mustOk(t, send(s, "sys", wire.NewRequest(wire.TypeRegisterSS, "", address, nil)))
}

func registerUser(t *testing.T, s *Server, user string) {
	t.Helper()
	mustOk(t, send(s, "sys", wire.NewRequest(wire.TypeRegisterClient, user, "", nil)))
}

// Scenario 1 (spec.md §8): two nodes register; alice creates doc.txt
// landing on primary=1/replica=2; bob (no grant) gets permission_denied
// on LOOKUP; after ADDACCESS, bob's LOOKUP succeeds and names both
// endpoints.
func TestScenario1_CreateAndGrantedLookup(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerNode(t, s, "127.0.0.1:9002")
	registerUser(t, s, "alice")
	registerUser(t, s, "bob")

	createResp := mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))
	rp, err := wire.ParseRedirectPayload(createResp.Payload)
	require.NoError(t, err)
	assert.Equal(t, 9001, rp.Primary.Port)
	require.NotNil(t, rp.Replica)
	assert.Equal(t, 9002, rp.Replica.Port)

	denied := send(s, "sess-bob", wire.NewRequest(wire.TypeLookup, "bob", "doc.txt", []byte("read")))
	require.True(t, denied.IsError())
	assert.Equal(t, protoerr.PermissionDenied, denied.ErrorCode)

	grantResp := mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeAddAccess, "alice", "doc.txt",
		[]byte(fmt.Sprintf("bob|%d", 1)))))
	_ = grantResp

	lookup := mustOk(t, send(s, "sess-bob", wire.NewRequest(wire.TypeLookup, "bob", "doc.txt", []byte("read"))))
	rp2, err := wire.ParseRedirectPayload(lookup.Payload)
	require.NoError(t, err)
	assert.Equal(t, 9001, rp2.Primary.Port)
	require.NotNil(t, rp2.Replica)
	assert.Equal(t, 9002, rp2.Replica.Port)
}

// Scenario 2: WRITE_LOCK by session A then a conflicting WRITE_LOCK by
// session B on the same sentence fails `locked`; A's WRITE_COMMIT
// releases it; B's retry then succeeds.
func TestScenario2_LockConflictThenCommitReleases(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))

	mustOk(t, send(s, "session-A", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))

	conflict := send(s, "session-B", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0")))
	require.True(t, conflict.IsError())
	assert.Equal(t, protoerr.Locked, conflict.ErrorCode)

	mustOk(t, send(s, "session-A", wire.NewRequest(wire.TypeCommit, "alice", "doc.txt", []byte("0"))))

	mustOk(t, send(s, "session-B", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))
}

// Scenario 3: placement moves to a newly registered node once it
// becomes the least-loaded alive node.
func TestScenario3_PlacementMovesToNewNode(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")

	for _, name := range []string{"a", "b", "c"} {
		resp := mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", name, nil)))
		rp, err := wire.ParseRedirectPayload(resp.Payload)
		require.NoError(t, err)
		assert.Equal(t, 9001, rp.Primary.Port)
	}

	registerNode(t, s, "127.0.0.1:9002")

	resp := mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "d", nil)))
	rp, err := wire.ParseRedirectPayload(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, 9002, rp.Primary.Port)
}

// Scenario 4: DELETE after a grant removes the grant; VIEW for the
// former grantee no longer lists the file.
func TestScenario4_DeleteCascadesGrant(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	registerUser(t, s, "bob")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeAddAccess, "alice", "doc.txt", []byte("bob|1"))))

	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeDelete, "alice", "doc.txt", nil)))

	view := mustOk(t, send(s, "sess-bob", wire.NewRequest(wire.TypeView, "bob", "", nil)))
	assert.NotContains(t, string(view.Payload), "doc.txt")
}

// Scenario 5: a session holding a lock is killed (its session simply
// releases via ReleaseSession, standing in for the socket-close path
// handleConnection's deferred cleanup drives); another session's
// WRITE_LOCK on the same sentence then succeeds.
func TestScenario5_SessionDeathReleasesLock(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))

	mustOk(t, send(s, "session-A", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))

	s.locks.ReleaseSession("session-A")

	mustOk(t, send(s, "session-B", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))
}

// Scenario 6: an unregistered user can REGISTER_CLIENT; ADDACCESS
// naming an unregistered target fails user_not_found.
func TestScenario6_RegisterClientAndUnknownGranteeFails(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))

	mustOk(t, send(s, "sess-carol", wire.NewRequest(wire.TypeRegisterClient, "carol", "", nil)))

	resp := send(s, "sess-alice", wire.NewRequest(wire.TypeAddAccess, "alice", "doc.txt", []byte("dave|2")))
	require.True(t, resp.IsError())
	assert.Equal(t, protoerr.UserNotFound, resp.ErrorCode)
}

// Invariant: at most one SentenceLock exists per (name, sentence_index);
// repeated WRITE_LOCK from the same session never grows the table.
func TestInvariant_WriteLockIdempotentForSameSession(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))

	for i := 0; i < 5; i++ {
		mustOk(t, send(s, "session-A", wire.NewRequest(wire.TypeWriteLock, "alice", "doc.txt", []byte("0"))))
	}
	assert.Equal(t, 1, s.locks.Count())
}

// Law: ADDACCESS twice for the same (file, user) with different perms
// leaves only the latter.
func TestLaw_AddAccessUpsertKeepsLatestPerms(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")
	registerUser(t, s, "bob")
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))

	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeAddAccess, "alice", "doc.txt", []byte("bob|1"))))
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeAddAccess, "alice", "doc.txt", []byte("bob|2"))))

	grant, ok, err := s.store.GetGrant(context.Background(), "doc.txt", "bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, int(grant.Perms))
}

// Boundary: creating a file with zero nodes alive fails storage_unavailable,
// and a later registration does not retroactively succeed that create.
func TestBoundary_CreateWithNoLiveNodeFails(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "alice")

	resp := send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil))
	require.True(t, resp.IsError())
	assert.Equal(t, protoerr.StorageUnavailable, resp.ErrorCode)

	registerNode(t, s, "127.0.0.1:9001")

	// The earlier failed attempt left no row behind, so the same name
	// can now be created successfully — the registration did not
	// retroactively complete the first, rejected call.
	mustOk(t, send(s, "sess-alice", wire.NewRequest(wire.TypeCreate, "alice", "doc.txt", nil)))
}

// Law: name validation (spec.md §4.1/§7 — non-empty, within the length
// limit, no '/' or '..') applies to every name-bearing op, not just
// CREATE. A malformed name on LOOKUP must fail invalid_param, not
// file_not_found — dispatch's nameBearingTypes check runs before any
// handler ever reaches s.store.GetFile.
func TestLaw_NameValidationAppliesToEveryNameBearingOp(t *testing.T) {
	s := newTestServer(t)
	registerNode(t, s, "127.0.0.1:9001")
	registerUser(t, s, "alice")

	resp := send(s, "sess-alice", wire.NewRequest(wire.TypeLookup, "alice", "../etc/passwd", []byte("read")))
	require.True(t, resp.IsError())
	assert.Equal(t, protoerr.InvalidParam, resp.ErrorCode)

	resp = send(s, "sess-alice", wire.NewRequest(wire.TypeDelete, "alice", "nested/name.txt", nil))
	require.True(t, resp.IsError())
	assert.Equal(t, protoerr.InvalidParam, resp.ErrorCode)
}

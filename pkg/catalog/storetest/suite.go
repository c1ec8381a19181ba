// Package storetest is a conformance suite shared by every catalog.Store
// implementation (store/memory, store/postgres), grounded on the
// teacher's pkg/metadata/storetest package: one factory-driven suite run
// by each implementation's own _test.go file so both backends are held
// to the same contract.
package storetest

import (
	"testing"
	"time"

	"github.com/netdoc/netdoc/pkg/catalog"
	"github.com/netdoc/netdoc/pkg/protoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns a fresh, empty catalog.Store for one test. t.Cleanup
// should be used by the factory for any teardown (closing a test database,
// for example).
type StoreFactory func(t *testing.T) catalog.Store

// Run exercises every catalog.Store method against a fresh instance.
func Run(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Files", func(t *testing.T) { runFileTests(t, factory) })
	t.Run("Users", func(t *testing.T) { runUserTests(t, factory) })
	t.Run("Grants", func(t *testing.T) { runGrantTests(t, factory) })
	t.Run("Requests", func(t *testing.T) { runRequestTests(t, factory) })
	t.Run("Checkpoints", func(t *testing.T) { runCheckpointTests(t, factory) })
}

func runFileTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		entry := &catalog.FileEntry{Name: "doc.txt", Owner: "alice", PrimaryNodeID: 1}
		require.NoError(t, s.CreateFile(ctx, entry))

		got, err := s.GetFile(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Owner)
		assert.Equal(t, uint64(1), got.PrimaryNodeID)
		assert.False(t, got.HasReplica())
	})

	t.Run("CreateDuplicateFails", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		entry := &catalog.FileEntry{Name: "doc.txt", Owner: "alice"}
		require.NoError(t, s.CreateFile(ctx, entry))

		err := s.CreateFile(ctx, entry)
		require.Error(t, err)
		assert.Equal(t, protoerr.FileExists, protoerr.CodeOf(err))
	})

	t.Run("GetMissingFails", func(t *testing.T) {
		s := factory(t)
		_, err := s.GetFile(t.Context(), "ghost.txt")
		require.Error(t, err)
		assert.Equal(t, protoerr.FileNotFound, protoerr.CodeOf(err))
	})

	t.Run("ListFiles", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "a.txt", Owner: "alice"}))
		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "b.txt", Owner: "bob"}))

		all, err := s.ListFiles(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("TouchModifiedUpdatesCounters", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "doc.txt", Owner: "alice"}))
		require.NoError(t, s.TouchModified(ctx, "doc.txt", &catalog.Counters{Words: 2, Chars: 9, Sentences: 1}))

		got, err := s.GetFile(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Equal(t, 2, got.WordCount)
		assert.Equal(t, 1, got.SentenceCount)
		assert.WithinDuration(t, time.Now(), got.ModifiedAt, 5*time.Second)
	})

	t.Run("TouchAccessedMissingFails", func(t *testing.T) {
		s := factory(t)
		require.Error(t, s.TouchAccessed(t.Context(), "ghost.txt"))
	})

	t.Run("DeleteFileCascades", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "doc.txt", Owner: "alice"}))
		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "doc.txt", Grantee: "bob", Perms: catalog.PermRead}))
		require.NoError(t, s.CreateCheckpoint(ctx, &catalog.Checkpoint{FileName: "doc.txt", Tag: "v1", BlobLocator: "loc1"}))
		require.NoError(t, s.CreateAccessRequest(ctx, &catalog.AccessRequest{ID: "req1", FileName: "doc.txt", Requester: "carol", Status: catalog.RequestPending}))

		require.NoError(t, s.DeleteFile(ctx, "doc.txt"))

		_, err := s.GetFile(ctx, "doc.txt")
		require.Error(t, err)

		_, ok, err := s.GetGrant(ctx, "doc.txt", "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		cps, err := s.ListCheckpoints(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Empty(t, cps)

		pending, err := s.ListPendingRequestsForOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("DeleteMissingFails", func(t *testing.T) {
		s := factory(t)
		err := s.DeleteFile(t.Context(), "ghost.txt")
		require.Error(t, err)
		assert.Equal(t, protoerr.FileNotFound, protoerr.CodeOf(err))
	})
}

func runUserTests(t *testing.T, factory StoreFactory) {
	t.Run("RegisterAndExists", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		ok, err := s.UserExists(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.RegisterUser(ctx, "alice"))

		ok, err = s.UserExists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("RegisterTwiceIsNoop", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()
		require.NoError(t, s.RegisterUser(ctx, "alice"))
		require.NoError(t, s.RegisterUser(ctx, "alice"))
	})
}

func runGrantTests(t *testing.T, factory StoreFactory) {
	t.Run("UpsertReplaces", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "doc.txt", Grantee: "bob", Perms: catalog.PermRead}))
		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "doc.txt", Grantee: "bob", Perms: catalog.PermReadWrite}))

		got, ok, err := s.GetGrant(ctx, "doc.txt", "bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, catalog.PermReadWrite, got.Perms)
	})

	t.Run("RemoveAbsentIsNotError", func(t *testing.T) {
		s := factory(t)
		require.NoError(t, s.RemoveGrant(t.Context(), "doc.txt", "bob"))
	})

	t.Run("ListGrantsForUser", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "a.txt", Grantee: "bob", Perms: catalog.PermRead}))
		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "b.txt", Grantee: "bob", Perms: catalog.PermWrite}))
		require.NoError(t, s.UpsertGrant(ctx, &catalog.AccessGrant{FileName: "a.txt", Grantee: "carol", Perms: catalog.PermRead}))

		grants, err := s.ListGrantsForUser(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, grants, 2)
	})
}

func runRequestTests(t *testing.T, factory StoreFactory) {
	t.Run("PendingForOwnerOnly", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "doc.txt", Owner: "alice"}))
		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "other.txt", Owner: "zed"}))
		require.NoError(t, s.CreateAccessRequest(ctx, &catalog.AccessRequest{ID: "r1", FileName: "doc.txt", Requester: "bob", Status: catalog.RequestPending}))
		require.NoError(t, s.CreateAccessRequest(ctx, &catalog.AccessRequest{ID: "r2", FileName: "other.txt", Requester: "bob", Status: catalog.RequestPending}))

		pending, err := s.ListPendingRequestsForOwner(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "r1", pending[0].ID)
	})

	t.Run("NonPendingExcluded", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateFile(ctx, &catalog.FileEntry{Name: "doc.txt", Owner: "alice"}))
		require.NoError(t, s.CreateAccessRequest(ctx, &catalog.AccessRequest{ID: "r1", FileName: "doc.txt", Requester: "bob", Status: catalog.RequestApproved}))

		pending, err := s.ListPendingRequestsForOwner(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}

func runCheckpointTests(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndList", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()

		require.NoError(t, s.CreateCheckpoint(ctx, &catalog.Checkpoint{FileName: "doc.txt", Tag: "v1", BlobLocator: "loc1"}))
		require.NoError(t, s.CreateCheckpoint(ctx, &catalog.Checkpoint{FileName: "doc.txt", Tag: "v2", BlobLocator: "loc2"}))

		all, err := s.ListCheckpoints(ctx, "doc.txt")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("GetMissingIsNotError", func(t *testing.T) {
		s := factory(t)
		_, ok, err := s.GetCheckpoint(t.Context(), "doc.txt", "v9")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("GetByTag", func(t *testing.T) {
		s := factory(t)
		ctx := t.Context()
		require.NoError(t, s.CreateCheckpoint(ctx, &catalog.Checkpoint{FileName: "doc.txt", Tag: "v1", BlobLocator: "loc1"}))

		got, ok, err := s.GetCheckpoint(ctx, "doc.txt", "v1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "loc1", got.BlobLocator)
	})
}
